package content

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxHandleLen = 20
	minHandleLen = 3
)

var (
	handleRegex   = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)
	handleInvalid = regexp.MustCompile(`[^a-z0-9_]+`)
	folder        = cases.Fold()
)

// Handle выводит handle из имени: диакритика убирается, всё вне
// [a-z0-9_] схлопывается в "_".
func Handle(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(t, name)
	if err != nil {
		ascii = name
	}
	h := handleInvalid.ReplaceAllString(cases.Lower(language.Und).String(ascii), "_")
	h = strings.Trim(h, "_")
	if len(h) > maxHandleLen {
		h = strings.TrimRight(h[:maxHandleLen], "_")
	}
	for len(h) < minHandleLen {
		h += "_"
	}
	if h == strings.Repeat("_", len(h)) {
		return "user"
	}
	return h
}

func ValidHandle(h string) bool {
	return handleRegex.MatchString(h)
}

// FoldQuery нормализует строку для поиска без учёта регистра: полная
// свёртка регистра (ß и ss совпадают), затем NFC, чтобы составные и
// предсоставленные символы давали одни и те же байты.
func FoldQuery(q string) string {
	return norm.NFC.String(folder.String(norm.NFC.String(strings.TrimSpace(q))))
}
