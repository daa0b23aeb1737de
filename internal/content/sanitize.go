// Package content содержит правила ввода для постов, комментариев и профилей.
package content

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richText  = bluemonday.UGCPolicy()
	plainText = bluemonday.StrictPolicy()
)

const wordsPerMinute = 200

// Sanitize оставляет безопасное подмножество HTML.
func Sanitize(s string) string {
	return strings.TrimSpace(richText.Sanitize(s))
}

// PlainText убирает все теги и раскодирует сущности.
func PlainText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(plainText.Sanitize(s))), " ")
}

// ReadingTime это подпись "N min read" рядом с постом.
func ReadingTime(description string) string {
	words := len(strings.Fields(PlainText(description)))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
