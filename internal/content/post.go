package content

import (
	"fmt"
	"net/url"
	"strings"

	"blogsphere/internal/models"
)

const (
	MinTitleLen       = 3
	MaxTitleLen       = 200
	MinDescriptionLen = 50
	MinImages         = 1
	MaxImages         = 5
	MaxTags           = 10
	MaxTagLen         = 30
	MaxCommentLen     = 2000
	MaxBioLen         = 300
	MaxNameLen        = 100
)

// PostInput это тело запроса создания и редактирования.
type PostInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Link        string   `json:"link"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// Post это проверенный и нормализованный PostInput, готовый к записи.
type Post struct {
	Title       string
	Description string
	Images      []string
	Link        string
	Category    models.Category
	Tags        []string
	ReadingTime string
}

// Validate проверяет поля поста и возвращает нормализованную версию.
func (in PostInput) Validate() (*Post, error) {
	verr := &models.ValidationError{}
	out := &Post{}

	out.Title = strings.TrimSpace(in.Title)
	switch n := runeLen(out.Title); {
	case n < MinTitleLen:
		verr.Add("title", fmt.Sprintf("title must be at least %d characters", MinTitleLen))
	case n > MaxTitleLen:
		verr.Add("title", fmt.Sprintf("title must be at most %d characters", MaxTitleLen))
	}

	out.Description = Sanitize(in.Description)
	if runeLen(PlainText(out.Description)) < MinDescriptionLen {
		verr.Add("description", fmt.Sprintf("description must contain at least %d characters of text", MinDescriptionLen))
	}
	out.ReadingTime = ReadingTime(out.Description)

	for _, img := range in.Images {
		if img = strings.TrimSpace(img); img != "" {
			out.Images = append(out.Images, img)
		}
	}
	switch {
	case len(out.Images) < MinImages:
		verr.Add("images", "at least one image is required")
	case len(out.Images) > MaxImages:
		verr.Add("images", fmt.Sprintf("at most %d images are allowed", MaxImages))
	default:
		for _, img := range out.Images {
			if !validImageRef(img) {
				verr.Add("images", "image references must be uploaded image URLs")
				break
			}
		}
	}

	cat, ok := models.ParseCategory(in.Category)
	if !ok {
		verr.Add("category", "unknown category")
	}
	out.Category = cat

	tags, msg := normalizeTags(in.Tags)
	if msg != "" {
		verr.Add("tags", msg)
	}
	out.Tags = tags

	out.Link = strings.TrimSpace(in.Link)
	if out.Link != "" && !validHTTPURL(out.Link) {
		verr.Add("link", "link must be a valid http or https URL")
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeTags(in []string) ([]string, string) {
	seen := make(map[string]bool, len(in))
	tags := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#")))
		if t == "" || seen[t] {
			continue
		}
		if runeLen(t) > MaxTagLen {
			return nil, fmt.Sprintf("tags must be at most %d characters", MaxTagLen)
		}
		seen[t] = true
		tags = append(tags, t)
	}
	if len(tags) > MaxTags {
		return nil, fmt.Sprintf("at most %d tags are allowed", MaxTags)
	}
	return tags, ""
}

func validHTTPURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// validImageRef принимает абсолютные http(s) URL и пути от корня сервера,
// как те, что возвращает загрузка.
func validImageRef(s string) bool {
	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
		_, err := url.ParseRequestURI(s)
		return err == nil
	}
	return validHTTPURL(s)
}

// Comment обрезает пробелы и проверяет текст комментария.
func Comment(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", models.NewValidationError("content", "comment cannot be empty")
	}
	if runeLen(text) > MaxCommentLen {
		return "", models.NewValidationError("content", fmt.Sprintf("comment must be at most %d characters", MaxCommentLen))
	}
	return text, nil
}

// Profile проверяет правку профиля на месте.
func Profile(u *models.ProfileUpdate) error {
	verr := &models.ValidationError{}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" || runeLen(name) > MaxNameLen {
			verr.Add("name", fmt.Sprintf("name must be between 1 and %d characters", MaxNameLen))
		}
		u.Name = &name
	}
	if u.Handle != nil {
		h := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(*u.Handle), "@"))
		if !ValidHandle(h) {
			verr.Add("handle", "handle may contain only letters, digits and underscores (3-20 characters)")
		}
		u.Handle = &h
	}
	if u.Bio != nil {
		bio := strings.TrimSpace(*u.Bio)
		if runeLen(bio) > MaxBioLen {
			verr.Add("bio", fmt.Sprintf("bio must be at most %d characters", MaxBioLen))
		}
		u.Bio = &bio
	}
	if u.ProfileImage != nil {
		img := strings.TrimSpace(*u.ProfileImage)
		if img != "" && !validImageRef(img) {
			verr.Add("profile_image", "profile image must be a valid URL")
		}
		u.ProfileImage = &img
	}
	return verr.OrNil()
}
