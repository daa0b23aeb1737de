package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Category это закрытый набор категорий постов.
type Category string

const (
	CategoryGeneral       Category = "General"
	CategoryTechnology    Category = "Technology"
	CategoryLifestyle     Category = "Lifestyle"
	CategoryTravel        Category = "Travel"
	CategoryFood          Category = "Food"
	CategoryNews          Category = "News"
	CategoryEntertainment Category = "Entertainment"
)

var Categories = []Category{
	CategoryGeneral,
	CategoryTechnology,
	CategoryLifestyle,
	CategoryTravel,
	CategoryFood,
	CategoryNews,
	CategoryEntertainment,
}

// ParseCategory ищет категорию без учёта регистра.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Author это публичная часть пользователя внутри постов и комментариев.
type Author struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Handle       string `json:"handle"`
	ProfileImage string `json:"profile_image"`
	Verified     bool   `json:"verified"`
}

type Post struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Images        []string  `json:"images"`
	Link          string    `json:"link,omitempty"`
	Category      Category  `json:"category"`
	Tags          []string  `json:"tags"`
	ReadingTime   string    `json:"reading_time"`
	ViewsCount    int64     `json:"views_count"`
	LikesCount    int64     `json:"likes_count"`
	CommentsCount int64     `json:"comments_count"`
	SharesCount   int64     `json:"shares_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Author        Author    `json:"author"`
	IsLiked       bool      `json:"is_liked"`
}

// Ключи сортировки ленты.
const (
	SortCreatedAt = "created_at"
	SortLikes     = "likes"
	SortComments  = "comments"
	SortViews     = "views"

	OrderAsc  = "asc"
	OrderDesc = "desc"

	DefaultPageLimit = 10
	MaxPageLimit     = 50
)

// PostQuery выбирает страницу ленты.
type PostQuery struct {
	Page     int
	Limit    int
	Sort     string
	Order    string
	Category Category
	AuthorID int64
	ViewerID int64
}

// Validate подставляет sort и order по умолчанию и отклоняет неверную пагинацию.
func (q *PostQuery) Validate() error {
	verr := &ValidationError{}
	CheckPaging(verr, q.Page, q.Limit, MaxPageLimit)
	switch q.Sort {
	case "":
		q.Sort = SortCreatedAt
	case SortCreatedAt, SortLikes, SortComments, SortViews:
	default:
		verr.Add("sort", "sort must be one of created_at, likes, comments, views")
	}
	switch strings.ToLower(q.Order) {
	case "":
		q.Order = OrderDesc
	case OrderAsc, OrderDesc:
		q.Order = strings.ToLower(q.Order)
	default:
		verr.Add("order", "order must be asc or desc")
	}
	return verr.OrNil()
}

// Offset это индекс первого элемента страницы.
func (q PostQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// CheckPaging добавляет в verr ошибки page и limit. Номер страницы ограничен
// так, чтобы смещение (page-1)*limit помещалось в int.
func CheckPaging(verr *ValidationError, page, limit, maxLimit int) {
	if page <= 0 {
		verr.Add("page", "page must be a positive integer")
	}
	switch {
	case limit <= 0:
		verr.Add("limit", "limit must be a positive integer")
	case limit > maxLimit:
		verr.Add("limit", fmt.Sprintf("limit must not exceed %d", maxLimit))
	case page > 0 && page-1 > math.MaxInt/limit-1:
		verr.Add("page", fmt.Sprintf("page must not exceed %d", math.MaxInt/limit))
	}
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: pages,
		HasMore:    page < pages,
	}
}

type PostPage struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}
