package handlers

import (
	"net/http"

	"blogsphere/internal/auth"
	"blogsphere/internal/content"
	"blogsphere/internal/database"
	"blogsphere/internal/models"
)

type PostHandler struct {
	Posts *database.PostService
	Err   *ErrorHandler
}

// postQuery собирает параметры ленты из query-строки.
func postQuery(r *http.Request) (models.PostQuery, error) {
	q := models.PostQuery{
		Sort:     r.URL.Query().Get("sort"),
		Order:    r.URL.Query().Get("order"),
		ViewerID: auth.FromContext(r.Context()).UserID,
	}
	var err error
	if q.Page, q.Limit, err = paging(r, models.DefaultPageLimit); err != nil {
		return q, err
	}
	if raw := r.URL.Query().Get("category"); raw != "" && raw != "all" {
		cat, ok := models.ParseCategory(raw)
		if !ok {
			return q, models.NewValidationError("category", "unknown category")
		}
		q.Category = cat
	}
	if q.AuthorID, err = queryID(r, "author"); err != nil {
		return q, err
	}
	// без сессии зрителя можно передать через userId, как в suggested-users
	if q.ViewerID == 0 {
		if q.ViewerID, err = queryID(r, "userId"); err != nil {
			return q, err
		}
	}
	return q, nil
}

// Список постов с пагинацией
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q, err := postQuery(r)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	h.list(w, r, q)
}

// Посты пользователя из пути
func (h *PostHandler) UserPosts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	q, err := postQuery(r)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	q.AuthorID = id
	h.list(w, r, q)
}

func (h *PostHandler) list(w http.ResponseWriter, r *http.Request, q models.PostQuery) {
	page, err := h.Posts.List(r.Context(), q)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"posts": page.Posts, "pagination": page.Pagination})
}

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	post, err := h.Posts.Get(r.Context(), id, auth.FromContext(r.Context()).UserID)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"post": post})
}

func decodePost(w http.ResponseWriter, r *http.Request) (*content.Post, error) {
	var in content.PostInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		return nil, err
	}
	return in.Validate()
}

// Создание поста
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	in, err := decodePost(w, r)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	post, err := h.Posts.Create(r.Context(), auth.FromContext(r.Context()).UserID, in)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"message": "post created", "post": post})
}

func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	in, err := decodePost(w, r)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	post, err := h.Posts.Update(r.Context(), auth.FromContext(r.Context()), id, in)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "post updated", "post": post})
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	if err := h.Posts.Delete(r.Context(), auth.FromContext(r.Context()), id); err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "post deleted"})
}

type postRef struct {
	PostID flexID `json:"post_id"`
}

// Share учитывает репост; анонимные репосты разрешены.
func (h *PostHandler) Share(w http.ResponseWriter, r *http.Request) {
	var in postRef
	if err := decodeJSON(w, r, &in, true); err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	postID, err := idParam(r, "post_id", in.PostID)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	n, err := h.Posts.RecordShare(r.Context(), postID, auth.FromContext(r.Context()).UserID)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"shares_count": n})
}

// View учитывает просмотр; вошедший пользователь считается один раз.
func (h *PostHandler) View(w http.ResponseWriter, r *http.Request) {
	var in postRef
	if err := decodeJSON(w, r, &in, true); err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	postID, err := idParam(r, "post_id", in.PostID)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	n, err := h.Posts.RecordView(r.Context(), postID, auth.FromContext(r.Context()).UserID)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"views_count": n})
}
