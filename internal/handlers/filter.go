package handlers

import (
	"net/http"

	"blogsphere/internal/auth"
	"blogsphere/internal/database"
	"blogsphere/internal/models"
)

// FilterHandler обслуживает категории, поиск и рекомендации пользователей.
type FilterHandler struct {
	Users *database.UserService
	Err   *ErrorHandler
}

// Список категорий
func (h *FilterHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{"categories": models.Categories})
}

// Поиск пользователей по имени и handle
func (h *FilterHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.Search(r.Context(), r.URL.Query().Get("q"), auth.FromContext(r.Context()).UserID)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"users": users})
}

// SuggestedUsers нужен зритель: пользователь сессии или параметр userId.
func (h *FilterHandler) SuggestedUsers(w http.ResponseWriter, r *http.Request) {
	viewerID := auth.FromContext(r.Context()).UserID
	if viewerID == 0 {
		id, err := queryID(r, "userId")
		if err != nil {
			h.Err.Fail(w, r, err)
			return
		}
		viewerID = id
	}
	if viewerID == 0 {
		h.Err.Render(w, http.StatusUnauthorized, "authentication required")
		return
	}
	limit, err := queryInt(r, "limit", 5)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	if limit <= 0 || limit > database.MaxSuggestedResults {
		h.Err.Fail(w, r, models.NewValidationError("limit", "limit must be between 1 and 20"))
		return
	}
	users, err := h.Users.Suggested(r.Context(), viewerID, limit)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"users": users})
}
