package handlers

import (
	"net/http"

	"blogsphere/internal/auth"
	"blogsphere/internal/content"
	"blogsphere/internal/database"
	"blogsphere/internal/models"
)

type UserHandler struct {
	Users *database.UserService
	Err   *ErrorHandler
}

// GetUser возвращает профиль; email видят только владелец и админы.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	p := auth.FromContext(r.Context())
	user, err := h.Users.GetByID(r.Context(), id, p.UserID)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	if !p.IsAdmin() && p.UserID != id {
		*user = user.Public()
	}
	writeJSON(w, http.StatusOK, envelope{"user": user})
}

// UpdateUser редактирует собственный профиль.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	if auth.FromContext(r.Context()).UserID != id {
		h.Err.Fail(w, r, models.ErrForbidden)
		return
	}
	var upd models.ProfileUpdate
	if err := decodeJSON(w, r, &upd, false); err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	if err := content.Profile(&upd); err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	user, err := h.Users.Update(r.Context(), id, upd)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "profile updated", "user": user})
}

// DeleteUser удаляет аккаунт: сам владелец или админ.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	p := auth.FromContext(r.Context())
	if !p.IsAdmin() && p.UserID != id {
		h.Err.Fail(w, r, models.ErrForbidden)
		return
	}
	if err := h.Users.Delete(r.Context(), id); err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "account deleted"})
}
