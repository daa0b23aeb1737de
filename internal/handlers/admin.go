package handlers

import (
	"net/http"

	"blogsphere/internal/auth"
	"blogsphere/internal/database"
)

type AdminHandler struct {
	DB     *database.DB
	Admins *database.AdminService
	Users  *database.UserService
	Posts  *database.PostService
	Err    *ErrorHandler
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Admins.Stats(r.Context())
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"stats": st})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, err := paging(r, 20)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	res, err := h.Users.List(r.Context(), page, limit)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"users": res.Users, "pagination": res.Pagination})
}

func (h *AdminHandler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	page, limit, err := paging(r, 20)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	res, err := h.Admins.ListPosts(r.Context(), page, limit)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"posts": res.Posts, "pagination": res.Pagination})
}

// VerifyUser ставит или снимает отметку verified.
func (h *AdminHandler) VerifyUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	in := struct {
		Verified *bool `json:"verified"`
	}{}
	if err := decodeJSON(w, r, &in, true); err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	verified := true
	if in.Verified != nil {
		verified = *in.Verified
	}
	user, err := h.Users.SetVerified(r.Context(), id, verified)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "user updated", "user": user})
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	if err := h.Users.Delete(r.Context(), id); err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "user deleted"})
}

func (h *AdminHandler) DeleteBlog(w http.ResponseWriter, r *http.Request) {
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

// Reconcile пересчитывает счётчики и сообщает число исправленных строк.
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.DB.Reconcile(r.Context())
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"repaired": report, "total": report.Total()})
}
