package handlers

import (
	"net/http"

	"blogsphere/internal/auth"
	"blogsphere/internal/database"
	"blogsphere/internal/models"
)

type AuthHandler struct {
	Auth  *auth.Service
	Users *database.UserService
	Err   *ErrorHandler
}

func sessionPayload(body envelope, s *models.Session) envelope {
	body["token"] = s.Token
	body["expires_at"] = s.ExpiresAt
	return body
}

// Регистрация пользователя
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in auth.SignupInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	res, err := h.Auth.Signup(r.Context(), in)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionPayload(envelope{"message": "account created", "user": res.User}, res.Session))
}

// Вход по email и паролю
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	res, err := h.Auth.Login(r.Context(), in)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionPayload(envelope{"message": "signed in", "user": res.User}, res.Session))
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Credential string `json:"credential"`
	}
	if err := decodeJSON(w, r, &in, false); err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	res, err := h.Auth.GoogleLogin(r.Context(), in.Credential)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, sessionPayload(envelope{"message": "signed in", "user": res.User, "created": res.Created}, res.Session))
}

// Выход: отзывает токен, повтор безвреден
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		if err := h.Auth.Logout(r.Context(), token); err != nil {
			h.Err.Fail(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, envelope{"message": "signed out"})
}

// Текущая сессия
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p := auth.FromContext(r.Context())
	if p.IsAdmin() {
		writeJSON(w, http.StatusOK, envelope{"admin": envelope{"id": p.AdminID}})
		return
	}
	user, err := h.Users.GetByID(r.Context(), p.UserID, p.UserID)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"user": user})
}

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	res, err := h.Auth.AdminLogin(r.Context(), in)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionPayload(envelope{"message": "signed in", "admin": res.Admin}, res.Session))
}
