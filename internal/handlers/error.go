package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"blogsphere/internal/auth"
	"blogsphere/internal/database"
	"blogsphere/internal/models"
)

// envelope задаёт общий формат ответа: {"success": ..., "message": ..., ...payload}.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	if body == nil {
		body = envelope{}
	}
	if _, ok := body["success"]; !ok {
		body["success"] = status < http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type ErrorHandler struct {
	Logger *slog.Logger
}

// Render пишет ответ-ошибку с заданным статусом.
func (h *ErrorHandler) Render(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{"success": false, "message": msg})
}

// Fail переводит ошибку в HTTP-статус. Неизвестные ошибки логируются,
// клиент получает общее сообщение.
func (h *ErrorHandler) Fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, envelope{"success": false, "message": verr.Error(), "errors": verr.Fields})
	case errors.Is(err, models.ErrValidation):
		h.Render(w, http.StatusBadRequest, clientMessage(err, models.ErrValidation))
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.Render(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, database.ErrSessionExpired):
		h.Render(w, http.StatusUnauthorized, "session expired")
	case errors.Is(err, models.ErrUnauthorized):
		h.Render(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, models.ErrForbidden):
		h.Render(w, http.StatusForbidden, "you are not allowed to do this")
	case errors.Is(err, models.ErrNotFound):
		h.Render(w, http.StatusNotFound, clientMessage(err, models.ErrNotFound))
	case errors.Is(err, models.ErrConflict):
		h.Render(w, http.StatusConflict, clientMessage(err, models.ErrConflict))
	default:
		h.logger().Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		h.Render(w, http.StatusInternalServerError, "internal server error")
	}
}

// clientMessage отрезает текст sentinel-ошибки: "email already registered: conflict"
// превращается в "email already registered", а "post: not found" в "post not found".
func clientMessage(err, sentinel error) string {
	msg := err.Error()
	trimmed := strings.TrimSuffix(msg, ": "+sentinel.Error())
	if trimmed == msg {
		return msg
	}
	if !strings.Contains(trimmed, " ") {
		return trimmed + " " + sentinel.Error()
	}
	return trimmed
}

func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Render(w, http.StatusNotFound, "route not found")
}

func (h *ErrorHandler) RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.logger().Error("panic", "method", r.Method, "path", r.URL.Path, "panic", rec)
				h.Render(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *ErrorHandler) logger() *slog.Logger {
	if h == nil || h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}
