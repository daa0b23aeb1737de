package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"blogsphere/internal/auth"
	"blogsphere/internal/models"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// RequestLogger пишет одну строку на запрос: метод, путь, статус, длительность.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			level := slog.LevelInfo
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.bytes,
				"duration", time.Since(start),
				"principal", principalLabel(auth.FromContext(r.Context())),
			)
		})
	}
}

func principalLabel(p models.Principal) string {
	switch {
	case p.IsAdmin():
		return "admin"
	case p.IsUser():
		return "user"
	default:
		return "anonymous"
	}
}

// CORS отвечает на preflight и возвращает разрешённый Origin.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowAll := slices.Contains(origins, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || slices.Contains(origins, origin)) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Set("Access-Control-Max-Age", "600")
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// Authenticator разбирает bearer-токен. С неверным токеном запрос остаётся
// анонимным, и защищённые маршруты отвечают 401.
type Authenticator struct {
	Auth   *auth.Service
	Err    *ErrorHandler
	Logger *slog.Logger
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		p, err := a.Auth.Authenticate(r.Context(), token)
		if err != nil {
			if !errors.Is(err, models.ErrUnauthorized) {
				a.Err.Fail(w, r, err)
				return
			}
			a.Logger.Debug("bearer token rejected", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	})
}

// RequireUser пропускает только пользовательские сессии.
func (a *Authenticator) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := auth.FromContext(r.Context())
		switch {
		case p.IsUser():
			next(w, r)
		case p.IsAdmin():
			a.Err.Render(w, http.StatusForbidden, "admin sessions cannot use this endpoint")
		default:
			a.Err.Render(w, http.StatusUnauthorized, "authentication required")
		}
	}
}

// RequireAdmin: аноним получает 401, пользователь 403.
func (a *Authenticator) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := auth.FromContext(r.Context())
		switch {
		case p.IsAdmin():
			next(w, r)
		case p.IsUser():
			a.Err.Render(w, http.StatusForbidden, "admin access required")
		default:
			a.Err.Render(w, http.StatusUnauthorized, "authentication required")
		}
	}
}

// RequireAny пропускает любую сессию.
func (a *Authenticator) RequireAny(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.FromContext(r.Context()).Anonymous() {
			a.Err.Render(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r)
	}
}
