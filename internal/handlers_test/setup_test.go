package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"blogsphere/internal/auth"
	"blogsphere/internal/database"
	"blogsphere/internal/database/dbtest"
	"blogsphere/internal/handlers"
	"blogsphere/internal/models"
	"blogsphere/internal/storage"
)

type fakeVerifier struct{}

// Verify принимает токены вида "google:<sub>:<email>".
func (fakeVerifier) Verify(_ context.Context, credential string) (*database.Identity, error) {
	parts := strings.SplitN(credential, ":", 3)
	if len(parts) != 3 || parts[0] != "google" {
		return nil, fmt.Errorf("bad token: %w", models.ErrUnauthorized)
	}
	return &database.Identity{Subject: parts[1], Email: parts[2], Name: "Google User"}, nil
}

type testApp struct {
	c       *qt.C
	db      *database.DB
	auth    *auth.Service
	handler http.Handler
	uploads string
}

func setupApp(t *testing.T) *testApp {
	c := qt.New(t)
	db, _ := dbtest.New(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := auth.NewService(db, fakeVerifier{}, time.Hour, time.Hour, logger)
	uploads := t.TempDir()
	store, err := storage.NewLocalStore(uploads, "/uploads/")
	c.Assert(err, qt.IsNil)

	h := handlers.NewRouter(handlers.Options{
		DB:             db,
		Auth:           svc,
		Store:          store,
		Files:          store.Handler(),
		PublicPath:     "/uploads/",
		MaxFileSize:    1 << 20,
		MaxFiles:       5,
		AllowedOrigins: []string{"http://localhost:3000"},
		Logger:         logger,
	})
	return &testApp{c: c, db: db, auth: svc, handler: h, uploads: uploads}
}

type response struct {
	Code int
	Body map[string]any
	Raw  *httptest.ResponseRecorder
}

// do отправляет JSON-запрос; body == nil означает пустое тело.
func (a *testApp) do(method, path, token string, body any) response {
	a.c.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		a.c.Assert(err, qt.IsNil)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	return a.send(req, token)
}

func (a *testApp) send(req *http.Request, token string) response {
	a.c.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	res := response{Code: rec.Code, Raw: rec}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		a.c.Assert(json.Unmarshal(rec.Body.Bytes(), &res.Body), qt.IsNil)
	}
	return res
}

// signup регистрирует пользователя и возвращает его токен и id.
func (a *testApp) signup(name, email string) (string, int64) {
	a.c.Helper()
	res := a.do(http.MethodPost, "/signup", "", map[string]string{
		"full_name": name, "email": email, "password": "pass1234", "confirm_password": "pass1234",
	})
	a.c.Assert(res.Code, qt.Equals, http.StatusCreated, qt.Commentf("%v", res.Body))
	user := res.Body["user"].(map[string]any)
	return res.Body["token"].(string), int64(user["id"].(float64))
}

func (a *testApp) adminToken() string {
	a.c.Helper()
	a.c.Assert(a.auth.BootstrapAdmin(context.Background(), "root@example.com", "admin1234"), qt.IsNil)
	res := a.do(http.MethodPost, "/admin/login", "", map[string]string{"email": "root@example.com", "password": "admin1234"})
	a.c.Assert(res.Code, qt.Equals, http.StatusOK)
	return res.Body["token"].(string)
}

func validPost(title string) map[string]any {
	return map[string]any{
		"title":       title,
		"description": "<p>" + strings.Repeat("A long enough description. ", 4) + "</p>",
		"images":      []string{"/uploads/cover.png"},
		"category":    "technology",
		"tags":        []string{"Go", "#go", "web"},
	}
}

func (a *testApp) createPost(token, title string) int64 {
	a.c.Helper()
	res := a.do(http.MethodPost, "/posts", token, validPost(title))
	a.c.Assert(res.Code, qt.Equals, http.StatusCreated, qt.Commentf("%v", res.Body))
	return int64(res.Body["post"].(map[string]any)["id"].(float64))
}

func num(v any) int64 {
	return int64(v.(float64))
}
