package storage_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"blogsphere/internal/models"
	"blogsphere/internal/storage"
)

// минимальный заголовок PNG
var pngData = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func TestSaveImage(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	s, err := storage.NewLocalStore(dir, "/uploads")
	c.Assert(err, qt.IsNil)

	url, err := s.Save(context.Background(), "photo.png", bytes.NewReader(pngData))
	c.Assert(err, qt.IsNil)
	c.Assert(strings.HasPrefix(url, "/uploads/"), qt.IsTrue)
	c.Assert(strings.HasSuffix(url, ".png"), qt.IsTrue)

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	c.Assert(err, qt.IsNil)
	c.Assert(stored, qt.DeepEquals, pngData)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(rec.Header().Get("Content-Type"), qt.Equals, "image/png")

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/", nil))
	c.Assert(rec.Code, qt.Equals, http.StatusNotFound)
}

func TestSaveRejectsNonImages(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	s, err := storage.NewLocalStore(dir, "/uploads/")
	c.Assert(err, qt.IsNil)

	_, err = s.Save(context.Background(), "evil.png", strings.NewReader("<html><script>alert(1)</script></html>"))
	c.Assert(err, qt.ErrorIs, storage.ErrUnsupportedType)
	c.Assert(err, qt.ErrorIs, models.ErrValidation)

	entries, err := os.ReadDir(dir)
	c.Assert(err, qt.IsNil)
	c.Assert(entries, qt.HasLen, 0)
}

func TestRemove(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	s, err := storage.NewLocalStore(dir, "/uploads")
	c.Assert(err, qt.IsNil)
	ctx := context.Background()

	url, err := s.Save(ctx, "photo.png", bytes.NewReader(pngData))
	c.Assert(err, qt.IsNil)
	c.Assert(s.Remove(ctx, url), qt.IsNil)
	entries, err := os.ReadDir(dir)
	c.Assert(err, qt.IsNil)
	c.Assert(entries, qt.HasLen, 0)

	// повторное удаление не ошибка
	c.Assert(s.Remove(ctx, url), qt.IsNil)

	for _, bad := range []string{"/other/x.png", "/uploads/", "/uploads/../secret", "/uploads/a/b.png"} {
		c.Assert(s.Remove(ctx, bad), qt.ErrorIs, models.ErrValidation, qt.Commentf("url %q", bad))
	}
}
