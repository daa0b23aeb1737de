// Package storage хранит загруженные картинки на локальном диске.
package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"blogsphere/internal/models"
)

// ErrUnsupportedType означает, что содержимое не является допустимой картинкой.
var ErrUnsupportedType = fmt.Errorf("unsupported image type: %w", models.ErrValidation)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// LocalStore пишет файлы в Dir и отдаёт их по PublicPath.
type LocalStore struct {
	Dir        string
	PublicPath string
}

func NewLocalStore(dir, publicPath string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if !strings.HasSuffix(publicPath, "/") {
		publicPath += "/"
	}
	return &LocalStore{Dir: dir, PublicPath: publicPath}, nil
}

// Save определяет тип содержимого, сохраняет файл под случайным именем и
// возвращает URL. name это имя файла клиента, нужно только для ошибок.
func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	ctype := http.DetectContentType(head)
	ext, ok := imageExtensions[ctype]
	if !ok {
		return "", fmt.Errorf("%s (%s): %w", name, ctype, ErrUnsupportedType)
	}

	file := uuid.NewString() + ext
	f, err := os.OpenFile(filepath.Join(s.Dir, file), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", file, err)
	}
	if _, err := io.Copy(f, br); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write %s: %w", file, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return path.Join(s.PublicPath, file), nil
}

// Remove удаляет файл, ранее выданный Save. URL вне PublicPath отклоняется,
// уже отсутствующий файл ошибкой не считается.
func (s *LocalStore) Remove(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	file, ok := strings.CutPrefix(url, s.PublicPath)
	if !ok || file == "" || file != filepath.Base(file) {
		return fmt.Errorf("%q is not a stored upload: %w", url, models.ErrValidation)
	}
	if err := os.Remove(filepath.Join(s.Dir, file)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", file, err)
	}
	return nil
}

// Handler отдаёт сохранённые файлы без листинга каталогов.
func (s *LocalStore) Handler() http.Handler {
	fs := http.FileServer(http.Dir(s.Dir))
	return http.StripPrefix(strings.TrimSuffix(s.PublicPath, "/"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	}))
}
