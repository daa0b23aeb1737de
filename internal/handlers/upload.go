package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"blogsphere/internal/models"
)

// ImageStore сохраняет картинку и возвращает её публичный URL.
type ImageStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

type UploadHandler struct {
	Store       ImageStore
	MaxFileSize int64
	MaxFiles    int
	Err         *ErrorHandler
}

// Загрузка картинок: multipart-поле "images", URL возвращаются по порядку
func (h *UploadHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxFileSize*int64(h.MaxFiles)+1<<20)
	if err := r.ParseMultipartForm(h.MaxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.Err.Fail(w, r, models.NewValidationError("images", "upload is too large"))
			return
		}
		h.Err.Fail(w, r, models.NewValidationError("images", "expected multipart form data"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["images"]
	switch {
	case len(files) == 0:
		h.Err.Fail(w, r, models.NewValidationError("images", "at least one image is required"))
		return
	case len(files) > h.MaxFiles:
		h.Err.Fail(w, r, models.NewValidationError("images", fmt.Sprintf("at most %d images per upload", h.MaxFiles)))
		return
	}
	for _, fh := range files {
		if fh.Size > h.MaxFileSize {
			h.Err.Fail(w, r, models.NewValidationError("images", fmt.Sprintf("%s exceeds %d bytes", fh.Filename, h.MaxFileSize)))
			return
		}
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := h.save(r.Context(), fh)
		if err != nil {
			// загрузка всё или ничего: уже сохранённые файлы удаляются
			h.discard(r.Context(), urls)
			h.Err.Fail(w, r, err)
			return
		}
		urls = append(urls, url)
	}
	writeJSON(w, http.StatusCreated, envelope{"message": "images uploaded", "urls": urls})
}

func (h *UploadHandler) save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.Store.Save(ctx, fh.Filename, f)
}

func (h *UploadHandler) discard(ctx context.Context, urls []string) {
	// клиент мог уже отключиться, а файлы всё равно надо убрать
	ctx = context.WithoutCancel(ctx)
	for _, url := range urls {
		if err := h.Store.Remove(ctx, url); err != nil {
			h.Err.Logger.Warn("failed to remove orphaned upload", "url", url, "error", err)
		}
	}
}
