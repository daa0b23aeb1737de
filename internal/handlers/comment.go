package handlers

import (
	"net/http"

	"blogsphere/internal/auth"
	"blogsphere/internal/content"
	"blogsphere/internal/database"
)

type CommentHandler struct {
	Comments *database.CommentService
	Err      *ErrorHandler
}

func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	comments, err := h.Comments.ListByPost(r.Context(), postID)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"comments": comments})
}

// Добавление комментария
func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var in struct {
		PostID  flexID `json:"post_id"`
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &in, false); err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	postID, err := idParam(r, "post_id", in.PostID)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	text, err := content.Comment(in.Content)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	comment, err := h.Comments.Create(r.Context(), postID, auth.FromContext(r.Context()).UserID, text)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"message": "comment added", "comment": comment})
}

func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	if err := h.Comments.Delete(r.Context(), auth.FromContext(r.Context()), id); err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"message": "comment deleted"})
}
