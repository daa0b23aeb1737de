package handlers

import (
	"net/http"

	"blogsphere/internal/auth"
	"blogsphere/internal/database"
)

type LikeHandler struct {
	Likes *database.LikeService
	Err   *ErrorHandler
}

// Like ставит лайк; повторный запрос ничего не меняет.
func (h *LikeHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, true)
}

func (h *LikeHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, false)
}

func (h *LikeHandler) toggle(w http.ResponseWriter, r *http.Request, like bool) {
	var in postRef
	if err := decodeJSON(w, r, &in, true); err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	postID, err := idParam(r, "post_id", in.PostID)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	userID := auth.FromContext(r.Context()).UserID
	var state *database.LikeState
	if like {
		state, err = h.Likes.Like(r.Context(), postID, userID)
	} else {
		state, err = h.Likes.Unlike(r.Context(), postID, userID)
	}
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"liked": state.Liked, "likes_count": state.LikesCount})
}
