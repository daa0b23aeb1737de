package handlers

import (
	"context"
	"net/http"

	"blogsphere/internal/auth"
	"blogsphere/internal/database"
	"blogsphere/internal/models"
)

type FollowHandler struct {
	Follows *database.FollowService
	Users   *database.UserService
	Err     *ErrorHandler
}

func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, true)
}

func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, false)
}

func (h *FollowHandler) toggle(w http.ResponseWriter, r *http.Request, follow bool) {
	var in struct {
		FollowID flexID `json:"follow_id"`
	}
	if err := decodeJSON(w, r, &in, true); err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	targetID, err := idParam(r, "follow_id", in.FollowID)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	userID := auth.FromContext(r.Context()).UserID
	var state *database.FollowState
	if follow {
		state, err = h.Follows.Follow(r.Context(), userID, targetID)
	} else {
		state, err = h.Follows.Unfollow(r.Context(), userID, targetID)
	}
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		"following":       state.Following,
		"followers_count": state.FollowersCount,
		"following_count": state.FollowingCount,
	})
}

func (h *FollowHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Users.Followers)
}

func (h *FollowHandler) Following(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Users.Following)
}

type followLister func(ctx context.Context, userID, viewerID int64, page, limit int) (*models.UserPage, error)

func (h *FollowHandler) list(w http.ResponseWriter, r *http.Request, fetch followLister) {
	id, err := pathID(r, "id")
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	page, limit, err := paging(r, 20)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	res, err := fetch(r.Context(), id, auth.FromContext(r.Context()).UserID, page, limit)
	if err != nil {
		h.Err.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"users": res.Users, "pagination": res.Pagination})
}
