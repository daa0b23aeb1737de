package database

import (
	"context"
	"fmt"
)

// LikeState это результат лайка или его снятия.
type LikeState struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

type LikeService struct {
	db *DB
}

func NewLikeService(db *DB) *LikeService {
	return &LikeService{db: db}
}

// Like идемпотентен: повторный лайк не меняет ни строку, ни счётчик.
func (s *LikeService) Like(ctx context.Context, postID, userID int64) (*LikeState, error) {
	return s.toggle(ctx, postID, userID, true)
}

// Unlike тоже идемпотентен.
func (s *LikeService) Unlike(ctx context.Context, postID, userID int64) (*LikeState, error) {
	return s.toggle(ctx, postID, userID, false)
}

func (s *LikeService) toggle(ctx context.Context, postID, userID int64, like bool) (*LikeState, error) {
	state := &LikeState{Liked: like}
	err := s.db.WithTx(ctx, func(r runner) error {
		if err := ensureExists(ctx, r, "posts", postID, "post"); err != nil {
			return err
		}
		var (
			changed int64
			err     error
			delta   = "likes_count + 1"
		)
		if like {
			changed, err = r.affected(ctx, r.d.InsertIgnore("likes", "post_id", "user_id", "created_at"), postID, userID, now())
		} else {
			changed, err = r.affected(ctx, "DELETE FROM likes WHERE post_id = ? AND user_id = ?", postID, userID)
			delta = "likes_count - 1"
		}
		if err != nil {
			return fmt.Errorf("toggle like: %w", mapError(err, "like"))
		}
		if changed == 1 {
			if _, err := r.exec(ctx, "UPDATE posts SET likes_count = "+delta+" WHERE id = ?", postID); err != nil {
				return err
			}
		}
		return r.queryRow(ctx, "SELECT likes_count FROM posts WHERE id = ?", postID).Scan(&state.LikesCount)
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// IsLiked сообщает, лайкнул ли userID пост postID.
func (s *LikeService) IsLiked(ctx context.Context, postID, userID int64) (bool, error) {
	n, err := s.db.run().count(ctx, "SELECT COUNT(*) FROM likes WHERE post_id = ? AND user_id = ?", postID, userID)
	return n > 0, err
}
