package database

import (
	"context"
	"fmt"

	"blogsphere/internal/models"
)

// FollowState это результат подписки или отписки.
type FollowState struct {
	Following      bool  `json:"following"`
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}

type FollowService struct {
	db *DB
}

func NewFollowService(db *DB) *FollowService {
	return &FollowService{db: db}
}

// Follow подписывает followerID на followedID. Повтор ничего не меняет.
func (s *FollowService) Follow(ctx context.Context, followerID, followedID int64) (*FollowState, error) {
	return s.toggle(ctx, followerID, followedID, true)
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID int64) (*FollowState, error) {
	return s.toggle(ctx, followerID, followedID, false)
}

func (s *FollowService) toggle(ctx context.Context, followerID, followedID int64, follow bool) (*FollowState, error) {
	if followerID == followedID {
		return nil, models.NewValidationError("follow_id", "you cannot follow yourself")
	}
	state := &FollowState{Following: follow}
	err := s.db.WithTx(ctx, func(r runner) error {
		if err := ensureExists(ctx, r, "users", followedID, "user"); err != nil {
			return err
		}
		var (
			changed int64
			err     error
		)
		if follow {
			changed, err = r.affected(ctx, r.d.InsertIgnore("follows", "follower_id", "followed_id", "created_at"), followerID, followedID, now())
		} else {
			changed, err = r.affected(ctx, "DELETE FROM follows WHERE follower_id = ? AND followed_id = ?", followerID, followedID)
		}
		if err != nil {
			return fmt.Errorf("toggle follow: %w", err)
		}
		if changed == 1 {
			if err := adjustFollowCounters(ctx, r, followerID, followedID, follow); err != nil {
				return err
			}
		}
		if err := r.queryRow(ctx, "SELECT followers_count FROM users WHERE id = ?", followedID).Scan(&state.FollowersCount); err != nil {
			return err
		}
		return r.queryRow(ctx, "SELECT following_count FROM users WHERE id = ?", followerID).Scan(&state.FollowingCount)
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// adjustFollowCounters обновляет строки пользователей по возрастанию id,
// чтобы встречные подписки не блокировали друг друга.
func adjustFollowCounters(ctx context.Context, r runner, followerID, followedID int64, follow bool) error {
	sign := "+ 1"
	guard := ""
	if !follow {
		sign = "- 1"
	}
	updates := []struct {
		id  int64
		col string
	}{
		{followerID, "following_count"},
		{followedID, "followers_count"},
	}
	if followedID < followerID {
		updates[0], updates[1] = updates[1], updates[0]
	}
	for _, u := range updates {
		if !follow {
			guard = " AND " + u.col + " > 0"
		}
		if _, err := r.exec(ctx, "UPDATE users SET "+u.col+" = "+u.col+" "+sign+" WHERE id = ?"+guard, u.id); err != nil {
			return fmt.Errorf("update %s: %w", u.col, err)
		}
	}
	return nil
}

// IsFollowing сообщает, подписан ли followerID на followedID.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	n, err := s.db.run().count(ctx, "SELECT COUNT(*) FROM follows WHERE follower_id = ? AND followed_id = ?", followerID, followedID)
	return n > 0, err
}
