package database

import (
	"context"
	"fmt"

	"blogsphere/internal/models"
)

const commentSelect = `SELECT c.id, c.post_id, c.user_id, c.content, c.created_at,
	u.name, u.handle, u.profile_image, u.verified
	FROM comments c
	JOIN users u ON u.id = c.user_id`

func scanComment(s scanner) (*models.Comment, error) {
	var c models.Comment
	err := s.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt,
		&c.Author.Name, &c.Author.Handle, &c.Author.ProfileImage, &c.Author.Verified)
	if err != nil {
		return nil, err
	}
	c.Author.ID = c.UserID
	return &c, nil
}

type CommentService struct {
	db *DB
}

func NewCommentService(db *DB) *CommentService {
	return &CommentService{db: db}
}

// Create добавляет комментарий и увеличивает comments_count поста.
// text должен быть уже проверен content.Comment.
func (s *CommentService) Create(ctx context.Context, postID, userID int64, text string) (*models.Comment, error) {
	var comment *models.Comment
	err := s.db.WithTx(ctx, func(r runner) error {
		if err := ensureExists(ctx, r, "posts", postID, "post"); err != nil {
			return err
		}
		id, err := r.insertID(ctx, "INSERT INTO comments (post_id, user_id, content, created_at) VALUES (?, ?, ?, ?)",
			postID, userID, text, now())
		if err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		if _, err := r.exec(ctx, "UPDATE posts SET comments_count = comments_count + 1 WHERE id = ?", postID); err != nil {
			return err
		}
		comment, err = scanComment(r.queryRow(ctx, commentSelect+" WHERE c.id = ?", id))
		return err
	})
	return comment, err
}

// ListByPost возвращает комментарии, старые первыми.
func (s *CommentService) ListByPost(ctx context.Context, postID int64) ([]models.Comment, error) {
	r := s.db.run()
	if err := ensureExists(ctx, r, "posts", postID, "post"); err != nil {
		return nil, err
	}
	rows, err := r.query(ctx, commentSelect+" WHERE c.post_id = ? ORDER BY c.created_at ASC, c.id ASC", postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()
	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// Delete удаляет комментарий: может автор, владелец поста или админ.
func (s *CommentService) Delete(ctx context.Context, actor models.Principal, id int64) error {
	return s.db.WithTx(ctx, func(r runner) error {
		var postID, authorID, ownerID int64
		err := r.queryRow(ctx, `SELECT c.post_id, c.user_id, p.user_id FROM comments c
			JOIN posts p ON p.id = c.post_id WHERE c.id = ?`, id).Scan(&postID, &authorID, &ownerID)
		if err != nil {
			return mapError(err, "comment")
		}
		if !actor.IsAdmin() && actor.UserID != authorID && actor.UserID != ownerID {
			return fmt.Errorf("comment %d: %w", id, models.ErrForbidden)
		}
		if _, err := r.exec(ctx, "DELETE FROM comments WHERE id = ?", id); err != nil {
			return err
		}
		_, err = r.exec(ctx, "UPDATE posts SET comments_count = comments_count - 1 WHERE id = ? AND comments_count > 0", postID)
		return err
	})
}
