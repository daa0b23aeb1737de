package database

import (
	"context"
	"fmt"

	"blogsphere/internal/content"
	"blogsphere/internal/models"
)

// postSelect принимает id зрителя первым аргументом (is_liked).
const postSelect = `SELECT p.id, p.user_id, p.title, p.description, p.link, p.category, p.reading_time,
	p.views_count, p.likes_count, p.comments_count, p.shares_count, p.created_at, p.updated_at,
	u.name, u.handle, u.profile_image, u.verified,
	EXISTS(SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = ?)
	FROM posts p
	JOIN users u ON u.id = p.user_id`

var sortColumns = map[string]string{
	models.SortCreatedAt: "p.created_at",
	models.SortLikes:     "p.likes_count",
	models.SortComments:  "p.comments_count",
	models.SortViews:     "p.views_count",
}

func scanPost(s scanner) (*models.Post, error) {
	var p models.Post
	var category string
	err := s.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.Link, &category, &p.ReadingTime,
		&p.ViewsCount, &p.LikesCount, &p.CommentsCount, &p.SharesCount, &p.CreatedAt, &p.UpdatedAt,
		&p.Author.Name, &p.Author.Handle, &p.Author.ProfileImage, &p.Author.Verified,
		&p.IsLiked)
	if err != nil {
		return nil, err
	}
	p.Category = models.Category(category)
	p.Author.ID = p.UserID
	p.Images = []string{}
	p.Tags = []string{}
	return &p, nil
}

type PostService struct {
	db *DB
}

func NewPostService(db *DB) *PostService {
	return &PostService{db: db}
}

// List возвращает страницу ленты. Порядок полный: ключ сортировки, затем id
// в том же направлении, поэтому страницы не пересекаются и не пропускают строк.
func (s *PostService) List(ctx context.Context, q models.PostQuery) (*models.PostPage, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	where := " WHERE 1=1"
	var args []any
	if q.Category != "" {
		where += " AND p.category = ?"
		args = append(args, string(q.Category))
	}
	if q.AuthorID > 0 {
		where += " AND p.user_id = ?"
		args = append(args, q.AuthorID)
	}

	r := s.db.run()
	total, err := r.count(ctx, "SELECT COUNT(*) FROM posts p"+where, args...)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	dir := "DESC"
	if q.Order == models.OrderAsc {
		dir = "ASC"
	}
	order := fmt.Sprintf(" ORDER BY %s %s, p.id %s LIMIT ? OFFSET ?", sortColumns[q.Sort], dir, dir)
	queryArgs := append([]any{q.ViewerID}, args...)
	queryArgs = append(queryArgs, q.Limit, q.Offset())

	rows, err := r.query(ctx, postSelect+where+order, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		posts = append(posts, *p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadAttachments(ctx, r, posts); err != nil {
		return nil, err
	}
	return &models.PostPage{Posts: posts, Pagination: models.NewPagination(q.Page, q.Limit, total)}, nil
}

// Get возвращает пост с автором, тегами и is_liked для viewerID.
func (s *PostService) Get(ctx context.Context, id, viewerID int64) (*models.Post, error) {
	return getPost(ctx, s.db.run(), id, viewerID)
}

func getPost(ctx context.Context, r runner, id, viewerID int64) (*models.Post, error) {
	p, err := scanPost(r.queryRow(ctx, postSelect+" WHERE p.id = ?", viewerID, id))
	if err != nil {
		return nil, mapError(err, "post")
	}
	posts := []models.Post{*p}
	if err := loadAttachments(ctx, r, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// loadAttachments подгружает картинки и теги двумя запросами.
func loadAttachments(ctx context.Context, r runner, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	index := make(map[int64]int, len(posts))
	ids := make([]any, len(posts))
	for i, p := range posts {
		index[p.ID] = i
		ids[i] = p.ID
	}

	rows, err := r.query(ctx, "SELECT post_id, url FROM post_images WHERE post_id IN "+In(len(ids))+" ORDER BY post_id, position", ids...)
	if err != nil {
		return fmt.Errorf("load images: %w", err)
	}
	for rows.Next() {
		var postID int64
		var url string
		if err := rows.Scan(&postID, &url); err != nil {
			rows.Close()
			return err
		}
		p := &posts[index[postID]]
		p.Images = append(p.Images, url)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.query(ctx, "SELECT post_id, tag FROM post_tags WHERE post_id IN "+In(len(ids))+" ORDER BY post_id, position", ids...)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var postID int64
		var tag string
		if err := rows.Scan(&postID, &tag); err != nil {
			return err
		}
		p := &posts[index[postID]]
		p.Tags = append(p.Tags, tag)
	}
	return rows.Err()
}

// Create сохраняет пост и увеличивает posts_count автора в той же транзакции.
func (s *PostService) Create(ctx context.Context, userID int64, in *content.Post) (*models.Post, error) {
	var post *models.Post
	err := s.db.WithTx(ctx, func(r runner) error {
		if err := ensureExists(ctx, r, "users", userID, "user"); err != nil {
			return err
		}
		ts := now()
		id, err := r.insertID(ctx, `INSERT INTO posts (user_id, title, description, link, category, reading_time, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			userID, in.Title, in.Description, in.Link, string(in.Category), in.ReadingTime, ts, ts)
		if err != nil {
			return fmt.Errorf("insert post: %w", err)
		}
		if err := writeAttachments(ctx, r, id, in); err != nil {
			return err
		}
		if _, err := r.exec(ctx, "UPDATE users SET posts_count = posts_count + 1 WHERE id = ?", userID); err != nil {
			return err
		}
		post, err = getPost(ctx, r, id, userID)
		return err
	})
	return post, err
}

func writeAttachments(ctx context.Context, r runner, postID int64, in *content.Post) error {
	for i, url := range in.Images {
		if _, err := r.exec(ctx, "INSERT INTO post_images (post_id, position, url) VALUES (?, ?, ?)", postID, i, url); err != nil {
			return fmt.Errorf("insert image: %w", err)
		}
	}
	for i, tag := range in.Tags {
		if _, err := r.exec(ctx, "INSERT INTO post_tags (post_id, position, tag) VALUES (?, ?, ?)", postID, i, tag); err != nil {
			return fmt.Errorf("insert tag: %w", err)
		}
	}
	return nil
}

// authorize проверяет, что actor является владельцем поста или администратором.
func authorize(ctx context.Context, r runner, postID int64, actor models.Principal) (int64, error) {
	var ownerID int64
	if err := r.queryRow(ctx, "SELECT user_id FROM posts WHERE id = ?", postID).Scan(&ownerID); err != nil {
		return 0, mapError(err, "post")
	}
	if !actor.IsAdmin() && actor.UserID != ownerID {
		return 0, fmt.Errorf("post %d belongs to another user: %w", postID, models.ErrForbidden)
	}
	return ownerID, nil
}

// Update заменяет редактируемые поля поста.
func (s *PostService) Update(ctx context.Context, actor models.Principal, id int64, in *content.Post) (*models.Post, error) {
	var post *models.Post
	err := s.db.WithTx(ctx, func(r runner) error {
		if _, err := authorize(ctx, r, id, actor); err != nil {
			return err
		}
		_, err := r.exec(ctx, `UPDATE posts SET title = ?, description = ?, link = ?, category = ?, reading_time = ?, updated_at = ?
			WHERE id = ?`, in.Title, in.Description, in.Link, string(in.Category), in.ReadingTime, now(), id)
		if err != nil {
			return fmt.Errorf("update post: %w", err)
		}
		for _, q := range []string{"DELETE FROM post_images WHERE post_id = ?", "DELETE FROM post_tags WHERE post_id = ?"} {
			if _, err := r.exec(ctx, q, id); err != nil {
				return err
			}
		}
		if err := writeAttachments(ctx, r, id, in); err != nil {
			return err
		}
		post, err = getPost(ctx, r, id, actor.UserID)
		return err
	})
	return post, err
}

// Delete удаляет пост и все связанные записи одной транзакцией.
func (s *PostService) Delete(ctx context.Context, actor models.Principal, id int64) error {
	return s.db.WithTx(ctx, func(r runner) error {
		ownerID, err := authorize(ctx, r, id, actor)
		if err != nil {
			return err
		}
		for _, table := range []string{"comments", "likes", "shares", "post_views", "post_images", "post_tags"} {
			if _, err := r.exec(ctx, "DELETE FROM "+table+" WHERE post_id = ?", id); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		if _, err := r.exec(ctx, "DELETE FROM posts WHERE id = ?", id); err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		_, err = r.exec(ctx, "UPDATE users SET posts_count = posts_count - 1 WHERE id = ? AND posts_count > 0", ownerID)
		return err
	})
}

// RecordShare сохраняет репост и возвращает новый shares_count.
func (s *PostService) RecordShare(ctx context.Context, postID, userID int64) (int64, error) {
	var count int64
	err := s.db.WithTx(ctx, func(r runner) error {
		if err := ensureExists(ctx, r, "posts", postID, "post"); err != nil {
			return err
		}
		if _, err := r.exec(ctx, "INSERT INTO shares (post_id, user_id, created_at) VALUES (?, ?, ?)", postID, nullID(userID), now()); err != nil {
			return err
		}
		if _, err := r.exec(ctx, "UPDATE posts SET shares_count = shares_count + 1 WHERE id = ?", postID); err != nil {
			return err
		}
		return r.queryRow(ctx, "SELECT shares_count FROM posts WHERE id = ?", postID).Scan(&count)
	})
	return count, err
}

// RecordView учитывает просмотр. Вошедший пользователь считается один раз,
// анонимные просмотры считаются всегда.
func (s *PostService) RecordView(ctx context.Context, postID, viewerID int64) (int64, error) {
	var count int64
	err := s.db.WithTx(ctx, func(r runner) error {
		if err := ensureExists(ctx, r, "posts", postID, "post"); err != nil {
			return err
		}
		inserted := int64(1)
		if viewerID > 0 {
			var err error
			inserted, err = r.affected(ctx, r.d.InsertIgnore("post_views", "post_id", "user_id", "created_at"), postID, viewerID, now())
			if err != nil {
				return err
			}
		}
		if inserted == 1 {
			if _, err := r.exec(ctx, "UPDATE posts SET views_count = views_count + 1 WHERE id = ?", postID); err != nil {
				return err
			}
		}
		return r.queryRow(ctx, "SELECT views_count FROM posts WHERE id = ?", postID).Scan(&count)
	})
	return count, err
}
