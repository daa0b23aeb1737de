package database

import (
	"context"
	"fmt"
	"strings"

	"blogsphere/internal/models"
)

type AdminService struct {
	db *DB
}

func NewAdminService(db *DB) *AdminService {
	return &AdminService{db: db}
}

// CreateAdmin сохраняет администратора; passwordHash уже посчитан bcrypt.
func (s *AdminService) CreateAdmin(ctx context.Context, email, passwordHash string) (*models.Admin, error) {
	a := &models.Admin{Email: strings.ToLower(strings.TrimSpace(email)), PasswordHash: passwordHash, CreatedAt: now()}
	err := s.db.WithTx(ctx, func(r runner) error {
		id, err := r.insertID(ctx, "INSERT INTO admins (email, password_hash, created_at) VALUES (?, ?, ?)",
			a.Email, a.PasswordHash, a.CreatedAt)
		if err != nil {
			return mapError(err, "admin")
		}
		a.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AdminService) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	err := s.db.run().queryRow(ctx, "SELECT id, email, password_hash, created_at FROM admins WHERE email = ?",
		strings.ToLower(strings.TrimSpace(email))).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return nil, mapError(err, "admin")
	}
	return &a, nil
}

// Stats собирает общие показатели для админ-панели.
func (s *AdminService) Stats(ctx context.Context) (*models.Stats, error) {
	r := s.db.run()
	var st models.Stats
	counts := []struct {
		dest  *int64
		query string
	}{
		{&st.Users, "SELECT COUNT(*) FROM users"},
		{&st.Verified, "SELECT COUNT(*) FROM users WHERE verified = ?"},
		{&st.Posts, "SELECT COUNT(*) FROM posts"},
		{&st.Comments, "SELECT COUNT(*) FROM comments"},
		{&st.Likes, "SELECT COUNT(*) FROM likes"},
		{&st.Follows, "SELECT COUNT(*) FROM follows"},
		{&st.Shares, "SELECT COALESCE(SUM(shares_count), 0) FROM posts"},
		{&st.Views, "SELECT COALESCE(SUM(views_count), 0) FROM posts"},
	}
	for _, c := range counts {
		var args []any
		if strings.Contains(c.query, "?") {
			args = append(args, true)
		}
		n, err := r.count(ctx, c.query, args...)
		if err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
		*c.dest = n
	}
	return &st, nil
}

// ListPosts это список постов для админки, новые первыми.
func (s *AdminService) ListPosts(ctx context.Context, page, limit int) (*models.PostPage, error) {
	return NewPostService(s.db).List(ctx, models.PostQuery{Page: page, Limit: limit})
}
