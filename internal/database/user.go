package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"blogsphere/internal/content"
	"blogsphere/internal/models"
)

const (
	MaxSearchResults    = 20
	MaxSuggestedResults = 20
	MaxUserPageLimit    = 100
)

const userColumns = `u.id, u.name, u.handle, u.email, COALESCE(u.password_hash, ''), COALESCE(u.google_sub, ''),
	u.profile_image, u.bio, u.verified, u.posts_count, u.followers_count, u.following_count, u.created_at`

// isFollowingColumn принимает id зрителя как аргумент.
const isFollowingColumn = `EXISTS(SELECT 1 FROM follows vf WHERE vf.follower_id = ? AND vf.followed_id = u.id)`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner, extra ...any) (*models.User, error) {
	var u models.User
	dest := []any{&u.ID, &u.Name, &u.Handle, &u.Email, &u.PasswordHash, &u.GoogleSub,
		&u.ProfileImage, &u.Bio, &u.Verified, &u.PostsCount, &u.FollowersCount, &u.FollowingCount, &u.CreatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &u, nil
}

func scanUsers(rows *sql.Rows, withFollowing bool) ([]models.User, error) {
	defer rows.Close()
	users := []models.User{}
	for rows.Next() {
		var following bool
		var extra []any
		if withFollowing {
			extra = append(extra, &following)
		}
		u, err := scanUser(rows, extra...)
		if err != nil {
			return nil, err
		}
		u.IsFollowing = following
		users = append(users, u.Public())
	}
	return users, rows.Err()
}

// NewUser содержит данные для создания пользователя.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	GoogleSub    string
	ProfileImage string
}

// Identity содержит то, что внешний провайдер утверждает о пользователе.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type UserService struct {
	db *DB
}

func NewUserService(db *DB) *UserService {
	return &UserService{db: db}
}

// Create сохраняет пользователя с уникальным handle, выведенным из имени.
func (s *UserService) Create(ctx context.Context, nu NewUser) (*models.User, error) {
	var id int64
	err := s.db.WithTx(ctx, func(r runner) error {
		var err error
		id, err = createUser(ctx, r, nu)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id, id)
}

func createUser(ctx context.Context, r runner, nu NewUser) (int64, error) {
	email := strings.ToLower(strings.TrimSpace(nu.Email))
	taken, err := r.count(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", email)
	if err != nil {
		return 0, err
	}
	if taken > 0 {
		return 0, fmt.Errorf("email already registered: %w", models.ErrConflict)
	}

	handle, err := uniqueHandle(ctx, r, content.Handle(nu.Name))
	if err != nil {
		return 0, err
	}
	ts := now()
	name := strings.TrimSpace(nu.Name)
	id, err := r.insertID(ctx, `INSERT INTO users (name, search_name, handle, email, password_hash, google_sub, profile_image, bio, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, '', ?, ?)`,
		name, content.FoldQuery(name), handle, email, nullString(nu.PasswordHash), nullString(nu.GoogleSub), nu.ProfileImage, ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("email already registered: %w", models.ErrConflict)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

// uniqueHandle пробует base, base2, base3… и в крайнем случае добавляет случайный суффикс.
func uniqueHandle(ctx context.Context, r runner, base string) (string, error) {
	for i := 1; i <= 20; i++ {
		candidate := base
		if i > 1 {
			suffix := strconv.Itoa(i)
			if len(base)+len(suffix) > 20 {
				candidate = base[:20-len(suffix)]
			}
			candidate += suffix
		}
		n, err := r.count(ctx, "SELECT COUNT(*) FROM users WHERE handle = ?", candidate)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	if len(base) > 13 {
		base = base[:13]
	}
	return base + "_" + suffix, nil
}

// GetByID возвращает пользователя; viewerID (0 для анонима) задаёт is_following.
func (s *UserService) GetByID(ctx context.Context, id, viewerID int64) (*models.User, error) {
	row := s.db.run().queryRow(ctx, "SELECT "+userColumns+", "+isFollowingColumn+" FROM users u WHERE u.id = ?", viewerID, id)
	var following bool
	u, err := scanUser(row, &following)
	if err != nil {
		return nil, mapError(err, "user")
	}
	u.IsFollowing = following
	return u, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.run().queryRow(ctx, "SELECT "+userColumns+" FROM users u WHERE u.email = ?", strings.ToLower(strings.TrimSpace(email)))
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, "user")
	}
	return u, nil
}

// FindOrCreateByIdentity привязывает внешнюю личность к существующему аккаунту
// (сначала по subject, затем по email) или создаёт аккаунт без пароля.
func (s *UserService) FindOrCreateByIdentity(ctx context.Context, id Identity) (*models.User, bool, error) {
	var (
		userID  int64
		created bool
	)
	err := s.db.WithTx(ctx, func(r runner) error {
		err := r.queryRow(ctx, "SELECT id FROM users WHERE google_sub = ?", id.Subject).Scan(&userID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		email := strings.ToLower(strings.TrimSpace(id.Email))
		err = r.queryRow(ctx, "SELECT id FROM users WHERE email = ?", email).Scan(&userID)
		switch {
		case err == nil:
			_, err = r.exec(ctx, `UPDATE users SET google_sub = ?,
				profile_image = CASE WHEN profile_image = '' THEN ? ELSE profile_image END, updated_at = ?
				WHERE id = ?`, id.Subject, id.Picture, now(), userID)
			return err
		case errors.Is(err, sql.ErrNoRows):
			name := strings.TrimSpace(id.Name)
			if name == "" {
				name = strings.SplitN(email, "@", 2)[0]
			}
			userID, err = createUser(ctx, r, NewUser{Name: name, Email: email, GoogleSub: id.Subject, ProfileImage: id.Picture})
			created = err == nil
			return err
		default:
			return err
		}
	})
	if err != nil {
		return nil, false, err
	}
	u, err := s.GetByID(ctx, userID, userID)
	return u, created, err
}

// Update применяет изменения профиля. Поля уже проверены content.Profile.
func (s *UserService) Update(ctx context.Context, id int64, upd models.ProfileUpdate) (*models.User, error) {
	var sets []string
	var args []any
	if upd.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, *upd.Name)
		sets, args = append(sets, "search_name = ?"), append(args, content.FoldQuery(*upd.Name))
	}
	if upd.Handle != nil {
		sets, args = append(sets, "handle = ?"), append(args, *upd.Handle)
	}
	if upd.Bio != nil {
		sets, args = append(sets, "bio = ?"), append(args, *upd.Bio)
	}
	if upd.ProfileImage != nil {
		sets, args = append(sets, "profile_image = ?"), append(args, *upd.ProfileImage)
	}
	sets, args = append(sets, "updated_at = ?"), append(args, now(), id)

	err := s.db.WithTx(ctx, func(r runner) error {
		if err := ensureExists(ctx, r, "users", id, "user"); err != nil {
			return err
		}
		if upd.Handle != nil {
			n, err := r.count(ctx, "SELECT COUNT(*) FROM users WHERE handle = ? AND id <> ?", *upd.Handle, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("handle already taken: %w", models.ErrConflict)
			}
		}
		_, err := r.exec(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		return mapError(err, "handle")
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id, id)
}

// Delete удаляет пользователя вместе с его постами, комментариями, лайками и
// подписками, сохраняя счётчики остальных пользователей и постов.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.db.WithTx(ctx, func(r runner) error {
		if err := ensureExists(ctx, r, "users", id, "user"); err != nil {
			return err
		}
		repairs := []string{
			`UPDATE posts SET likes_count = likes_count - 1
				WHERE id IN (SELECT post_id FROM likes WHERE user_id = ?) AND likes_count > 0`,
			`UPDATE posts SET comments_count = comments_count -
				(SELECT COUNT(*) FROM comments c WHERE c.post_id = posts.id AND c.user_id = ?)
				WHERE id IN (SELECT post_id FROM comments WHERE user_id = ?)`,
			`UPDATE users SET followers_count = followers_count - 1
				WHERE id IN (SELECT followed_id FROM follows WHERE follower_id = ?) AND followers_count > 0`,
			`UPDATE users SET following_count = following_count - 1
				WHERE id IN (SELECT follower_id FROM follows WHERE followed_id = ?) AND following_count > 0`,
		}
		for _, q := range repairs {
			args := []any{id}
			if strings.Count(q, "?") == 2 {
				args = append(args, id)
			}
			if _, err := r.exec(ctx, q, args...); err != nil {
				return fmt.Errorf("repair counters: %w", err)
			}
		}

		ownPosts := "SELECT id FROM posts WHERE user_id = ?"
		deletes := []string{
			"DELETE FROM likes WHERE user_id = ? OR post_id IN (" + ownPosts + ")",
			"DELETE FROM comments WHERE user_id = ? OR post_id IN (" + ownPosts + ")",
			"DELETE FROM post_views WHERE user_id = ? OR post_id IN (" + ownPosts + ")",
			"DELETE FROM shares WHERE post_id IN (" + ownPosts + ")",
			"UPDATE shares SET user_id = NULL WHERE user_id = ?",
			"DELETE FROM post_images WHERE post_id IN (" + ownPosts + ")",
			"DELETE FROM post_tags WHERE post_id IN (" + ownPosts + ")",
			"DELETE FROM follows WHERE follower_id = ? OR followed_id = ?",
			"DELETE FROM sessions WHERE user_id = ?",
			"DELETE FROM posts WHERE user_id = ?",
			"DELETE FROM users WHERE id = ?",
		}
		for _, q := range deletes {
			args := make([]any, strings.Count(q, "?"))
			for i := range args {
				args[i] = id
			}
			if _, err := r.exec(ctx, q, args...); err != nil {
				return fmt.Errorf("delete user data: %w", err)
			}
		}
		return nil
	})
}

func likePattern(q string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(q) + "%"
}

// Search ищет по имени и handle без учёта регистра. Запрос сворачивается так
// же, как search_name при записи, поэтому в SQL регистр не трогается.
// Handle всегда в нижнем ASCII.
func (s *UserService) Search(ctx context.Context, query string, viewerID int64) ([]models.User, error) {
	q := content.FoldQuery(query)
	if q == "" {
		return []models.User{}, nil
	}
	pattern := likePattern(q)
	rows, err := s.db.run().query(ctx, "SELECT "+userColumns+", "+isFollowingColumn+` FROM users u
		WHERE u.search_name LIKE ? ESCAPE '!' OR u.handle LIKE ? ESCAPE '!'
		ORDER BY u.followers_count DESC, u.id ASC
		LIMIT ?`, viewerID, pattern, pattern, MaxSearchResults)
	if err != nil {
		return nil, err
	}
	return scanUsers(rows, true)
}

// Suggested возвращает пользователей, на которых зритель ещё не подписан, самых популярных первыми.
func (s *UserService) Suggested(ctx context.Context, viewerID int64, limit int) ([]models.User, error) {
	if limit <= 0 || limit > MaxSuggestedResults {
		limit = MaxSuggestedResults
	}
	rows, err := s.db.run().query(ctx, "SELECT "+userColumns+` FROM users u
		WHERE u.id <> ?
		  AND NOT EXISTS (SELECT 1 FROM follows f WHERE f.follower_id = ? AND f.followed_id = u.id)
		ORDER BY u.followers_count DESC, u.id ASC
		LIMIT ?`, viewerID, viewerID, limit)
	if err != nil {
		return nil, err
	}
	return scanUsers(rows, false)
}

// Followers это подписчики userID, новые первыми.
func (s *UserService) Followers(ctx context.Context, userID, viewerID int64, page, limit int) (*models.UserPage, error) {
	return s.followList(ctx, "f.followed_id", "f.follower_id", userID, viewerID, page, limit)
}

// Following перечисляет подписки userID, новые первыми.
func (s *UserService) Following(ctx context.Context, userID, viewerID int64, page, limit int) (*models.UserPage, error) {
	return s.followList(ctx, "f.follower_id", "f.followed_id", userID, viewerID, page, limit)
}

func (s *UserService) followList(ctx context.Context, matchCol, joinCol string, userID, viewerID int64, page, limit int) (*models.UserPage, error) {
	if err := validatePaging(page, limit, MaxUserPageLimit); err != nil {
		return nil, err
	}
	r := s.db.run()
	if err := ensureExists(ctx, r, "users", userID, "user"); err != nil {
		return nil, err
	}
	total, err := r.count(ctx, "SELECT COUNT(*) FROM follows f WHERE "+matchCol+" = ?", userID)
	if err != nil {
		return nil, err
	}
	rows, err := r.query(ctx, "SELECT "+userColumns+", "+isFollowingColumn+` FROM follows f
		JOIN users u ON u.id = `+joinCol+`
		WHERE `+matchCol+` = ?
		ORDER BY f.created_at DESC, u.id DESC
		LIMIT ? OFFSET ?`, viewerID, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	users, err := scanUsers(rows, true)
	if err != nil {
		return nil, err
	}
	return &models.UserPage{Users: users, Pagination: models.NewPagination(page, limit, total)}, nil
}

// List это список пользователей для админки, вместе с email.
func (s *UserService) List(ctx context.Context, page, limit int) (*models.UserPage, error) {
	if err := validatePaging(page, limit, MaxUserPageLimit); err != nil {
		return nil, err
	}
	r := s.db.run()
	total, err := r.count(ctx, "SELECT COUNT(*) FROM users")
	if err != nil {
		return nil, err
	}
	rows, err := r.query(ctx, "SELECT "+userColumns+` FROM users u
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT ? OFFSET ?`, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &models.UserPage{Users: users, Pagination: models.NewPagination(page, limit, total)}, nil
}

func (s *UserService) SetVerified(ctx context.Context, id int64, verified bool) (*models.User, error) {
	err := s.db.WithTx(ctx, func(r runner) error {
		if err := ensureExists(ctx, r, "users", id, "user"); err != nil {
			return err
		}
		_, err := r.exec(ctx, "UPDATE users SET verified = ?, updated_at = ? WHERE id = ?", verified, now(), id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id, 0)
}

func ensureExists(ctx context.Context, r runner, table string, id int64, what string) error {
	var found int64
	err := r.queryRow(ctx, "SELECT id FROM "+table+" WHERE id = ?", id).Scan(&found)
	return mapError(err, what)
}

func validatePaging(page, limit, maxLimit int) error {
	verr := &models.ValidationError{}
	models.CheckPaging(verr, page, limit, maxLimit)
	return verr.OrNil()
}
