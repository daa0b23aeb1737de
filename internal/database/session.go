package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"blogsphere/internal/models"
)

// ErrSessionExpired возвращает Lookup для просроченного токена.
var ErrSessionExpired = fmt.Errorf("session expired: %w", models.ErrUnauthorized)

// SessionService хранит токены пользователей и администраторов в разных таблицах.
type SessionService struct {
	db *DB
}

func NewSessionService(db *DB) *SessionService {
	return &SessionService{db: db}
}

// Create выдаёт сессию пользователя и удаляет его просроченные.
func (s *SessionService) Create(ctx context.Context, userID int64, ttl time.Duration) (*models.Session, error) {
	return s.create(ctx, "sessions", "user_id", userID, ttl)
}

// CreateAdmin выдаёт токен администратора.
func (s *SessionService) CreateAdmin(ctx context.Context, adminID int64, ttl time.Duration) (*models.Session, error) {
	return s.create(ctx, "admin_sessions", "admin_id", adminID, ttl)
}

func (s *SessionService) create(ctx context.Context, table, ownerCol string, ownerID int64, ttl time.Duration) (*models.Session, error) {
	ts := now()
	sess := &models.Session{Token: uuid.NewString(), ExpiresAt: ts.Add(ttl)}
	if ownerCol == "admin_id" {
		sess.AdminID = ownerID
	} else {
		sess.UserID = ownerID
	}
	err := s.db.WithTx(ctx, func(r runner) error {
		if _, err := r.exec(ctx, "DELETE FROM "+table+" WHERE "+ownerCol+" = ? AND expires_at <= ?", ownerID, ts); err != nil {
			return err
		}
		_, err := r.exec(ctx, "INSERT INTO "+table+" (token, "+ownerCol+", expires_at, created_at) VALUES (?, ?, ?, ?)",
			sess.Token, ownerID, sess.ExpiresAt, ts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Lookup ищет токен в обеих таблицах. Просроченный удаляется сразу и
// даёт ErrSessionExpired, неизвестный даёт ErrUnauthorized.
func (s *SessionService) Lookup(ctx context.Context, token string) (*models.Session, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, fmt.Errorf("malformed token: %w", models.ErrUnauthorized)
	}
	r := s.db.run()
	sess := &models.Session{Token: token}
	table := "sessions"
	err := r.queryRow(ctx, "SELECT user_id, expires_at FROM sessions WHERE token = ?", token).Scan(&sess.UserID, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		table = "admin_sessions"
		err = r.queryRow(ctx, "SELECT admin_id, expires_at FROM admin_sessions WHERE token = ?", token).Scan(&sess.AdminID, &sess.ExpiresAt)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("unknown token: %w", models.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if !now().Before(sess.ExpiresAt.UTC()) {
		if _, err := r.exec(ctx, "DELETE FROM "+table+" WHERE token = ?", token); err != nil {
			s.db.logger.Warn("delete expired session", "error", err)
		}
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Delete отзывает токен, в какой бы таблице он ни был.
func (s *SessionService) Delete(ctx context.Context, token string) error {
	return s.db.WithTx(ctx, func(r runner) error {
		for _, table := range []string{"sessions", "admin_sessions"} {
			if _, err := r.exec(ctx, "DELETE FROM "+table+" WHERE token = ?", token); err != nil {
				return err
			}
		}
		return nil
	})
}

// PurgeExpired удаляет все истёкшие сессии и возвращает их количество.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithTx(ctx, func(r runner) error {
		ts := now()
		for _, table := range []string{"sessions", "admin_sessions"} {
			n, err := r.affected(ctx, "DELETE FROM "+table+" WHERE expires_at <= ?", ts)
			if err != nil {
				return fmt.Errorf("purge %s: %w", table, err)
			}
			total += n
		}
		return nil
	})
	return total, err
}
