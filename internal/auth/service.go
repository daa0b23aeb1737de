// Package auth реализует регистрацию, вход по паролю и через Google,
// вход администратора и разбор bearer-токенов.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"blogsphere/internal/database"
	"blogsphere/internal/models"
)

// ErrInvalidCredentials это единственный ответ на любой неудачный вход по паролю.
var ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", models.ErrUnauthorized)

// Result это вошедший пользователь с новой сессией.
type Result struct {
	User    *models.User    `json:"user"`
	Session *models.Session `json:"-"`
	Created bool            `json:"-"`
}

// AdminResult это вошедший администратор с новой сессией.
type AdminResult struct {
	Admin   *models.Admin   `json:"admin"`
	Session *models.Session `json:"-"`
}

type Service struct {
	Users    *database.UserService
	Sessions *database.SessionService
	Admins   *database.AdminService
	Verifier IdentityVerifier
	TTL      time.Duration
	AdminTTL time.Duration
	Logger   *slog.Logger
}

func NewService(db *database.DB, verifier IdentityVerifier, ttl, adminTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Users:    database.NewUserService(db),
		Sessions: database.NewSessionService(db),
		Admins:   database.NewAdminService(db),
		Verifier: verifier,
		TTL:      ttl,
		AdminTTL: adminTTL,
		Logger:   logger,
	}
}

// Signup регистрирует пользователя и сразу открывает сессию.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Result, error) {
	if err := ValidateSignup(in); err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.Users.Create(ctx, database.NewUser{
		Name:         strings.TrimSpace(in.FullName),
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}
	return s.open(ctx, user, true)
}

// Login проверяет пароль. Неизвестный email, неверный пароль и аккаунт
// без пароля дают одну и ту же ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Result, error) {
	if err := ValidateLogin(in); err != nil {
		return nil, err
	}
	user, err := s.Users.GetByEmail(ctx, in.Email)
	if errors.Is(err, models.ErrNotFound) {
		CheckPassword(dummyHash(), in.Password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" || !CheckPassword(user.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.open(ctx, user, false)
}

// GoogleLogin проверяет ID-токен, находит или создаёт аккаунт и открывает сессию.
func (s *Service) GoogleLogin(ctx context.Context, credential string) (*Result, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, models.NewValidationError("credential", "credential is required")
	}
	if s.Verifier == nil {
		return nil, errors.New("identity verifier is not configured")
	}
	identity, err := s.Verifier.Verify(ctx, credential)
	if err != nil {
		return nil, err
	}
	user, created, err := s.Users.FindOrCreateByIdentity(ctx, *identity)
	if err != nil {
		return nil, err
	}
	if created {
		s.Logger.Info("user created from google identity", "user_id", user.ID)
	}
	return s.open(ctx, user, created)
}

func (s *Service) open(ctx context.Context, user *models.User, created bool) (*Result, error) {
	sess, err := s.Sessions.Create(ctx, user.ID, s.TTL)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return &Result{User: user, Session: sess, Created: created}, nil
}

func (s *Service) AdminLogin(ctx context.Context, in LoginInput) (*AdminResult, error) {
	if err := ValidateLogin(in); err != nil {
		return nil, err
	}
	admin, err := s.Admins.GetAdminByEmail(ctx, in.Email)
	if errors.Is(err, models.ErrNotFound) {
		CheckPassword(dummyHash(), in.Password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(admin.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}
	sess, err := s.Sessions.CreateAdmin(ctx, admin.ID, s.AdminTTL)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("admin signed in", "admin_id", admin.ID)
	return &AdminResult{Admin: admin, Session: sess}, nil
}

// Authenticate превращает bearer-токен в участника запроса.
func (s *Service) Authenticate(ctx context.Context, token string) (models.Principal, error) {
	sess, err := s.Sessions.Lookup(ctx, token)
	if err != nil {
		return models.Principal{}, err
	}
	return models.Principal{UserID: sess.UserID, AdminID: sess.AdminID}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.Sessions.Delete(ctx, token)
}

// CreateAdmin проверяет и сохраняет администратора.
func (s *Service) CreateAdmin(ctx context.Context, email, password string) (*models.Admin, error) {
	verr := &models.ValidationError{}
	if !ValidEmail(strings.TrimSpace(email)) {
		verr.Add("email", "email is not valid")
	}
	if msg := passwordProblem(password); msg != "" {
		verr.Add("password", msg)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.Admins.CreateAdmin(ctx, email, hash)
}

// BootstrapAdmin создаёт администратора из конфига, если его ещё нет.
func (s *Service) BootstrapAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.Admins.GetAdminByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}
	admin, err := s.CreateAdmin(ctx, email, password)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	s.Logger.Info("admin account created", "admin_id", admin.ID, "email", admin.Email)
	return nil
}
