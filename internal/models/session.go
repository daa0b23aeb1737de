package models

import "time"

// Session это выданный bearer-токен. Сессии админов хранятся отдельно и
// не открывают пользовательские маршруты.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id,omitempty"`
	AdminID   int64     `json:"admin_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Admin struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Stats struct {
	Users    int64 `json:"users"`
	Verified int64 `json:"verified_users"`
	Posts    int64 `json:"posts"`
	Comments int64 `json:"comments"`
	Likes    int64 `json:"likes"`
	Follows  int64 `json:"follows"`
	Shares   int64 `json:"shares"`
	Views    int64 `json:"views"`
}

// Principal это участник запроса. У вошедшего задан ровно один из UserID
// и AdminID, у анонима оба нулевые.
type Principal struct {
	UserID  int64
	AdminID int64
}

func (p Principal) IsAdmin() bool { return p.AdminID > 0 }

func (p Principal) IsUser() bool { return p.UserID > 0 }

func (p Principal) Anonymous() bool { return p.UserID == 0 && p.AdminID == 0 }
