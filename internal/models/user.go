package models

import "time"

type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Handle         string    `json:"handle"`
	Email          string    `json:"email,omitempty"`
	PasswordHash   string    `json:"-"`
	GoogleSub      string    `json:"-"`
	ProfileImage   string    `json:"profile_image"`
	Bio            string    `json:"bio"`
	Verified       bool      `json:"verified"`
	PostsCount     int64     `json:"posts_count"`
	FollowersCount int64     `json:"followers_count"`
	FollowingCount int64     `json:"following_count"`
	CreatedAt      time.Time `json:"created_at"`
	IsFollowing    bool      `json:"is_following"`
}

// Public убирает поля, видимые только владельцу и админу.
func (u User) Public() User {
	u.Email = ""
	return u
}

// ProfileUpdate это редактируемые поля профиля. nil значит без изменений.
type ProfileUpdate struct {
	Name         *string `json:"name"`
	Handle       *string `json:"handle"`
	Bio          *string `json:"bio"`
	ProfileImage *string `json:"profile_image"`
}

type UserPage struct {
	Users      []User     `json:"users"`
	Pagination Pagination `json:"pagination"`
}
