package auth

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"blogsphere/internal/models"
)

const (
	MinPasswordLen = 8
	MaxPasswordLen = 72 // предел bcrypt
	MaxNameLen     = 100
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type SignupInput struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateSignup проверяет форму регистрации и собирает ошибки по полям.
func ValidateSignup(in SignupInput) error {
	verr := &models.ValidationError{}

	name := strings.TrimSpace(in.FullName)
	switch {
	case name == "":
		verr.Add("full_name", "full name is required")
	case utf8.RuneCountInString(name) > MaxNameLen:
		verr.Add("full_name", "full name is too long")
	}

	email := strings.TrimSpace(in.Email)
	switch {
	case email == "":
		verr.Add("email", "email is required")
	case !ValidEmail(email):
		verr.Add("email", "email is not valid")
	}

	if msg := passwordProblem(in.Password); msg != "" {
		verr.Add("password", msg)
	}
	if in.ConfirmPassword != in.Password {
		verr.Add("confirm_password", "passwords do not match")
	}
	return verr.OrNil()
}

func passwordProblem(p string) string {
	if p == "" {
		return "password is required"
	}
	if utf8.RuneCountInString(p) < MinPasswordLen {
		return "password must be at least 8 characters"
	}
	if len(p) > MaxPasswordLen {
		return "password is too long"
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return "password must contain at least one letter and one digit"
	}
	return ""
}

// ValidateLogin проверяет только наличие полей; ошибки входа не привязаны к полю.
func ValidateLogin(in LoginInput) error {
	verr := &models.ValidationError{}
	if strings.TrimSpace(in.Email) == "" {
		verr.Add("email", "email is required")
	}
	if in.Password == "" {
		verr.Add("password", "password is required")
	}
	return verr.OrNil()
}
