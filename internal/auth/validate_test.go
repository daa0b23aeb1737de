package auth_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"blogsphere/internal/auth"
	"blogsphere/internal/models"
)

func TestValidateSignupPasswordRules(t *testing.T) {
	c := qt.New(t)
	base := auth.SignupInput{FullName: "Test User", Email: "test@example.com"}

	for _, tc := range []struct {
		password string
		ok       bool
	}{
		{"12345678", false},
		{"password", false},
		{"pass1234", true},
		{"p4ss", false},
		{"пароль12", true},
	} {
		in := base
		in.Password, in.ConfirmPassword = tc.password, tc.password
		err := auth.ValidateSignup(in)
		if tc.ok {
			c.Assert(err, qt.IsNil, qt.Commentf("password %q", tc.password))
			continue
		}
		c.Assert(err, qt.ErrorIs, models.ErrValidation, qt.Commentf("password %q", tc.password))
		var verr *models.ValidationError
		c.Assert(err, qt.ErrorAs, &verr)
		c.Assert(verr.Fields["password"], qt.Not(qt.Equals), "")
	}
}

func TestValidateSignupFields(t *testing.T) {
	c := qt.New(t)

	err := auth.ValidateSignup(auth.SignupInput{
		FullName: " ", Email: "not-an-email", Password: "pass1234", ConfirmPassword: "pass12345",
	})
	var verr *models.ValidationError
	c.Assert(err, qt.ErrorAs, &verr)
	c.Assert(verr.Fields, qt.DeepEquals, map[string]string{
		"full_name":        "full name is required",
		"email":            "email is not valid",
		"confirm_password": "passwords do not match",
	})
}

func TestPasswordHashing(t *testing.T) {
	c := qt.New(t)
	hash, err := auth.HashPassword("pass1234")
	c.Assert(err, qt.IsNil)
	c.Assert(hash, qt.Not(qt.Equals), "pass1234")
	c.Assert(auth.CheckPassword(hash, "pass1234"), qt.IsTrue)
	c.Assert(auth.CheckPassword(hash, "pass12345"), qt.IsFalse)
}
