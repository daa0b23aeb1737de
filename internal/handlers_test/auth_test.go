package handlers_test

import (
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSignup_Success(t *testing.T) {
	app := setupApp(t)
	c := app.c

	res := app.do(http.MethodPost, "/signup", "", map[string]string{
		"full_name": "New Person", "email": "new@example.com", "password": "pass1234", "confirm_password": "pass1234",
	})
	c.Assert(res.Code, qt.Equals, http.StatusCreated)
	c.Assert(res.Body["success"], qt.Equals, true)
	c.Assert(res.Body["token"], qt.Not(qt.Equals), "")
	user := res.Body["user"].(map[string]any)
	c.Assert(user["handle"], qt.Equals, "new_person")
	c.Assert(user["email"], qt.Equals, "new@example.com")
	_, leaked := user["password_hash"]
	c.Assert(leaked, qt.IsFalse)
}

func TestSignup_Validation(t *testing.T) {
	app := setupApp(t)
	c := app.c

	for _, password := range []string{"12345678", "password"} {
		res := app.do(http.MethodPost, "/signup", "", map[string]string{
			"full_name": "Weak Password", "email": "weak@example.com", "password": password, "confirm_password": password,
		})
		c.Assert(res.Code, qt.Equals, http.StatusBadRequest)
		c.Assert(res.Body["success"], qt.Equals, false)
		c.Assert(res.Body["errors"].(map[string]any)["password"], qt.Not(qt.IsNil))
	}

	res := app.do(http.MethodPost, "/signup", "", nil)
	c.Assert(res.Code, qt.Equals, http.StatusBadRequest)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	app := setupApp(t)
	app.signup("First Person", "dup@example.com")

	res := app.do(http.MethodPost, "/signup", "", map[string]string{
		"full_name": "Second Person", "email": "DUP@example.com", "password": "pass1234", "confirm_password": "pass1234",
	})
	app.c.Assert(res.Code, qt.Equals, http.StatusConflict)
	app.c.Assert(res.Body["message"], qt.Equals, "email already registered")
}

func TestLogin_Success(t *testing.T) {
	app := setupApp(t)
	c := app.c
	_, id := app.signup("Login Person", "login@example.com")

	for _, path := range []string{"/login", "/api/login"} {
		res := app.do(http.MethodPost, path, "", map[string]string{"email": "login@example.com", "password": "pass1234"})
		c.Assert(res.Code, qt.Equals, http.StatusOK)
		token := res.Body["token"].(string)

		me := app.do(http.MethodGet, "/me", token, nil)
		c.Assert(me.Code, qt.Equals, http.StatusOK)
		c.Assert(num(me.Body["user"].(map[string]any)["id"]), qt.Equals, id)
	}
}

func TestLogin_SameMessageForUnknownEmailAndWrongPassword(t *testing.T) {
	app := setupApp(t)
	c := app.c
	app.signup("Login Person", "login@example.com")

	unknown := app.do(http.MethodPost, "/login", "", map[string]string{"email": "ghost@example.com", "password": "pass1234"})
	wrong := app.do(http.MethodPost, "/login", "", map[string]string{"email": "login@example.com", "password": "nope12345"})

	c.Assert(unknown.Code, qt.Equals, http.StatusUnauthorized)
	c.Assert(wrong.Code, qt.Equals, http.StatusUnauthorized)
	c.Assert(unknown.Body, qt.DeepEquals, wrong.Body)
	c.Assert(wrong.Body["message"], qt.Equals, "invalid email or password")
}

func TestLogout_RevokesToken(t *testing.T) {
	app := setupApp(t)
	c := app.c
	token, _ := app.signup("Logout Person", "bye@example.com")

	res := app.do(http.MethodPost, "/logout", token, nil)
	c.Assert(res.Code, qt.Equals, http.StatusOK)

	res = app.do(http.MethodGet, "/me", token, nil)
	c.Assert(res.Code, qt.Equals, http.StatusUnauthorized)

	res = app.do(http.MethodPost, "/logout", token, nil)
	c.Assert(res.Code, qt.Equals, http.StatusOK)
}

func TestGoogleLogin(t *testing.T) {
	app := setupApp(t)
	c := app.c

	res := app.do(http.MethodPost, "/auth/google", "", map[string]string{"credential": "google:sub-9:gg@example.com"})
	c.Assert(res.Code, qt.Equals, http.StatusCreated)
	c.Assert(res.Body["created"], qt.Equals, true)

	res = app.do(http.MethodPost, "/auth/google", "", map[string]string{"credential": "google:sub-9:gg@example.com"})
	c.Assert(res.Code, qt.Equals, http.StatusOK)
	c.Assert(res.Body["created"], qt.Equals, false)

	res = app.do(http.MethodPost, "/auth/google", "", map[string]string{"credential": "forged"})
	c.Assert(res.Code, qt.Equals, http.StatusUnauthorized)
}

func TestAdminRoutes_RejectUserTokens(t *testing.T) {
	app := setupApp(t)
	c := app.c
	userToken, _ := app.signup("Plain User", "plain@example.com")

	res := app.do(http.MethodGet, "/admin/stats", "", nil)
	c.Assert(res.Code, qt.Equals, http.StatusUnauthorized)

	res = app.do(http.MethodGet, "/admin/stats", userToken, nil)
	c.Assert(res.Code, qt.Equals, http.StatusForbidden)

	res = app.do(http.MethodGet, "/admin/stats", app.adminToken(), nil)
	c.Assert(res.Code, qt.Equals, http.StatusOK)
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	app := setupApp(t)
	app.adminToken()

	res := app.do(http.MethodPost, "/admin/login", "", map[string]string{"email": "root@example.com", "password": "wrong1234"})
	app.c.Assert(res.Code, qt.Equals, http.StatusUnauthorized)
	app.c.Assert(res.Body["message"], qt.Equals, "invalid email or password")
}
