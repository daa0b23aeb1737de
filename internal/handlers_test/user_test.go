package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestGetUser_EmailOnlyForOwner(t *testing.T) {
	app := setupApp(t)
	c := app.c
	owner, id := app.signup("Owner", "owner@example.com")
	other, _ := app.signup("Other", "other@example.com")
	path := fmt.Sprintf("/user/%d", id)

	res := app.do(http.MethodGet, path, owner, nil)
	c.Assert(res.Body["user"].(map[string]any)["email"], qt.Equals, "owner@example.com")

	res = app.do(http.MethodGet, path, other, nil)
	_, hasEmail := res.Body["user"].(map[string]any)["email"]
	c.Assert(hasEmail, qt.IsFalse)

	res = app.do(http.MethodGet, path, app.adminToken(), nil)
	c.Assert(res.Body["user"].(map[string]any)["email"], qt.Equals, "owner@example.com")

	res = app.do(http.MethodGet, "/user/abc", "", nil)
	c.Assert(res.Code, qt.Equals, http.StatusBadRequest)
}

func TestUpdateUser(t *testing.T) {
	app := setupApp(t)
	c := app.c
	owner, id := app.signup("Owner", "owner@example.com")
	other, _ := app.signup("Other Person", "other@example.com")
	path := fmt.Sprintf("/user/%d", id)

	res := app.do(http.MethodPut, path, other, map[string]any{"bio": "hacked"})
	c.Assert(res.Code, qt.Equals, http.StatusForbidden)

	res = app.do(http.MethodPut, path, owner, map[string]any{"bio": "Writing about Go", "handle": "@Owner_Go"})
	c.Assert(res.Code, qt.Equals, http.StatusOK)
	user := res.Body["user"].(map[string]any)
	c.Assert(user["bio"], qt.Equals, "Writing about Go")
	c.Assert(user["handle"], qt.Equals, "owner_go")

	res = app.do(http.MethodPut, path, owner, map[string]any{"handle": "other_person"})
	c.Assert(res.Code, qt.Equals, http.StatusConflict)

	res = app.do(http.MethodPut, path, owner, map[string]any{"handle": "no spaces allowed"})
	c.Assert(res.Code, qt.Equals, http.StatusBadRequest)
}

func TestDeleteUser_Self(t *testing.T) {
	app := setupApp(t)
	c := app.c
	owner, id := app.signup("Owner", "owner@example.com")
	other, _ := app.signup("Other", "other@example.com")
	app.createPost(owner, "will vanish")
	path := fmt.Sprintf("/user/%d", id)

	res := app.do(http.MethodDelete, path, other, nil)
	c.Assert(res.Code, qt.Equals, http.StatusForbidden)

	res = app.do(http.MethodDelete, path, owner, nil)
	c.Assert(res.Code, qt.Equals, http.StatusOK)

	res = app.do(http.MethodGet, path, "", nil)
	c.Assert(res.Code, qt.Equals, http.StatusNotFound)

	// сессии удалённого пользователя больше не действуют
	res = app.do(http.MethodGet, "/me", owner, nil)
	c.Assert(res.Code, qt.Equals, http.StatusUnauthorized)

	res = app.do(http.MethodGet, "/posts", "", nil)
	c.Assert(res.Body["posts"], qt.HasLen, 0)
}
