package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestAdmin_StatsAndListings(t *testing.T) {
	app := setupApp(t)
	c := app.c
	author, _ := app.signup("Author", "author@example.com")
	app.signup("Reader", "reader@example.com")
	app.createPost(author, "first")
	admin := app.adminToken()

	res := app.do(http.MethodGet, "/admin/stats", admin, nil)
	c.Assert(res.Code, qt.Equals, http.StatusOK)
	stats := res.Body["stats"].(map[string]any)
	c.Assert(num(stats["users"]), qt.Equals, int64(2))
	c.Assert(num(stats["posts"]), qt.Equals, int64(1))

	res = app.do(http.MethodGet, "/admin/users?page=1&limit=1", admin, nil)
	c.Assert(res.Code, qt.Equals, http.StatusOK)
	c.Assert(res.Body["users"], qt.HasLen, 1)
	c.Assert(res.Body["users"].([]any)[0].(map[string]any)["email"], qt.Not(qt.IsNil))

	res = app.do(http.MethodGet, "/admin/blogs", admin, nil)
	c.Assert(res.Body["posts"], qt.HasLen, 1)
}

func TestAdmin_VerifyAndDeleteUser(t *testing.T) {
	app := setupApp(t)
	c := app.c
	author, authorID := app.signup("Author", "author@example.com")
	fan, _ := app.signup("Fan", "fan@example.com")
	fanPost := app.createPost(fan, "fan post")
	app.do(http.MethodPost, "/likes", author, map[string]any{"post_id": fanPost})
	app.do(http.MethodPost, "/follow", fan, map[string]any{"follow_id": authorID})
	admin := app.adminToken()

	res := app.do(http.MethodPut, fmt.Sprintf("/admin/users/%d/verify", authorID), admin, map[string]any{"verified": true})
	c.Assert(res.Code, qt.Equals, http.StatusOK)
	c.Assert(res.Body["user"].(map[string]any)["verified"], qt.Equals, true)

	res = app.do(http.MethodDelete, fmt.Sprintf("/admin/users/%d", authorID), admin, nil)
	c.Assert(res.Code, qt.Equals, http.StatusOK)

	post := app.do(http.MethodGet, fmt.Sprintf("/posts/%d", fanPost), "", nil)
	c.Assert(num(post.Body["post"].(map[string]any)["likes_count"]), qt.Equals, int64(0))

	me := app.do(http.MethodGet, "/me", fan, nil)
	c.Assert(num(me.Body["user"].(map[string]any)["following_count"]), qt.Equals, int64(0))

	res = app.do(http.MethodDelete, fmt.Sprintf("/admin/users/%d", authorID), admin, nil)
	c.Assert(res.Code, qt.Equals, http.StatusNotFound)
}

func TestAdmin_DeleteBlogAndReconcile(t *testing.T) {
	app := setupApp(t)
	c := app.c
	author, authorID := app.signup("Author", "author@example.com")
	id := app.createPost(author, "moderated")
	admin := app.adminToken()

	res := app.do(http.MethodDelete, fmt.Sprintf("/admin/blogs/%d", id), admin, nil)
	c.Assert(res.Code, qt.Equals, http.StatusOK)

	user := app.do(http.MethodGet, fmt.Sprintf("/user/%d", authorID), "", nil)
	c.Assert(num(user.Body["user"].(map[string]any)["posts_count"]), qt.Equals, int64(0))

	res = app.do(http.MethodPost, "/admin/reconcile", admin, nil)
	c.Assert(res.Code, qt.Equals, http.StatusOK)
	c.Assert(num(res.Body["total"]), qt.Equals, int64(0))
}
