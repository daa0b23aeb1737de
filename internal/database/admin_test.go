package database_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"blogsphere/internal/database"
	"blogsphere/internal/database/dbtest"
	"blogsphere/internal/models"
)

func TestAdminCreateAndLookup(t *testing.T) {
	c := qt.New(t)
	db, _ := dbtest.New(t)
	admins := database.NewAdminService(db)

	a, err := admins.CreateAdmin(ctx, " Root@Example.com ", "hash")
	c.Assert(err, qt.IsNil)
	c.Assert(a.Email, qt.Equals, "root@example.com")

	_, err = admins.CreateAdmin(ctx, "root@example.com", "hash")
	c.Assert(err, qt.ErrorIs, models.ErrConflict)

	got, err := admins.GetAdminByEmail(ctx, "ROOT@example.com")
	c.Assert(err, qt.IsNil)
	c.Assert(got.ID, qt.Equals, a.ID)

	_, err = admins.GetAdminByEmail(ctx, "nobody@example.com")
	c.Assert(err, qt.ErrorIs, models.ErrNotFound)
}

func TestAdminStats(t *testing.T) {
	c := qt.New(t)
	db, _ := dbtest.New(t)
	author := createUser(c, db, "Stats Author")
	reader := createUser(c, db, "Stats Reader")
	p := createPost(c, db, author.ID, "counted post")
	_, err := database.NewLikeService(db).Like(ctx, p.ID, reader.ID)
	c.Assert(err, qt.IsNil)
	_, err = database.NewCommentService(db).Create(ctx, p.ID, reader.ID, "ok")
	c.Assert(err, qt.IsNil)
	_, err = database.NewFollowService(db).Follow(ctx, reader.ID, author.ID)
	c.Assert(err, qt.IsNil)
	_, err = database.NewPostService(db).RecordView(ctx, p.ID, 0)
	c.Assert(err, qt.IsNil)
	_, err = database.NewUserService(db).SetVerified(ctx, author.ID, true)
	c.Assert(err, qt.IsNil)

	st, err := database.NewAdminService(db).Stats(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(st, qt.DeepEquals, &models.Stats{
		Users: 2, Verified: 1, Posts: 1, Comments: 1, Likes: 1, Follows: 1, Shares: 0, Views: 1,
	})

	page, err := database.NewAdminService(db).ListPosts(ctx, 1, 10)
	c.Assert(err, qt.IsNil)
	c.Assert(page.Posts, qt.HasLen, 1)
}
