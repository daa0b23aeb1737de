package database_test

import (
	"context"
	"fmt"
	"strings"

	qt "github.com/frankban/quicktest"

	"blogsphere/internal/content"
	"blogsphere/internal/database"
	"blogsphere/internal/models"
)

var ctx = context.Background()

func createUser(c *qt.C, db *database.DB, name string) *models.User {
	c.Helper()
	email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com"
	u, err := database.NewUserService(db).Create(ctx, database.NewUser{Name: name, Email: email, PasswordHash: "hash"})
	c.Assert(err, qt.IsNil)
	return u
}

func samplePost(title string) *content.Post {
	return &content.Post{
		Title:       title,
		Description: "<p>" + strings.Repeat("word ", 30) + "</p>",
		Images:      []string{"/uploads/" + strings.ReplaceAll(title, " ", "_") + ".png"},
		Category:    models.CategoryTechnology,
		Tags:        []string{"go", "sql"},
		ReadingTime: "1 min read",
	}
}

func createPost(c *qt.C, db *database.DB, userID int64, title string) *models.Post {
	c.Helper()
	p, err := database.NewPostService(db).Create(ctx, userID, samplePost(title))
	c.Assert(err, qt.IsNil)
	return p
}

func createPosts(c *qt.C, db *database.DB, userID int64, n int) []*models.Post {
	c.Helper()
	posts := make([]*models.Post, n)
	for i := range posts {
		posts[i] = createPost(c, db, userID, fmt.Sprintf("post number %d", i+1))
	}
	return posts
}
