package content_test

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"blogsphere/internal/content"
	"blogsphere/internal/models"
)

func validInput() content.PostInput {
	return content.PostInput{
		Title:       "  A post title  ",
		Description: "<p>" + strings.Repeat("Some words here. ", 5) + "</p>",
		Images:      []string{"/uploads/a.png", " https://cdn.example.com/b.jpg "},
		Category:    "food",
		Tags:        []string{" Go ", "#go", "Cooking", ""},
	}
}

func TestPostInputValidate(t *testing.T) {
	c := qt.New(t)

	p, err := validInput().Validate()
	c.Assert(err, qt.IsNil)
	c.Assert(p.Title, qt.Equals, "A post title")
	c.Assert(p.Category, qt.Equals, models.CategoryFood)
	c.Assert(p.Tags, qt.DeepEquals, []string{"go", "cooking"})
	c.Assert(p.Images, qt.DeepEquals, []string{"/uploads/a.png", "https://cdn.example.com/b.jpg"})
	c.Assert(p.ReadingTime, qt.Equals, "1 min read")
}

func TestPostInputValidateErrors(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		name  string
		edit  func(*content.PostInput)
		field string
	}{
		{"short title", func(in *content.PostInput) { in.Title = " ab " }, "title"},
		{"short description", func(in *content.PostInput) { in.Description = "<b>too short</b>" }, "description"},
		{"markup does not count", func(in *content.PostInput) { in.Description = "<p>" + strings.Repeat("<i></i>", 50) + "</p>" }, "description"},
		{"no images", func(in *content.PostInput) { in.Images = nil }, "images"},
		{"too many images", func(in *content.PostInput) { in.Images = strings.Split("/a,/b,/c,/d,/e,/f", ",") }, "images"},
		{"bad image", func(in *content.PostInput) { in.Images = []string{"javascript:alert(1)"} }, "images"},
		{"unknown category", func(in *content.PostInput) { in.Category = "Gardening" }, "category"},
		{"long tag", func(in *content.PostInput) { in.Tags = []string{strings.Repeat("t", 31)} }, "tags"},
		{"bad link", func(in *content.PostInput) { in.Link = "ftp://example.com" }, "link"},
	}
	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			in := validInput()
			tt.edit(&in)
			_, err := in.Validate()
			var verr *models.ValidationError
			c.Assert(err, qt.ErrorAs, &verr)
			c.Assert(verr.Fields[tt.field], qt.Not(qt.Equals), "")
		})
	}
}

func TestSanitizeDropsScripts(t *testing.T) {
	c := qt.New(t)
	out := content.Sanitize(`<p onclick="x()">hi <script>alert(1)</script><a href="https://example.com">link</a></p>`)
	c.Assert(out, qt.Not(qt.Contains), "script")
	c.Assert(out, qt.Not(qt.Contains), "onclick")
	c.Assert(out, qt.Contains, "https://example.com")
	c.Assert(content.PlainText("<p>Fish &amp; chips</p>\n<p>today</p>"), qt.Equals, "Fish & chips today")
}

func TestReadingTime(t *testing.T) {
	c := qt.New(t)
	c.Assert(content.ReadingTime(""), qt.Equals, "1 min read")
	c.Assert(content.ReadingTime(strings.Repeat("word ", 200)), qt.Equals, "1 min read")
	c.Assert(content.ReadingTime(strings.Repeat("word ", 201)), qt.Equals, "2 min read")
}

func TestHandle(t *testing.T) {
	c := qt.New(t)
	for in, want := range map[string]string{
		"José Álvarez":                    "jose_alvarez",
		"  Mary-Jane O'Neil ":             "mary_jane_o_neil",
		"Al":                              "al_",
		"!!!":                             "user",
		"A Very Long Display Name Indeed": "a_very_long_display",
	} {
		got := content.Handle(in)
		c.Assert(got, qt.Equals, want, qt.Commentf("input %q", in))
		c.Assert(content.ValidHandle(got), qt.IsTrue)
	}
}

func TestFoldQuery(t *testing.T) {
	c := qt.New(t)
	want := content.FoldQuery("Élodie Durand")
	for _, in := range []string{"  élodie durand ", "ÉLODIE DURAND", "E\u0301LODIE DURAND"} {
		c.Assert(content.FoldQuery(in), qt.Equals, want, qt.Commentf("input %q", in))
	}
	c.Assert(content.FoldQuery("STRASSE"), qt.Equals, content.FoldQuery("Straße"))
}

func TestComment(t *testing.T) {
	c := qt.New(t)
	got, err := content.Comment("  hello  ")
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "hello")

	_, err = content.Comment(" \n ")
	c.Assert(err, qt.ErrorIs, models.ErrValidation)
}

func TestProfile(t *testing.T) {
	c := qt.New(t)
	handle, bio := "@New_Handle", "  about me  "
	upd := models.ProfileUpdate{Handle: &handle, Bio: &bio}
	c.Assert(content.Profile(&upd), qt.IsNil)
	c.Assert(*upd.Handle, qt.Equals, "new_handle")
	c.Assert(*upd.Bio, qt.Equals, "about me")

	bad := "x"
	c.Assert(content.Profile(&models.ProfileUpdate{Handle: &bad}), qt.ErrorIs, models.ErrValidation)
}
