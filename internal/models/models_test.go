package models_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	qt "github.com/frankban/quicktest"

	"blogsphere/internal/models"
)

func TestPostQueryDefaults(t *testing.T) {
	c := qt.New(t)
	q := models.PostQuery{Page: 2, Limit: 10, Order: "ASC"}
	c.Assert(q.Validate(), qt.IsNil)
	c.Assert(q.Sort, qt.Equals, models.SortCreatedAt)
	c.Assert(q.Order, qt.Equals, models.OrderAsc)
	c.Assert(q.Offset(), qt.Equals, 10)
}

func TestPostQueryRejects(t *testing.T) {
	c := qt.New(t)
	q := models.PostQuery{Page: 0, Limit: 51, Sort: "random", Order: "sideways"}
	err := q.Validate()

	var verr *models.ValidationError
	c.Assert(err, qt.ErrorAs, &verr)
	c.Assert(err, qt.ErrorIs, models.ErrValidation)
	for _, f := range []string{"page", "limit", "sort", "order"} {
		c.Assert(verr.Fields[f], qt.Not(qt.Equals), "", qt.Commentf("field %s", f))
	}
}

func TestCheckPagingBoundsOffset(t *testing.T) {
	c := qt.New(t)
	maxPage := math.MaxInt / 4

	ok := models.PostQuery{Page: maxPage, Limit: 4}
	c.Assert(ok.Validate(), qt.IsNil)
	c.Assert(ok.Offset() >= 0, qt.IsTrue)

	for _, page := range []int{maxPage + 1, 1 << 62, math.MaxInt} {
		q := models.PostQuery{Page: page, Limit: 4}
		var verr *models.ValidationError
		c.Assert(q.Validate(), qt.ErrorAs, &verr, qt.Commentf("page %d", page))
		c.Assert(verr.Fields["page"], qt.Not(qt.Equals), "")
	}

	verr := &models.ValidationError{}
	models.CheckPaging(verr, math.MaxInt, 1, 100)
	c.Assert(verr.OrNil(), qt.IsNil)
	models.CheckPaging(verr, math.MaxInt, 2, 100)
	c.Assert(verr.Fields["page"], qt.Not(qt.Equals), "")
}

func TestPagination(t *testing.T) {
	c := qt.New(t)
	c.Assert(models.NewPagination(1, 10, 0), qt.Equals, models.Pagination{Page: 1, Limit: 10})
	c.Assert(models.NewPagination(2, 10, 25), qt.Equals, models.Pagination{Page: 2, Limit: 10, Total: 25, TotalPages: 3, HasMore: true})
	c.Assert(models.NewPagination(3, 10, 25).HasMore, qt.IsFalse)
}

func TestParseCategory(t *testing.T) {
	c := qt.New(t)
	cat, ok := models.ParseCategory("tEcHnOlOgY")
	c.Assert(ok, qt.IsTrue)
	c.Assert(cat, qt.Equals, models.CategoryTechnology)

	_, ok = models.ParseCategory("gardening")
	c.Assert(ok, qt.IsFalse)
}

func TestValidationError(t *testing.T) {
	c := qt.New(t)
	verr := &models.ValidationError{}
	c.Assert(verr.OrNil(), qt.IsNil)

	verr.Add("email", "email is required")
	verr.Add("email", "ignored")
	verr.Add("age", "too young")
	c.Assert(verr.Error(), qt.Equals, "too young; email is required")

	wrapped := fmt.Errorf("signup: %w", verr.OrNil())
	c.Assert(errors.Is(wrapped, models.ErrValidation), qt.IsTrue)
	c.Assert(errors.Is(wrapped, models.ErrNotFound), qt.IsFalse)
}

func TestPrincipal(t *testing.T) {
	c := qt.New(t)
	c.Assert(models.Principal{}.Anonymous(), qt.IsTrue)
	c.Assert(models.Principal{UserID: 3}.IsUser(), qt.IsTrue)
	c.Assert(models.Principal{AdminID: 1}.IsAdmin(), qt.IsTrue)
	c.Assert(models.Principal{AdminID: 1}.IsUser(), qt.IsFalse)
}
