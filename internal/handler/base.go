// Package handler holds the request plumbing shared by the per-entity handlers.
package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

// Routes is implemented by every entity handler.
type Routes interface {
	RegisterRoutes(*gin.RouterGroup)
}

// ParamID parses the :id path parameter. A malformed id is reported the same
// way as an unknown one.
func ParamID(c *gin.Context, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.NotFound(resource, err))
		return uuid.Nil, false
	}
	return id, true
}

// Bind decodes and validates the JSON body into req.
func Bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httputil.RespondWithBindError(c, err)
		return false
	}
	return true
}

// PageOf returns the listing window requested by the page query parameter.
func PageOf(c *gin.Context) model.Page {
	return model.Page{Number: httputil.Page(c), Size: httputil.DefaultPageSize}
}

// Paginate writes a page of items.
func Paginate(c *gin.Context, items interface{}, page model.Page, total int) {
	httputil.RespondWithPagination(c, items, page.Number, page.Size, total)
}

// Filters collects query parameter parse failures so a handler can report
// them together.
type Filters struct {
	c      *gin.Context
	fields map[string][]string
}

func NewFilters(c *gin.Context) *Filters {
	return &Filters{c: c, fields: map[string][]string{}}
}

func (f *Filters) fail(name, message string) {
	f.fields[name] = append(f.fields[name], message)
}

// UUID reads an optional id filter.
func (f *Filters) UUID(name string) *uuid.UUID {
	raw := f.c.Query(name)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		f.fail(name, "The "+validator.Humanize(name)+" must be a valid UUID.")
		return nil
	}
	return &id
}

// Bool reads an optional boolean filter. Only "true", "1", "false" and "0"
// are accepted.
func (f *Filters) Bool(name string) *bool {
	var v bool
	switch f.c.Query(name) {
	case "":
		return nil
	case "true", "1":
		v = true
	case "false", "0":
		v = false
	default:
		f.fail(name, "The "+validator.Humanize(name)+" field must be true or false.")
		return nil
	}
	return &v
}

// String reads an optional text filter.
func (f *Filters) String(name string) string {
	return f.c.Query(name)
}

// Range reads the date_from and date_to filters. date_to covers its whole day.
func (f *Filters) Range() model.DateRange {
	var r model.DateRange
	if raw := f.c.Query("date_from"); raw != "" {
		t, err := time.Parse(validator.DateLayout, raw)
		if err != nil {
			f.fail("date_from", "The date from is not a valid date.")
		}
		r.From = t
	}
	if raw := f.c.Query("date_to"); raw != "" {
		t, err := time.Parse(validator.DateLayout, raw)
		if err != nil {
			f.fail("date_to", "The date to is not a valid date.")
		} else {
			r.To = t.AddDate(0, 0, 1)
		}
	}
	return r
}

// Valid responds with the collected failures, if any.
func (f *Filters) Valid() bool {
	if len(f.fields) == 0 {
		return true
	}
	httputil.RespondWithError(f.c, errors.Validation(f.fields))
	return false
}
