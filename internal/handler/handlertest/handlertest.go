// Package handlertest drives gin handlers through httptest as a given caller.
package handlertest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/scope"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validator.Register(); err != nil {
		panic(err)
	}
}

// Engine mounts register under /api/v1 with id as the authenticated caller.
// A nil id leaves requests anonymous.
func Engine(id *model.Identity, register func(*gin.RouterGroup)) *gin.Engine {
	r := gin.New()
	api := r.Group("/api/v1")
	if id != nil {
		api.Use(func(c *gin.Context) {
			c.Set(middleware.ContextIdentity, id)
			c.Set(middleware.ContextScope, scope.New(*id))
			c.Next()
		})
	}
	register(api)
	return r
}

// As is Engine for a value identity.
func As(id model.Identity, register func(*gin.RouterGroup)) *gin.Engine {
	return Engine(&id, register)
}

// Do sends body as JSON, when given, and records the response.
func Do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Envelope is the decoded response body.
type Envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// Page is the data of a paginated response.
type Page struct {
	Items      json.RawMessage     `json:"items"`
	Pagination httputil.Pagination `json:"pagination"`
}

func Decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// Data decodes the envelope's data into v.
func (e Envelope) Into(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, v))
}

// Items decodes a paginated envelope's items into v and returns the
// pagination block.
func (e Envelope) Items(t *testing.T, v interface{}) httputil.Pagination {
	t.Helper()
	var p Page
	e.Into(t, &p)
	require.NoError(t, json.Unmarshal(p.Items, v))
	return p.Pagination
}
