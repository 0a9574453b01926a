package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/auth"
)

type authFixture struct {
	jwt         auth.JWTService
	revocations auth.RevocationStore
	engine      *gin.Engine
}

func newAuthFixture(gate ...model.Role) *authFixture {
	gin.SetMode(gin.TestMode)
	f := &authFixture{
		jwt:         auth.NewJWTService("test-secret", "clinic-api", time.Hour),
		revocations: auth.NewMemoryRevocationStore(),
		engine:      gin.New(),
	}

	handlers := []gin.HandlerFunc{NewAuthMiddleware(f.jwt, f.revocations).Authenticate()}
	if len(gate) > 0 {
		handlers = append(handlers, RequireRole(gate...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		id, err := MustIdentity(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		sc := CurrentScope(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id":    id.UserID,
			"role":       id.Role,
			"profile_id": sc.ProfileID(),
		})
	})
	f.engine.GET("/private", handlers...)
	return f
}

func (f *authFixture) token(t *testing.T, role model.Role, profileID uuid.UUID) string {
	t.Helper()
	tok, err := f.jwt.GenerateAccessToken(&model.User{Base: model.Base{ID: uuid.New()}, Role: role}, profileID)
	require.NoError(t, err)
	return tok
}

func (f *authFixture) get(authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestAuthenticateRejectsBadHeaders(t *testing.T) {
	f := newAuthFixture()
	tok := f.token(t, model.RoleDoctor, uuid.New())

	other := auth.NewJWTService("other-secret", "clinic-api", time.Hour)
	forged, err := other.GenerateAccessToken(&model.User{Base: model.Base{ID: uuid.New()}, Role: model.RoleAdmin}, uuid.Nil)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":      "",
		"wrong scheme": "Basic " + tok,
		"no token":     "Bearer ",
		"bare token":   tok,
		"garbage":      "Bearer not.a.jwt",
		"other secret": "Bearer " + forged,
	} {
		w := f.get(header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
		assert.Contains(t, w.Body.String(), "Unauthenticated.", name)
	}
}

func TestAuthenticateStoresIdentityAndScope(t *testing.T) {
	f := newAuthFixture()
	profile := uuid.New()

	w := f.get("bearer " + f.token(t, model.RoleGuardian, profile))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"role":"guardian"`)
	assert.Contains(t, w.Body.String(), profile.String())
}

func TestAuthenticateRejectsRevokedToken(t *testing.T) {
	f := newAuthFixture()
	tok := f.token(t, model.RolePatient, uuid.New())
	require.Equal(t, http.StatusOK, f.get("Bearer "+tok).Code)

	id, err := f.jwt.ValidateToken(tok)
	require.NoError(t, err)
	require.NoError(t, f.revocations.Revoke(context.Background(), id.TokenID, id.ExpiresAt))

	assert.Equal(t, http.StatusUnauthorized, f.get("Bearer "+tok).Code)
	assert.Equal(t, http.StatusOK, f.get("Bearer "+f.token(t, model.RolePatient, uuid.New())).Code)
}

func TestRequireRole(t *testing.T) {
	f := newAuthFixture(model.RoleAdmin, model.RoleDoctor)

	assert.Equal(t, http.StatusOK, f.get("Bearer "+f.token(t, model.RoleAdmin, uuid.Nil)).Code)
	assert.Equal(t, http.StatusOK, f.get("Bearer "+f.token(t, model.RoleDoctor, uuid.New())).Code)

	w := f.get("Bearer " + f.token(t, model.RoleGuardian, uuid.New()))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "This action is unauthorized.")
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", RequireRole(model.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
