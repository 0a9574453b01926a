package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/clinic-api/internal/handler/handlertest"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/repotest"
	"github.com/jwalitptl/clinic-api/internal/service/account"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/internal/service/auth"
	jwtauth "github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

type fixture struct {
	h           *Handler
	jwt         jwtauth.JWTService
	revocations jwtauth.RevocationStore
	public      *gin.Engine
}

func setup() *fixture {
	store := repotest.NewStore()
	repotest.Seed(store)
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	jwtSvc := jwtauth.NewJWTService("test-secret", "clinic-api", time.Hour)
	revocations := jwtauth.NewMemoryRevocationStore()
	accounts := account.NewService(store.Users(), store.Doctors(), store.Guardians(), hasher)

	h := NewHandler(auth.NewService(store.Users(), accounts, jwtSvc, revocations, hasher, audit.Nop{}))
	return &fixture{
		h:           h,
		jwt:         jwtSvc,
		revocations: revocations,
		public:      handlertest.Engine(nil, h.RegisterPublicRoutes),
	}
}

var doctorSignup = gin.H{
	"name":                  "Dr. Dias",
	"email":                 "dias@example.com",
	"password":              "password123",
	"password_confirmation": "password123",
	"role_name":             "doctor",
	"phone":                 "555-0199",
	"birth_date":            "1979-11-30",
	"document_number":       "D-77",
	"specialty":             "Neurology",
	"license_number":        "LIC-77",
}

func TestRegisterLoginMeLogout(t *testing.T) {
	f := setup()

	w := handlertest.Do(t, f.public, http.MethodPost, "/api/v1/register", doctorSignup)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	env := handlertest.Decode(t, w)
	assert.Equal(t, MsgRegistered, env.Message)
	var registered authResponse
	env.Into(t, &registered)
	assert.NotEmpty(t, registered.Token)
	require.NotNil(t, registered.Profile)
	assert.Equal(t, "Neurology", registered.Profile.Specialty)

	w = handlertest.Do(t, f.public, http.MethodPost, "/api/v1/login", gin.H{"email": "dias@example.com", "password": "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, auth.MsgInvalidCredentials, handlertest.Decode(t, w).Message)

	w = handlertest.Do(t, f.public, http.MethodPost, "/api/v1/login", gin.H{"email": "dias@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login authResponse
	handlertest.Decode(t, w).Into(t, &login)

	identity, err := f.jwt.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, identity.Role)

	private := handlertest.Engine(identity, f.h.RegisterRoutes)
	w = handlertest.Do(t, private, http.MethodGet, "/api/v1/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me meResponse
	handlertest.Decode(t, w).Into(t, &me)
	assert.Equal(t, "dias@example.com", me.User.Email)
	assert.Equal(t, registered.Profile.ID, me.Profile.ID)

	w = handlertest.Do(t, private, http.MethodPost, "/api/v1/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MsgLoggedOut, handlertest.Decode(t, w).Message)

	revoked, err := f.revocations.IsRevoked(context.Background(), identity.TokenID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRegisterValidation(t *testing.T) {
	f := setup()

	w := handlertest.Do(t, f.public, http.MethodPost, "/api/v1/register", gin.H{
		"name":                  "Nobody",
		"email":                 "nobody@example.com",
		"password":              "password123",
		"password_confirmation": "password321",
		"role_name":             "doctor",
		"phone":                 "555",
		"birth_date":            "1990-01-01",
		"document_number":       "X-1",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := handlertest.Decode(t, w).Errors
	assert.Contains(t, errs, "password_confirmation")
	assert.Contains(t, errs, "specialty")
	assert.Contains(t, errs, "license_number")

	w = handlertest.Do(t, handlertest.Engine(nil, f.h.RegisterRoutes), http.MethodGet, "/api/v1/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
