package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/scope"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

const (
	ContextIdentity = "identity"
	ContextScope    = "scope"
)

type AuthMiddleware struct {
	jwt         auth.JWTService
	revocations auth.RevocationStore
}

func NewAuthMiddleware(jwt auth.JWTService, revocations auth.RevocationStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwt:         jwt,
		revocations: revocations,
	}
}

// Authenticate verifies the bearer token and stores the caller's identity and
// visibility scope in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized("Unauthenticated.", nil))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized("Unauthenticated.", nil))
			return
		}

		identity, err := m.jwt.ValidateToken(parts[1])
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized("Unauthenticated.", err))
			return
		}

		revoked, err := m.revocations.IsRevoked(c.Request.Context(), identity.TokenID)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		if revoked {
			httputil.RespondWithError(c, apperrors.Unauthorized("Unauthenticated.", auth.ErrRevokedToken))
			return
		}

		c.Set(ContextIdentity, identity)
		c.Set(ContextScope, scope.New(*identity))
		c.Next()
	}
}

// RequireRole rejects callers whose role is not listed.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			httputil.RespondWithError(c, apperrors.Unauthorized("Unauthenticated.", nil))
			return
		}
		for _, r := range roles {
			if identity.Role == r {
				c.Next()
				return
			}
		}
		httputil.RespondWithError(c, apperrors.Forbidden(apperrors.MsgForbidden))
	}
}

// CurrentIdentity returns the authenticated caller.
func CurrentIdentity(c *gin.Context) (*model.Identity, bool) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*model.Identity)
	return identity, ok
}

// CurrentScope returns the caller's visibility scope. Without an identity the
// scope sees nothing.
func CurrentScope(c *gin.Context) scope.Scope {
	if v, ok := c.Get(ContextScope); ok {
		if sc, ok := v.(scope.Scope); ok {
			return sc
		}
	}
	return scope.New(model.Identity{})
}

// MustIdentity is CurrentIdentity for routes behind Authenticate.
func MustIdentity(c *gin.Context) (*model.Identity, error) {
	identity, ok := CurrentIdentity(c)
	if !ok {
		return nil, apperrors.Unauthorized("Unauthenticated.", errors.New("no identity in context"))
	}
	return identity, nil
}
