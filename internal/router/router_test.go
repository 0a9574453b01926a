package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/handler/health"
	promHandler "github.com/jwalitptl/clinic-api/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

type stub string

func (s stub) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/"+string(s), func(c *gin.Context) { c.String(http.StatusOK, string(s)) })
}

func (s stub) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/public-"+string(s), func(c *gin.Context) { c.String(http.StatusOK, "public") })
}

func newTestRouter(t *testing.T, config RouterConfig) (*gin.Engine, auth.JWTService) {
	t.Helper()
	reg := prometheus.NewRegistry()
	jwtSvc := auth.NewJWTService("test-secret", "clinic-api", time.Hour)
	r := NewRouter(
		middleware.NewAuthMiddleware(jwtSvc, auth.NewMemoryRevocationStore()),
		Handlers{
			Auth:         stub("auth"),
			Appointment:  stub("appointments"),
			HomeVisit:    stub("home-visits"),
			Patient:      stub("patients"),
			Doctor:       stub("doctors"),
			Guardian:     stub("guardians"),
			Medication:   stub("medications"),
			Prescription: stub("prescriptions"),
			Emergency:    stub("emergencies"),
			Audit:        stub("audit-logs"),
			Health:       health.NewHandler(nil),
			Metrics:      promHandler.New(reg),
		},
		metrics.NewMetrics(reg, "clinic"),
		config,
	)
	r.Setup()
	return r.Engine(), jwtSvc
}

func token(t *testing.T, jwtSvc auth.JWTService, role model.Role) string {
	t.Helper()
	tok, err := jwtSvc.GenerateAccessToken(&model.User{Base: model.Base{ID: uuid.New()}, Role: role}, uuid.New())
	require.NoError(t, err)
	return "Bearer " + tok
}

func get(engine *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestOpenRoutes(t *testing.T) {
	engine, _ := newTestRouter(t, RouterConfig{Mode: gin.TestMode})

	assert.Equal(t, http.StatusOK, get(engine, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, get(engine, "/health/ready", "").Code)
	assert.Equal(t, http.StatusOK, get(engine, "/metrics", "").Code)

	w := get(engine, "/api/v1/public-auth", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.0", w.Header().Get("X-API-Version"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	engine, jwtSvc := newTestRouter(t, RouterConfig{Mode: gin.TestMode})

	for _, path := range []string{"/api/v1/appointments", "/api/v1/patients", "/api/v1/emergencies", "/api/v1/auth"} {
		assert.Equal(t, http.StatusUnauthorized, get(engine, path, "").Code, path)
		assert.Equal(t, http.StatusOK, get(engine, path, token(t, jwtSvc, model.RolePatient)).Code, path)
	}
	assert.Equal(t, http.StatusUnauthorized, get(engine, "/api/v1/doctors", "Bearer garbage").Code)
}

func TestAuditLogsAreAdminOnly(t *testing.T) {
	engine, jwtSvc := newTestRouter(t, RouterConfig{Mode: gin.TestMode})

	assert.Equal(t, http.StatusForbidden, get(engine, "/api/v1/audit-logs", token(t, jwtSvc, model.RoleDoctor)).Code)
	assert.Equal(t, http.StatusOK, get(engine, "/api/v1/audit-logs", token(t, jwtSvc, model.RoleAdmin)).Code)
}

func TestRateLimitApplies(t *testing.T) {
	engine, _ := newTestRouter(t, RouterConfig{
		Mode:             gin.TestMode,
		RateLimitEnabled: true,
		RateLimit:        1,
		RateBurst:        1,
	})

	assert.Equal(t, http.StatusOK, get(engine, "/health/live", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(engine, "/health/live", "").Code)
}
