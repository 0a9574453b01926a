package audit

import (
	"context"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/handler/handlertest"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/repotest"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

func TestListAndExport(t *testing.T) {
	store := repotest.NewStore()
	clinic := repotest.Seed(store)
	svc := audit.NewService(store.Audits(), logger.Nop())

	ctx := audit.WithClient(context.Background(), "10.0.0.7", "test-agent")
	svc.Log(ctx, clinic.Admin.ID, model.AuditActionCreate, model.AuditEntityDoctor, uuid.New(), map[string]string{"specialty": "Pediatrics"})
	svc.Log(ctx, clinic.Admin.ID, model.AuditActionDelete, model.AuditEntityMedication, uuid.New(), nil)

	r := handlertest.As(clinic.AdminIdentity(), NewHandler(svc).RegisterRoutes)

	var rows []logResponse
	page := handlertest.Decode(t, handlertest.Do(t, r, http.MethodGet, "/api/v1/audit-logs?entity_type=doctor", nil)).Items(t, &rows)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "10.0.0.7", rows[0].IPAddress)
	assert.Contains(t, rows[0].Changes, "Pediatrics")

	w := handlertest.Do(t, r, http.MethodGet, "/api/v1/audit-logs/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)

	w = handlertest.Do(t, r, http.MethodGet, "/api/v1/audit-logs?user_id=42", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
