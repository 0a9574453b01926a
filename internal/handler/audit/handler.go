package audit

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

// exportLimit caps a single CSV export.
const exportLimit = 10000

type logResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id"`
	Changes    string    `json:"changes,omitempty"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
}

type Handler struct {
	svc *audit.Service
}

func NewHandler(svc *audit.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes expects r to be restricted to admins already.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	logs := r.Group("/audit-logs")
	{
		logs.GET("", h.List)
		logs.GET("/export", h.Export)
	}
}

func filtersOf(c *gin.Context) (model.AuditFilters, bool) {
	f := handler.NewFilters(c)
	filters := model.AuditFilters{
		UserID:     f.UUID("user_id"),
		EntityType: f.String("entity_type"),
		Action:     f.String("action"),
		Range:      f.Range(),
	}
	return filters, f.Valid()
}

func (h *Handler) List(c *gin.Context) {
	filters, ok := filtersOf(c)
	if !ok {
		return
	}

	page := handler.PageOf(c)
	logs, total, err := h.svc.List(c.Request.Context(), filters, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	out := make([]logResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, logResponse{
			ID:         l.ID,
			UserID:     l.UserID,
			Action:     l.Action,
			EntityType: l.EntityType,
			EntityID:   l.EntityID,
			Changes:    string(l.Changes),
			IPAddress:  l.IPAddress,
			UserAgent:  l.UserAgent,
			CreatedAt:  l.CreatedAt,
		})
	}
	handler.Paginate(c, out, page, total)
}

// Export streams the filtered trail as CSV.
func (h *Handler) Export(c *gin.Context) {
	filters, ok := filtersOf(c)
	if !ok {
		return
	}

	logs, _, err := h.svc.List(c.Request.Context(), filters, model.Page{Number: 1, Size: exportLimit})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("audit_logs_%s.csv", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"ID", "User ID", "Action", "Entity Type", "Entity ID", "IP Address", "Created At"})
	for _, l := range logs {
		_ = w.Write([]string{
			l.ID.String(),
			l.UserID.String(),
			l.Action,
			l.EntityType,
			l.EntityID.String(),
			l.IPAddress,
			l.CreatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
}
