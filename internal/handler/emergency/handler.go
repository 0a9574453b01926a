package emergency

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/emergency"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

const (
	MsgReported     = "Emergency reported successfully. Doctor has been notified."
	MsgUpdated      = "Emergency updated successfully"
	MsgDeleted      = "Emergency deleted successfully"
	MsgAcknowledged = "Emergency acknowledged"
)

type Handler struct {
	svc *emergency.Service
}

func NewHandler(svc *emergency.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes leaves the reporter and acknowledger role checks to the
// service so callers get the specific refusal message.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	emergencies := r.Group("/emergencies")
	{
		emergencies.GET("", h.List)
		emergencies.POST("", h.Report)
		emergencies.GET("/:id", h.Get)
		emergencies.PUT("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleDoctor), h.Update)
		emergencies.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.Delete)
		emergencies.POST("/:id/acknowledge", h.Acknowledge)
	}
	r.GET("/emergencies-active", h.Active)
}

func (h *Handler) List(c *gin.Context) {
	f := handler.NewFilters(c)
	filters := model.EmergencyFilters{PatientID: f.UUID("patient_id")}
	if raw := f.String("status"); raw != "" {
		status := model.EmergencyStatus(raw)
		filters.Status = &status
	}
	if raw := f.String("priority"); raw != "" {
		priority := model.EmergencyPriority(raw)
		filters.Priority = &priority
	}
	if !f.Valid() {
		return
	}

	page := handler.PageOf(c)
	rows, total, err := h.svc.List(c.Request.Context(), middleware.CurrentScope(c), filters, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.Paginate(c, newDetailList(rows), page, total)
}

func (h *Handler) Active(c *gin.Context) {
	page := handler.PageOf(c)
	rows, total, err := h.svc.Active(c.Request.Context(), middleware.CurrentScope(c), page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.Paginate(c, newDetailList(rows), page, total)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParamID(c, "emergency")
	if !ok {
		return
	}
	e, err := h.svc.Get(c.Request.Context(), middleware.CurrentScope(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newDetailResponse(e), "")
}

func (h *Handler) Report(c *gin.Context) {
	var req model.CreateEmergencyRequest
	if !handler.Bind(c, &req) {
		return
	}
	e, err := h.svc.Report(c.Request.Context(), middleware.CurrentScope(c), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, newEmergencyResponse(e), MsgReported)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "emergency")
	if !ok {
		return
	}
	var req model.UpdateEmergencyRequest
	if !handler.Bind(c, &req) {
		return
	}
	e, err := h.svc.Update(c.Request.Context(), middleware.CurrentScope(c), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newEmergencyResponse(e), MsgUpdated)
}

func (h *Handler) Acknowledge(c *gin.Context) {
	id, ok := handler.ParamID(c, "emergency")
	if !ok {
		return
	}
	e, err := h.svc.Acknowledge(c.Request.Context(), middleware.CurrentScope(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newEmergencyResponse(e), MsgAcknowledged)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParamID(c, "emergency")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentScope(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, MsgDeleted)
}
