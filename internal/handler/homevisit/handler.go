package homevisit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/homevisit"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

const (
	MsgScheduled = "Home visit scheduled successfully"
	MsgUpdated   = "Home visit updated successfully"
	MsgCancelled = "Home visit cancelled successfully"
)

type Handler struct {
	svc *homevisit.Service
}

func NewHandler(svc *homevisit.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	visits := r.Group("/home-visits")
	{
		visits.GET("", h.List)
		visits.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleDoctor), h.Create)
		visits.GET("/:id", h.Get)
		visits.PUT("/:id", h.Update)
		visits.DELETE("/:id", h.Cancel)
	}
	r.GET("/home-visits-upcoming", h.Upcoming)
}

func (h *Handler) List(c *gin.Context) {
	f := handler.NewFilters(c)
	filters := model.HomeVisitFilters{
		PatientID: f.UUID("patient_id"),
		DoctorID:  f.UUID("doctor_id"),
		Range:     f.Range(),
	}
	if raw := f.String("status"); raw != "" {
		status := model.HomeVisitStatus(raw)
		filters.Status = &status
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

func (h *Handler) Upcoming(c *gin.Context) {
	rows, err := h.svc.Upcoming(c.Request.Context(), middleware.CurrentScope(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newDetailList(rows), "")
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParamID(c, "home visit")
	if !ok {
		return
	}
	v, err := h.svc.Get(c.Request.Context(), middleware.CurrentScope(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newDetailResponse(v), "")
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateHomeVisitRequest
	if !handler.Bind(c, &req) {
		return
	}
	v, err := h.svc.Create(c.Request.Context(), middleware.CurrentScope(c), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, newVisitResponse(v), MsgScheduled)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "home visit")
	if !ok {
		return
	}
	var req model.UpdateHomeVisitRequest
	if !handler.Bind(c, &req) {
		return
	}
	v, err := h.svc.Update(c.Request.Context(), middleware.CurrentScope(c), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newVisitResponse(v), MsgUpdated)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := handler.ParamID(c, "home visit")
	if !ok {
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), middleware.CurrentScope(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, MsgCancelled)
}
