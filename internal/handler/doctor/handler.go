package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/handler/appointment"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/doctor"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

const (
	MsgCreated = "Doctor created successfully"
	MsgUpdated = "Doctor updated successfully"
	MsgDeleted = "Doctor deleted successfully"
)

type Handler struct {
	svc *doctor.Service
}

func NewHandler(svc *doctor.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.List)
		doctors.POST("", adminOnly, h.Create)
		doctors.GET("/:id", h.Get)
		doctors.PUT("/:id", adminOnly, h.Update)
		doctors.DELETE("/:id", adminOnly, h.Delete)
		doctors.GET("/:id/appointments", h.Appointments)
	}
	r.GET("/doctors-available", middleware.CacheFor(60), h.Available)
}

func (h *Handler) List(c *gin.Context) {
	f := handler.NewFilters(c)
	filters := model.DoctorFilters{
		IsAvailable: f.Bool("is_available"),
		Specialty:   f.String("specialty"),
		Search:      f.String("search"),
	}
	if !f.Valid() {
		return
	}

	page := handler.PageOf(c)
	rows, total, err := h.svc.List(c.Request.Context(), filters, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.Paginate(c, newDoctorList(rows), page, total)
}

func (h *Handler) Available(c *gin.Context) {
	rows, err := h.svc.Available(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newAvailableList(rows), "")
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParamID(c, "doctor")
	if !ok {
		return
	}
	d, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newDoctorResponse(d), "")
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateDoctorRequest
	if !handler.Bind(c, &req) {
		return
	}
	d, err := h.svc.Create(c.Request.Context(), middleware.CurrentScope(c), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, newDoctorResponse(d), MsgCreated)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "doctor")
	if !ok {
		return
	}
	var req model.UpdateDoctorRequest
	if !handler.Bind(c, &req) {
		return
	}
	d, err := h.svc.Update(c.Request.Context(), middleware.CurrentScope(c), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newDoctorResponse(d), MsgUpdated)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParamID(c, "doctor")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentScope(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, MsgDeleted)
}

// Appointments lists the doctor's appointments visible to the caller.
func (h *Handler) Appointments(c *gin.Context) {
	id, ok := handler.ParamID(c, "doctor")
	if !ok {
		return
	}
	f := handler.NewFilters(c)
	filters := model.AppointmentFilters{Range: f.Range()}
	if raw := f.String("status"); raw != "" {
		status := model.AppointmentStatus(raw)
		filters.Status = &status
	}
	if !f.Valid() {
		return
	}

	page := handler.PageOf(c)
	rows, total, err := h.svc.Appointments(c.Request.Context(), middleware.CurrentScope(c), id, filters, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.Paginate(c, appointment.NewDetailList(rows), page, total)
}
