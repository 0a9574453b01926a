package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/appointment"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

const (
	MsgCreated   = "Appointment created successfully"
	MsgUpdated   = "Appointment updated successfully"
	MsgCancelled = "Appointment cancelled successfully"
)

type Handler struct {
	svc *appointment.Service
}

func NewHandler(svc *appointment.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.List)
		appointments.POST("", h.Create)
		appointments.GET("/:id", h.Get)
		appointments.PUT("/:id", h.Update)
		appointments.DELETE("/:id", h.Cancel)
	}
	r.GET("/appointments-upcoming", h.Upcoming)
}

func (h *Handler) List(c *gin.Context) {
	f := handler.NewFilters(c)
	filters := model.AppointmentFilters{
		PatientID: f.UUID("patient_id"),
		DoctorID:  f.UUID("doctor_id"),
		Range:     f.Range(),
	}
	if raw := f.String("status"); raw != "" {
		status := model.AppointmentStatus(raw)
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
	handler.Paginate(c, NewDetailList(rows), page, total)
}

func (h *Handler) Upcoming(c *gin.Context) {
	rows, err := h.svc.Upcoming(c.Request.Context(), middleware.CurrentScope(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, NewDetailList(rows), "")
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParamID(c, "appointment")
	if !ok {
		return
	}
	a, err := h.svc.Get(c.Request.Context(), middleware.CurrentScope(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newDetailResponse(a), "")
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if !handler.Bind(c, &req) {
		return
	}
	a, err := h.svc.Create(c.Request.Context(), middleware.CurrentScope(c), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, newAppointmentResponse(a), MsgCreated)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "appointment")
	if !ok {
		return
	}
	var req model.UpdateAppointmentRequest
	if !handler.Bind(c, &req) {
		return
	}
	a, err := h.svc.Update(c.Request.Context(), middleware.CurrentScope(c), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newAppointmentResponse(a), MsgUpdated)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := handler.ParamID(c, "appointment")
	if !ok {
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), middleware.CurrentScope(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, MsgCancelled)
}
