package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/patient"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

const (
	MsgCreated = "Patient created successfully"
	MsgUpdated = "Patient updated successfully"
	MsgDeleted = "Patient deleted successfully"
)

type Handler struct {
	svc *patient.Service
}

func NewHandler(svc *patient.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleDoctor)

	patients := r.Group("/patients")
	{
		patients.GET("", h.List)
		patients.POST("", staff, h.Create)
		patients.GET("/:id", h.Get)
		patients.PUT("/:id", staff, h.Update)
		patients.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.Delete)
		patients.GET("/:id/medical-history", h.MedicalHistory)
	}
}

func (h *Handler) List(c *gin.Context) {
	f := handler.NewFilters(c)
	filters := model.PatientFilters{
		DoctorID:   f.UUID("doctor_id"),
		GuardianID: f.UUID("guardian_id"),
		Search:     f.String("search"),
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
	handler.Paginate(c, NewPatientList(rows), page, total)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParamID(c, "patient")
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), middleware.CurrentScope(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, NewPatientResponse(p), "")
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreatePatientRequest
	if !handler.Bind(c, &req) {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), middleware.CurrentScope(c), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, NewPatientResponse(p), MsgCreated)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "patient")
	if !ok {
		return
	}
	var req model.UpdatePatientRequest
	if !handler.Bind(c, &req) {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), middleware.CurrentScope(c), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, NewPatientResponse(p), MsgUpdated)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParamID(c, "patient")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentScope(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, MsgDeleted)
}

func (h *Handler) MedicalHistory(c *gin.Context) {
	id, ok := handler.ParamID(c, "patient")
	if !ok {
		return
	}
	history, err := h.svc.MedicalHistory(c.Request.Context(), middleware.CurrentScope(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newMedicalHistoryResponse(history), "")
}
