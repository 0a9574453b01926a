package prescription

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/prescription"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

const (
	MsgCreated = "Prescription created successfully"
	MsgUpdated = "Prescription updated successfully"
	MsgDeleted = "Prescription deleted successfully"
)

type Handler struct {
	svc *prescription.Service
}

func NewHandler(svc *prescription.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	prescribers := middleware.RequireRole(model.RoleAdmin, model.RoleDoctor)

	prescriptions := r.Group("/prescriptions")
	{
		prescriptions.GET("", h.List)
		prescriptions.POST("", prescribers, h.Create)
		prescriptions.GET("/:id", h.Get)
		prescriptions.PUT("/:id", prescribers, h.Update)
		prescriptions.DELETE("/:id", prescribers, h.Delete)
	}
	r.GET("/prescriptions-active", h.Active)
}

func (h *Handler) List(c *gin.Context) {
	f := handler.NewFilters(c)
	filters := model.PrescriptionFilters{
		PatientID: f.UUID("patient_id"),
		DoctorID:  f.UUID("doctor_id"),
		IsActive:  f.Bool("is_active"),
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

// Active lists prescriptions still running today.
func (h *Handler) Active(c *gin.Context) {
	page := handler.PageOf(c)
	rows, total, err := h.svc.Active(c.Request.Context(), middleware.CurrentScope(c), page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.Paginate(c, NewDetailList(rows), page, total)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParamID(c, "prescription")
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), middleware.CurrentScope(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newDetailResponse(p), "")
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreatePrescriptionRequest
	if !handler.Bind(c, &req) {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), middleware.CurrentScope(c), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, newPrescriptionResponse(p), MsgCreated)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "prescription")
	if !ok {
		return
	}
	var req model.UpdatePrescriptionRequest
	if !handler.Bind(c, &req) {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), middleware.CurrentScope(c), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newPrescriptionResponse(p), MsgUpdated)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParamID(c, "prescription")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentScope(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, MsgDeleted)
}
