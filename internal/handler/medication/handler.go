package medication

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/medication"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

const (
	MsgCreated = "Medication created successfully"
	MsgUpdated = "Medication updated successfully"
	MsgDeleted = "Medication deleted successfully"
)

type Handler struct {
	svc *medication.Service
}

func NewHandler(svc *medication.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	medications := r.Group("/medications")
	{
		medications.GET("", h.List)
		medications.POST("", adminOnly, h.Create)
		medications.GET("/:id", h.Get)
		medications.PUT("/:id", adminOnly, h.Update)
		medications.DELETE("/:id", adminOnly, h.Delete)
	}
	r.GET("/medications-active", middleware.CacheFor(300), h.Active)
}

func (h *Handler) List(c *gin.Context) {
	f := handler.NewFilters(c)
	filters := model.MedicationFilters{
		IsActive:             f.Bool("is_active"),
		RequiresPrescription: f.Bool("requires_prescription"),
		Search:               f.String("search"),
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
	handler.Paginate(c, newMedicationList(rows), page, total)
}

func (h *Handler) Active(c *gin.Context) {
	rows, err := h.svc.Active(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newActiveList(rows), "")
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParamID(c, "medication")
	if !ok {
		return
	}
	m, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newMedicationResponse(m), "")
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateMedicationRequest
	if !handler.Bind(c, &req) {
		return
	}
	m, err := h.svc.Create(c.Request.Context(), middleware.CurrentScope(c), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, newMedicationResponse(m), MsgCreated)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "medication")
	if !ok {
		return
	}
	var req model.UpdateMedicationRequest
	if !handler.Bind(c, &req) {
		return
	}
	m, err := h.svc.Update(c.Request.Context(), middleware.CurrentScope(c), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newMedicationResponse(m), MsgUpdated)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParamID(c, "medication")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentScope(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, MsgDeleted)
}
