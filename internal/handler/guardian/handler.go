package guardian

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/handler/patient"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/guardian"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

const (
	MsgCreated = "Guardian created successfully"
	MsgUpdated = "Guardian updated successfully"
	MsgDeleted = "Guardian deleted successfully"
)

type Handler struct {
	svc *guardian.Service
}

func NewHandler(svc *guardian.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes gates listing, create and delete to admins. Show, update and
// the patient listing also admit the guardian themself, which the service
// checks.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	self := middleware.RequireRole(model.RoleAdmin, model.RoleGuardian)

	guardians := r.Group("/guardians")
	{
		guardians.GET("", adminOnly, h.List)
		guardians.POST("", adminOnly, h.Create)
		guardians.GET("/:id", self, h.Get)
		guardians.PUT("/:id", self, h.Update)
		guardians.DELETE("/:id", adminOnly, h.Delete)
		guardians.GET("/:id/patients", self, h.Patients)
	}
}

func (h *Handler) List(c *gin.Context) {
	page := handler.PageOf(c)
	rows, total, err := h.svc.List(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.Paginate(c, newGuardianList(rows), page, total)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParamID(c, "guardian")
	if !ok {
		return
	}
	g, err := h.svc.Get(c.Request.Context(), middleware.CurrentScope(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newGuardianResponse(g), "")
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateGuardianRequest
	if !handler.Bind(c, &req) {
		return
	}
	g, err := h.svc.Create(c.Request.Context(), middleware.CurrentScope(c), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, newGuardianResponse(g), MsgCreated)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "guardian")
	if !ok {
		return
	}
	var req model.UpdateGuardianRequest
	if !handler.Bind(c, &req) {
		return
	}
	g, err := h.svc.Update(c.Request.Context(), middleware.CurrentScope(c), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newGuardianResponse(g), MsgUpdated)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParamID(c, "guardian")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentScope(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, MsgDeleted)
}

func (h *Handler) Patients(c *gin.Context) {
	id, ok := handler.ParamID(c, "guardian")
	if !ok {
		return
	}
	page := handler.PageOf(c)
	rows, total, err := h.svc.Patients(c.Request.Context(), middleware.CurrentScope(c), id, page)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.Paginate(c, patient.NewPatientList(rows), page, total)
}
