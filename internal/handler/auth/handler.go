package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/service/auth"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

const (
	MsgRegistered = "User registered successfully"
	MsgLoggedIn   = "Login successful"
	MsgLoggedOut  = "Logged out successfully"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts the endpoints reachable without a token.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/logout", h.Logout)
	r.GET("/me", h.Me)
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !handler.Bind(c, &req) {
		return
	}
	result, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, newAuthResponse(result), MsgRegistered)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.Bind(c, &req) {
		return
	}
	result, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, newAuthResponse(result), MsgLoggedIn)
}

func (h *Handler) Logout(c *gin.Context) {
	identity, err := middleware.MustIdentity(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if err := h.svc.Logout(c.Request.Context(), identity); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, MsgLoggedOut)
}

func (h *Handler) Me(c *gin.Context) {
	identity, err := middleware.MustIdentity(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	user, profile, err := h.svc.Me(c.Request.Context(), identity.UserID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, meResponse{
		User:    handler.NewUserResponse(user),
		Profile: newProfileResponse(profile),
	}, "")
}
