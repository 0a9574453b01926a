package prometheus

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const DefaultPath = "/metrics"

// Handler exposes a registry in the Prometheus text format.
type Handler struct {
	gatherer prometheus.Gatherer
	path     string
}

func New(gatherer prometheus.Gatherer) *Handler {
	return &Handler{gatherer: gatherer, path: DefaultPath}
}

// At mounts the endpoint on path instead of DefaultPath.
func (h *Handler) At(path string) *Handler {
	if path != "" {
		h.path = path
	}
	return h
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET(h.path, h.Handler())
}

func (h *Handler) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}
