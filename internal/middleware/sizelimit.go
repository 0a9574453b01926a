package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

// DefaultMaxBodySize is 1MB; no endpoint accepts uploads.
const DefaultMaxBodySize int64 = 1 << 20

// SizeLimit rejects bodies over maxBytes and caps reads for chunked requests.
func SizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			httputil.RespondWithError(c, &apperrors.AppError{
				Code:    apperrors.ErrBadRequest,
				Message: "Request body too large",
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
