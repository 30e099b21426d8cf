package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"unitex/internal/service"
)

var kindStatus = map[service.Kind]int{
	service.KindValidation:   http.StatusBadRequest,
	service.KindConflict:     http.StatusBadRequest,
	service.KindNotFound:     http.StatusNotFound,
	service.KindForbidden:    http.StatusForbidden,
	service.KindUnauthorized: http.StatusUnauthorized,
}

// writeError responde con el status de la clase del error. Los errores inesperados
// se registran y se devuelven con un mensaje generico.
func writeError(c *gin.Context, logger *zap.Logger, op string, err error) {
	kind := service.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		logger.Error(op+" failed",
			zap.Error(err),
			zap.String("request_id", requestID(c)),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "internal error",
			"kind":  service.KindUnexpected,
		})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}

func badRequest(c *gin.Context, logger *zap.Logger, op string, err error) {
	logger.Warn("invalid "+op+" request", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "kind": service.KindValidation})
}
