package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "budgetly/internal/errors"
	"budgetly/internal/logger"
)

// ErrorHandler logs the last error a handler attached with c.Error. AppErrors
// without an internal cause are expected outcomes and are not logged here.
// If the handler did not write a response, the error is rendered as
// {"error": {"code", "message"}}; anything that is not an AppError becomes a
// generic INTERNAL_ERROR so details only reach the log.
func ErrorHandler() gin.HandlerFunc {
	return errorHandler(logger.Named("http"))
}

func errorHandler(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		fields := append([]interface{}{
			"request_id", RequestID(c),
			"method", c.Request.Method,
			"route", c.FullPath(),
		}, budgetFields(c)...)

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			log.Errorw("unhandled error", append(fields, "error", err.Error())...)
			appErr = apperrors.ErrInternalServer
		} else if appErr.Internal != nil {
			log.Errorw("request failed", append(fields,
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
			)...)
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
	}
}
