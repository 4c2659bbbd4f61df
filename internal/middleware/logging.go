package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "budgetly/internal/errors"
	"budgetly/internal/logger"
	"budgetly/internal/uuid"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
)

// RequestID returns the id assigned to the request by RequestLogging, or ""
// when the middleware is not installed.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogging returns a Gin middleware that tags each request with an id
// and logs one line when it completes. A valid X-Request-ID from the caller
// is reused; otherwise a UUIDv7 is generated. Requests under /budgets/:id
// carry the budget and, when filtered, the cycle they touched.
func RequestLogging() gin.HandlerFunc {
	return requestLogging(logger.Named("http"))
}

func requestLogging(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if !uuid.IsValid(requestID) {
			requestID = uuid.New()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		fields = append(fields, budgetFields(c)...)
		if code := errorCode(c); code != "" {
			fields = append(fields, "error_code", code)
		}

		switch {
		case status >= 500:
			log.Errorw("request", fields...)
		case status >= 400:
			log.Warnw("request", fields...)
		default:
			log.Infow("request", fields...)
		}
	}
}

// budgetFields returns the user and budget a request acted on.
func budgetFields(c *gin.Context) []interface{} {
	var fields []interface{}
	if userID := c.GetString("userID"); userID != "" {
		fields = append(fields, "user_id", userID)
	}
	if !strings.Contains(c.FullPath(), "/budgets/:id") {
		return fields
	}
	fields = append(fields, "budget_id", c.Param("id"))
	if cycleID := c.Query("cycle_id"); cycleID != "" {
		fields = append(fields, "cycle_id", cycleID)
	}
	return fields
}

func errorCode(c *gin.Context) string {
	if len(c.Errors) == 0 {
		return ""
	}
	var appErr *apperrors.AppError
	if errors.As(c.Errors.Last().Err, &appErr) {
		return appErr.Code
	}
	return apperrors.ErrInternalServer.Code
}
