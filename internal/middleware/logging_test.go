package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "budgetly/internal/errors"
	"budgetly/internal/uuid"
)

const (
	logTestUserID   = "0190f5c4-0000-7000-8000-0000000000a1"
	logTestBudgetID = "0190f5c4-0000-7000-8000-0000000000b1"
)

// setupLoggedRouter wires the logging and error middleware to an observed
// logger the same way NewRouter does, with an authenticated user.
func setupLoggedRouter(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core).Sugar()

	r := gin.New()
	r.Use(requestLogging(log))
	r.Use(errorHandler(log))
	r.Use(func(c *gin.Context) {
		c.Set("userID", logTestUserID)
		c.Next()
	})
	return r, logs
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func requestEntry(t *testing.T, logs *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request log line, got %d", len(entries))
	}
	return entries[0]
}

func TestRequestLogging_BudgetContext(t *testing.T) {
	r, logs := setupLoggedRouter(t)
	r.GET("/api/v1/budgets/:id/transactions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": []string{}})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/budgets/"+logTestBudgetID+"/transactions?cycle_id=c-1", nil)
	w := serve(r, req)

	entry := requestEntry(t, logs)
	if entry.Level != zapcore.InfoLevel {
		t.Errorf("expected info level, got %s", entry.Level)
	}
	fields := entry.ContextMap()

	requestID := w.Header().Get("X-Request-ID")
	if !uuid.IsValid(requestID) {
		t.Fatalf("expected a generated request id, got %q", requestID)
	}
	want := map[string]interface{}{
		"request_id": requestID,
		"route":      "/api/v1/budgets/:id/transactions",
		"user_id":    logTestUserID,
		"budget_id":  logTestBudgetID,
		"cycle_id":   "c-1",
		"status":     int64(http.StatusOK),
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("field %s = %v, want %v", k, fields[k], v)
		}
	}
	if _, ok := fields["error_code"]; ok {
		t.Error("successful request should not carry an error code")
	}
}

func TestRequestLogging_OutsideBudgets(t *testing.T) {
	r, logs := setupLoggedRouter(t)
	r.GET("/api/v1/categories/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/categories/abc", nil))

	fields := requestEntry(t, logs).ContextMap()
	if _, ok := fields["budget_id"]; ok {
		t.Errorf("category route should not log a budget id, got %v", fields["budget_id"])
	}
	if fields["user_id"] != logTestUserID {
		t.Errorf("expected user id, got %v", fields["user_id"])
	}
}

func TestRequestLogging_RequestIDHeader(t *testing.T) {
	incoming := uuid.New()

	tests := []struct {
		name   string
		header string
		reused bool
	}{
		{"valid_id_reused", incoming, true},
		{"garbage_replaced", "not-a-uuid", false},
		{"missing_generated", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, logs := setupLoggedRouter(t)
			r.GET("/ping", func(c *gin.Context) {
				c.String(http.StatusOK, RequestID(c))
			})

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-ID", tt.header)
			}
			w := serve(r, req)

			got := w.Header().Get("X-Request-ID")
			if tt.reused && got != incoming {
				t.Errorf("expected %s to be reused, got %s", incoming, got)
			}
			if !tt.reused && (got == tt.header || !uuid.IsValid(got)) {
				t.Errorf("expected a fresh id, got %q", got)
			}
			if w.Body.String() != got {
				t.Errorf("RequestID in handler = %q, header = %q", w.Body.String(), got)
			}
			if requestEntry(t, logs).ContextMap()["request_id"] != got {
				t.Error("logged request id differs from the header")
			}
		})
	}
}

func TestRequestLogging_LevelByStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"ok", http.StatusOK, zapcore.InfoLevel},
		{"client_error", http.StatusNotFound, zapcore.WarnLevel},
		{"server_error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, logs := setupLoggedRouter(t)
			r.GET("/status", func(c *gin.Context) {
				c.JSON(tt.status, gin.H{})
			})

			serve(r, httptest.NewRequest(http.MethodGet, "/status", nil))

			if got := requestEntry(t, logs).Level; got != tt.level {
				t.Errorf("expected %s, got %s", tt.level, got)
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	t.Run("app_error_rendered", func(t *testing.T) {
		r, logs := setupLoggedRouter(t)
		r.GET("/api/v1/budgets/:id", func(c *gin.Context) {
			_ = c.Error(apperrors.ErrBudgetNotFound)
		})

		w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/budgets/"+logTestBudgetID, nil))

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
		if body := w.Body.String(); body != `{"error":{"code":"BUDGET_NOT_FOUND","message":"Budget not found"}}` {
			t.Errorf("unexpected body %s", body)
		}
		if n := logs.FilterMessage("request failed").Len(); n != 0 {
			t.Errorf("expected outcome should not be logged as a failure, got %d lines", n)
		}
		fields := requestEntry(t, logs).ContextMap()
		if fields["error_code"] != "BUDGET_NOT_FOUND" {
			t.Errorf("expected error_code on the request line, got %v", fields["error_code"])
		}
	})

	t.Run("unknown_error_hidden", func(t *testing.T) {
		r, logs := setupLoggedRouter(t)
		r.POST("/api/v1/budgets/:id/transactions", func(c *gin.Context) {
			_ = c.Error(errors.New("disk on fire"))
		})

		w := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/budgets/"+logTestBudgetID+"/transactions", nil))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
		if body := w.Body.String(); body != `{"error":{"code":"INTERNAL_ERROR","message":"An internal error occurred"}}` {
			t.Errorf("unexpected body %s", body)
		}

		entries := logs.FilterMessage("unhandled error").All()
		if len(entries) != 1 {
			t.Fatalf("expected one unhandled error line, got %d", len(entries))
		}
		fields := entries[0].ContextMap()
		if fields["error"] != "disk on fire" || fields["budget_id"] != logTestBudgetID {
			t.Errorf("unexpected fields %v", fields)
		}
		if fields["request_id"] != w.Header().Get("X-Request-ID") {
			t.Errorf("error line should carry the request id, got %v", fields["request_id"])
		}
	})

	t.Run("written_response_kept", func(t *testing.T) {
		r, logs := setupLoggedRouter(t)
		r.GET("/api/v1/budgets/:id/summary", func(c *gin.Context) {
			_ = c.Error(apperrors.Wrap(apperrors.ErrInternalServer, errors.New("db down")))
			c.JSON(http.StatusServiceUnavailable, gin.H{"retry": true})
		})

		w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/budgets/"+logTestBudgetID+"/summary", nil))

		if w.Code != http.StatusServiceUnavailable || w.Body.String() != `{"retry":true}` {
			t.Errorf("handler response should be untouched, got %d %s", w.Code, w.Body.String())
		}
		entries := logs.FilterMessage("request failed").All()
		if len(entries) != 1 {
			t.Fatalf("expected one failure line, got %d", len(entries))
		}
		if got := entries[0].ContextMap()["internal"]; got != "db down" {
			t.Errorf("expected internal cause to be logged, got %v", got)
		}
	})
}
