package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusError struct {
	code int
	msg  string
	err  error
}

func (e *statusError) Error() string       { return e.msg + ": " + e.err.Error() }
func (e *statusError) StatusCode() int     { return e.code }
func (e *statusError) UserMessage() string { return e.msg }
func (e *statusError) GetContext() string  { return "test" }
func (e *statusError) Unwrap() error       { return e.err }

func setupRouter(middlewares ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middlewares...)
	return router
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGinRequestIDMiddleware(t *testing.T) {
	router := setupRouter(GinRequestIDMiddleware())
	router.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestIDFromGin(c)+"|"+GetRequestID(c.Request.Context()))
	})

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))

		id := w.Header().Get(RequestIDHeader)
		require.NotEmpty(t, id)
		assert.Equal(t, id+"|"+id, w.Body.String())
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "req-42|req-42", w.Body.String())
	})
}

func TestGetRequestID_Empty(t *testing.T) {
	assert.Empty(t, GetRequestIDFromGin(nil))
	assert.Empty(t, GetRequestID(nil))
}

func TestHandleHTTPError(t *testing.T) {
	router := setupRouter(GinRequestIDMiddleware())
	router.GET("/typed", func(c *gin.Context) {
		HandleHTTPError(c, &statusError{code: http.StatusNotFound, msg: "batch not found", err: errors.New("no rows")})
	})
	router.GET("/plain", func(c *gin.Context) {
		HandleHTTPError(c, errors.New("database is locked"))
	})

	t.Run("typed error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/typed", nil)
		req.Header.Set(RequestIDHeader, "req-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "batch not found", resp.Error)
		assert.Equal(t, "req-1", resp.RequestID)
		assert.NotEmpty(t, resp.Timestamp)
	})

	t.Run("plain error hides details", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plain", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "locked")
	})
}

func TestWriteJSONError(t *testing.T) {
	router := setupRouter()
	router.GET("/bad", func(c *gin.Context) {
		WriteJSONError(c, http.StatusBadRequest, "text is required")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bad", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "text is required", decodeError(t, w).Error)
}

func TestGinCORSMiddleware(t *testing.T) {
	router := setupRouter(GinCORSMiddleware())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
	})

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/test", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestGinRecoveryMiddleware(t *testing.T) {
	router := setupRouter(GinRequestIDMiddleware(), GinRecoveryMiddleware())
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Internal server error", resp.Error)
	assert.NotEmpty(t, resp.RequestID)
}

func TestGinLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := setupRouter(GinRequestIDMiddleware(), GinLoggerMiddleware(logger))
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/missing?x=1", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	router.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "http", entry["component"])
	assert.Equal(t, "/missing?x=1", entry["path"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
	assert.Equal(t, "req-7", entry["request_id"])
}

func TestGinGzipMiddleware(t *testing.T) {
	router := setupRouter(GinGzipMiddleware())
	router.GET("/data", func(c *gin.Context) {
		c.String(http.StatusOK, string(bytes.Repeat([]byte("acme "), 200)))
	})

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}
