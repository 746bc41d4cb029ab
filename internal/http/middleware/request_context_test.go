package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/lexgraph-backend/internal/platform/ctxutil"
)

func TestAttachRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachRequestContext())

	var gotActor string
	var gotTrace *ctxutil.TraceData
	r.GET("/ping", func(c *gin.Context) {
		gotActor = ctxutil.Actor(c.Request.Context())
		gotTrace = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerActor, "  analyst@ngo.example  ")
	req.Header.Set(headerRequestID, "req-1")
	req.Header.Set(headerTraceID, "trace-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "analyst@ngo.example", gotActor)
	require.NotNil(t, gotTrace)
	assert.Equal(t, "req-1", gotTrace.RequestID)
	assert.Equal(t, "trace-1", gotTrace.TraceID)
	assert.Equal(t, "req-1", rec.Header().Get(headerRequestID))
	assert.Equal(t, "trace-1", rec.Header().Get(headerTraceID))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerActor, strings.Repeat("a", 300))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Len(t, gotActor, maxActorLength)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
	assert.NotEmpty(t, rec.Header().Get(headerTraceID))
}

func TestAttachRequestContextWithoutActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachRequestContext())
	var gotActor = "unset"
	r.GET("/ping", func(c *gin.Context) {
		gotActor = ctxutil.Actor(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Empty(t, gotActor)
}
