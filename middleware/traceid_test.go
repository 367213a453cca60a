package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hearthguild/server/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTraceRouter echoes the gin-level and context-level trace IDs.
func newTraceRouter() *gin.Engine {
	r := gin.New()
	r.Use(TraceID())
	r.GET("/trace", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"gin": GetTraceID(c),
			"ctx": audit.TraceIDFrom(c.Request.Context()),
		})
	})
	return r
}

func traceOf(t *testing.T, r *gin.Engine, header string) (string, string, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/trace", nil)
	if header != "" {
		req.Header.Set(TraceIDHeader, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct{ Gin, Ctx string }
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Gin, body.Ctx, w
}

func TestTraceID_GeneratedAndPropagated(t *testing.T) {
	id, ctxID, w := traceOf(t, newTraceRouter(), "")
	assert.Len(t, id, 36)
	assert.Equal(t, id, ctxID, "services see the same id through context")
	assert.Equal(t, id, w.Header().Get(TraceIDHeader))
}

func TestTraceID_ClientValueKept(t *testing.T) {
	id, ctxID, _ := traceOf(t, newTraceRouter(), "chore-42")
	assert.Equal(t, "chore-42", id)
	assert.Equal(t, "chore-42", ctxID)
}

func TestTraceID_OverlongValueReplaced(t *testing.T) {
	id, _, _ := traceOf(t, newTraceRouter(), strings.Repeat("x", 65))
	assert.Len(t, id, 36)
}

func TestGetTraceID_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", GetTraceID(c))
}
