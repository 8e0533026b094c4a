//go:build unit

package httperr_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"class-booking/internal/handler/httperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbortWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/sessions/x/submit", nil)

	cause := errors.New("connection reset")
	httperr.AbortWithError(c, http.StatusBadGateway, cause, "Error submitting booking", map[string]string{"state": "selecting"})

	t.Run("queues a public error carrying the response", func(t *testing.T) {
		last := c.Errors.Last()
		require.NotNil(t, last)
		assert.True(t, last.IsType(gin.ErrorTypePublic))
		assert.ErrorIs(t, last.Err, cause)

		resp, ok := last.Meta.(httperr.Response)
		require.True(t, ok, "meta is %T", last.Meta)
		assert.Equal(t, http.StatusBadGateway, resp.Status)
		assert.Equal(t, "Error submitting booking", resp.Error.Message)
	})

	t.Run("writes the envelope and aborts", func(t *testing.T) {
		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.JSONEq(t, `{"error":{"message":"Error submitting booking"},"detail":{"state":"selecting"}}`, rec.Body.String())
	})
}

func TestAbortWithError_NilPanics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Panics(t, func() {
		httperr.AbortWithError(c, http.StatusBadRequest, nil, "Invalid request", nil)
	})
}
