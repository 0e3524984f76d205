package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/medivault/api/pkg/errors"
)

func serveError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandler())
	engine.GET("/boom", func(c *gin.Context) {
		c.Error(err)
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	return rec
}

func TestErrorHandlerKeepsWrappedChainOutOfBody(t *testing.T) {
	rec := serveError(t, apperrors.Storage("store attachment",
		errors.New("open uploads/1770000000000-results.pdf: permission denied")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "storage failure")
	assert.NotContains(t, rec.Body.String(), "uploads/")
	assert.NotContains(t, rec.Body.String(), "permission denied")
}

func TestErrorHandlerMapsAppErrorStatus(t *testing.T) {
	rec := serveError(t, apperrors.UnknownPatient("nobody999"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "patient not found")
	assert.NotContains(t, rec.Body.String(), "nobody999")
}

func TestErrorHandlerGenericMessageForUnknownErrors(t *testing.T) {
	rec := serveError(t, errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
	assert.NotContains(t, rec.Body.String(), "pq:")
}
