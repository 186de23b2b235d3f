package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler_Check(t *testing.T) {
	e := NewTestEcho()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewHealthHandler()

	err := h.Check(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"service":"bus-seat-reservation"`)
	assert.Contains(t, rec.Body.String(), `"timestamp"`)
}

func TestNewHealthHandler(t *testing.T) {
	h := NewHealthHandler()
	assert.NotNil(t, h)
}
