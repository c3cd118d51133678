package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/config"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/handler"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/repository"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/service"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewDialogueService(repository.NewMemorySessionRepository(), repository.NewMemoryNoteRepository(), nil, nil, nil)
	return Setup(config.Default(), handler.NewSessionHandler(svc))
}

func TestSetup_Health(t *testing.T) {
	r := newEngine()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSetup_CORS(t *testing.T) {
	r := newEngine()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSetup_APIRoutesMounted(t *testing.T) {
	r := newEngine()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/sessions/sess_missing/finalize", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_NOT_FOUND")
}
