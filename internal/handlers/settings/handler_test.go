package settings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Warn(msg string, args ...interface{})  {}

type memorySettings struct {
	values map[string]string
}

func (m *memorySettings) GetSetting(ctx context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *memorySettings) SaveSetting(ctx context.Context, key, value string) error {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func settingsRouter(repo *memorySettings) *mux.Router {
	router := mux.NewRouter()
	NewSettingHandler(repo, nopLogger{}).RegisterRoutes(router)
	return router
}

func TestSaveAndGetSetting(t *testing.T) {
	repo := &memorySettings{}
	router := settingsRouter(repo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/settings/selfHostedEnabled", strings.NewReader(`{"value": "true"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", repo.values["selfHostedEnabled"])

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/settings/selfHostedEnabled", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"value":"true"`)
}

func TestGetAbsentSettingReadsEmpty(t *testing.T) {
	router := settingsRouter(&memorySettings{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/settings/llmFrogPath", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"value":""`)
}

func TestSaveSettingRejectsBadBody(t *testing.T) {
	router := settingsRouter(&memorySettings{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/settings/selfHostedEnabled", strings.NewReader("not json"))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
