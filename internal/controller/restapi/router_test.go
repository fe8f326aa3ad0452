package restapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andreyxaxa/Candidate-Verifier/config"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := &config.Config{}
	cfg.HTTP.AllowOrigins = []string{"http://localhost:8000"}
	cfg.Import.MaxFileSize = 1024
	cfg.Submit.MaxPhotoSize = 1024

	app := fiber.New()
	NewRouter(app, cfg, nil, nil, logger.NewWithZap(zaptest.NewLogger(t)))

	return app
}

func TestHealth(t *testing.T) {
	resp, err := newTestApp(t).Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"OK"}`, string(b))
}

func TestMetricsExposed(t *testing.T) {
	resp, err := newTestApp(t).Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(b), "go_goroutines")
}

func TestSwaggerDisabledByDefault(t *testing.T) {
	resp, err := newTestApp(t).Test(httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
