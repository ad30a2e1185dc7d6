package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"userapi/internal/config"
	"userapi/internal/http/middleware"
	"userapi/internal/logging"
	"userapi/internal/repository/memory"
	"userapi/internal/service"
	storeMocks "userapi/internal/storage/mocks"
	"userapi/internal/validation"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		AppHost:         "localhost:8080",
		Port:            "0",
		CORSOrigins:     "*",
		BodyLimit:       1024,
		ShutdownTimeout: time.Second,
		RequestTimeout:  5 * time.Second,
		Store:           config.StoreConfig{Backend: config.BackendMemory},
		Storage:         config.StorageConfig{Bucket: "b1"},
		Upload:          config.UploadConfig{Expiry: 15 * time.Minute, KeyPrefix: "avatars/"},
	}
}

func TestNewServer(t *testing.T) {
	cfg := testConfig()
	store := new(storeMocks.MockStorage)
	store.On("Ping", mock.Anything).Return(nil)
	val := validation.New()

	app, err := newServer(cfg, logging.Discard(),
		service.NewUserService(memory.NewUserMemory(), val),
		service.NewUploadService(store, val, cfg.Upload),
	)
	require.NoError(t, err)

	t.Run("health carries request id and security headers", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	})

	t.Run("readiness", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/readyz", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("metrics exposes request counter", func(t *testing.T) {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/users", nil))
		require.NoError(t, err)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), `http_requests_total{method="GET",path="/users",status="200"} 1`)
		assert.Contains(t, string(body), "http_request_duration_seconds")
	})

	t.Run("body limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"`+strings.Repeat("a", 2048)+`"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	})

	t.Run("unknown route uses error envelope", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/nope", nil))
		require.NoError(t, err)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.NotEmpty(t, body["request_id"])
	})
}

func TestOpenStore(t *testing.T) {
	cfg := testConfig()

	repo, closeFn, err := openStore(t.Context(), cfg, logging.Discard())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &memory.UserMemory{}, repo)

	cfg.Store.Backend = "cassandra"
	_, _, err = openStore(t.Context(), cfg, logging.Discard())
	assert.EqualError(t, err, `unknown store backend "cassandra"`)
}

func TestRun_RequiresBucket(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Bucket = ""

	err := run(cfg, logging.Discard())
	assert.ErrorIs(t, err, config.ErrBucketRequired)
}
