package dynatrace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudformation-dynatrace-resource-providers/internal/domain/models"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{
		Endpoint:       server.URL,
		APIToken:       "dt0c01.test-token",
		RequestTimeout: 5 * time.Second,
		RateLimit:      100,
		RateBurst:      100,
	})
	require.NoError(t, err)
	return client, server
}

func TestClient_GetMonitor(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/synthetic/monitors/SYNTHETIC_TEST-01", r.URL.Path)
		assert.Equal(t, "Api-Token dt0c01.test-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		w.Header().Set("Server-Timing", "total;dur=42.5")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"entityId":"SYNTHETIC_TEST-01","name":"checkout","type":"BROWSER","enabled":true}`))
	}))

	monitor, timing, err := client.GetMonitor(context.Background(), "SYNTHETIC_TEST-01")
	require.NoError(t, err)
	assert.Equal(t, "SYNTHETIC_TEST-01", monitor.EntityID)
	assert.Equal(t, models.MonitorTypeBrowser, monitor.Type)
	assert.Equal(t, 42.5, timing)
}

func TestClient_GetMonitor_NotFound(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Monitor not found"}}`))
	}))

	_, _, err := client.GetMonitor(context.Background(), "SYNTHETIC_TEST-99")
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Monitor not found", apiErr.Message)
}

func TestClient_CreateMonitor(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/synthetic/monitors", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"entityId":"SYNTHETIC_TEST-07","name":"checkout","type":"BROWSER","enabled":true}`))
	}))

	created, err := client.CreateMonitor(context.Background(), &models.SyntheticMonitor{
		Name: "checkout", Type: models.MonitorTypeBrowser, Enabled: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "SYNTHETIC_TEST-07", created.EntityID)
}

func TestClient_CreateMonitor_ConstraintViolation(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Could not create monitor",` +
			`"constraintViolations":[{"message":"name must be unique","path":"name"}]}}`))
	}))

	_, err := client.CreateMonitor(context.Background(), &models.SyntheticMonitor{Name: "checkout"})
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, CodeConstraintViolation, apiErr.Code)
	assert.Contains(t, apiErr.Message, "name must be unique")
}

func TestClient_UpdateMonitor_NoContentResponse(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))

	desired := &models.SyntheticMonitor{EntityID: "SYNTHETIC_TEST-01", Name: "checkout"}
	updated, err := client.UpdateMonitor(context.Background(), desired.EntityID, desired)
	require.NoError(t, err)
	assert.Equal(t, desired.Name, updated.Name)
}

func TestClient_DeleteMonitor_ServerFault(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{}`))
	}))

	err := client.DeleteMonitor(context.Background(), "SYNTHETIC_TEST-01")
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, CodeServerError, apiErr.Code, "5xx without an envelope still carries a vendor code")
}

func TestClient_ListMonitors(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/synthetic/monitors", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"monitors":[{"entityId":"SYNTHETIC_TEST-01","name":"a","type":"BROWSER","enabled":true},` +
			`{"entityId":"SYNTHETIC_TEST-02","name":"b","type":"HTTP","enabled":false}]}`))
	}))

	monitors, err := client.ListMonitors(context.Background())
	require.NoError(t, err)
	require.Len(t, monitors, 2)
	assert.Equal(t, models.MonitorTypeHTTP, monitors[1].Type)
}

func TestServerTiming(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected float64
	}{
		{name: "plain total marker", header: "total;dur=123.4", expected: 123.4},
		{name: "multiple metrics", header: "db;dur=5, total;dur=99", expected: 5},
		{name: "missing header", header: "", expected: 0},
		{name: "malformed duration", header: "total;dur=abc", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.header != "" {
				header.Set("Server-Timing", tt.header)
			}
			assert.Equal(t, tt.expected, serverTiming(header))
		})
	}
}

func TestClientConfig_Validate(t *testing.T) {
	valid := ClientConfig{
		Endpoint:       "https://abc12345.live.dynatrace.com",
		APIToken:       "dt0c01.token",
		RequestTimeout: 30 * time.Second,
		RateLimit:      10,
		RateBurst:      20,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*ClientConfig)
	}{
		{name: "empty endpoint", mutate: func(c *ClientConfig) { c.Endpoint = "" }},
		{name: "relative endpoint", mutate: func(c *ClientConfig) { c.Endpoint = "abc12345.live.dynatrace.com" }},
		{name: "empty token", mutate: func(c *ClientConfig) { c.APIToken = "" }},
		{name: "zero timeout", mutate: func(c *ClientConfig) { c.RequestTimeout = 0 }},
		{name: "zero rate limit", mutate: func(c *ClientConfig) { c.RateLimit = 0 }},
		{name: "zero burst", mutate: func(c *ClientConfig) { c.RateBurst = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
