package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthReportsQueueDepthAndLiveRooms(t *testing.T) {
	svc := newTestService()
	require.NoError(t, svc.Queue().Enqueue(newRecordingSender(1, "alice")))

	app := fiber.New()
	SetupSystemRoutes(app, svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["queue_depth"])
	assert.Equal(t, float64(0), body["live_rooms"])
}

func TestMetricsEndpointServesExposition(t *testing.T) {
	app := fiber.New()
	SetupSystemRoutes(app, newTestService())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
