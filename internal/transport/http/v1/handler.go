// Package v1 provides HTTP handlers for the event gateway.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tessera-ai/eventgate/internal/hub"
	"github.com/tessera-ai/eventgate/internal/resolver"
	"github.com/tessera-ai/eventgate/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service  *service.Service
	registry *resolver.Registry
	hub      *hub.Hub
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service, registry *resolver.Registry, h *hub.Hub) *Handler {
	return &Handler{
		service:  svc,
		registry: registry,
		hub:      h,
	}
}

// RegisterRoutes registers external routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Gateway operation surface (mutations)
	e.POST("/v1/operations", h.ExecuteOperation)

	// Runtime registry API
	e.POST("/v1/runtimes", h.CreateRuntime)
	e.GET("/v1/runtimes", h.ListRuntimes)
	e.GET("/v1/runtimes/:agent_name", h.GetRuntime)
	e.DELETE("/v1/runtimes/:agent_name", h.DeleteRuntime)
	e.POST("/v1/runtimes/:agent_name/status", h.UpdateRuntimeStatus)

	// Event history API
	e.GET("/v1/runtimes/:agent_name/events", h.ListRuntimeEvents)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"version":     "0.1.0",
		"connections": h.hub.GetConnectionCount(),
		"subscribers": h.hub.GetSubscriberCount(),
	})
}
