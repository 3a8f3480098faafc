package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tessera-ai/eventgate/internal/domain"
	"github.com/tessera-ai/eventgate/internal/service"
)

// RuntimeCreateRequest is the request to register an agent runtime.
type RuntimeCreateRequest struct {
	AgentName        string `json:"agent_name"`
	Version          string `json:"version,omitempty"`
	ArchitectureType string `json:"architecture_type,omitempty"`
}

// CreateRuntime registers a new agent runtime.
// POST /v1/runtimes
func (h *Handler) CreateRuntime(c echo.Context) error {
	ctx := c.Request().Context()

	var req RuntimeCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.AgentName == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "agent_name is required"})
	}

	runtime, err := h.service.CreateRuntime(ctx, req.AgentName, req.Version, domain.ArchitectureType(req.ArchitectureType))
	if err != nil {
		if errors.Is(err, service.ErrRuntimeExists) {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, runtime)
}

// ListRuntimes lists all registered runtimes.
// GET /v1/runtimes
func (h *Handler) ListRuntimes(c echo.Context) error {
	ctx := c.Request().Context()

	runtimes, err := h.service.ListRuntimes(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"runtimes": runtimes,
	})
}

// GetRuntime gets a runtime by agent name.
// GET /v1/runtimes/:agent_name
func (h *Handler) GetRuntime(c echo.Context) error {
	ctx := c.Request().Context()
	agentName := c.Param("agent_name")

	runtime, err := h.service.GetRuntime(ctx, agentName)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if runtime == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "runtime not found"})
	}

	return c.JSON(http.StatusOK, runtime)
}

// RuntimeStatusRequest is the request to update a runtime's status.
type RuntimeStatusRequest struct {
	Status string `json:"status"`
}

// UpdateRuntimeStatus transitions a runtime's status and publishes the
// corresponding runtime-update event.
// POST /v1/runtimes/:agent_name/status
func (h *Handler) UpdateRuntimeStatus(c echo.Context) error {
	ctx := c.Request().Context()
	agentName := c.Param("agent_name")

	var req RuntimeStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Status == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "status is required"})
	}

	runtime, err := h.service.UpdateRuntimeStatus(ctx, agentName, domain.RuntimeStatus(req.Status))
	if err != nil {
		if errors.Is(err, service.ErrRuntimeNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, runtime)
}

// DeleteRuntime removes a runtime.
// DELETE /v1/runtimes/:agent_name
func (h *Handler) DeleteRuntime(c echo.Context) error {
	ctx := c.Request().Context()
	agentName := c.Param("agent_name")

	if err := h.service.DeleteRuntime(ctx, agentName); err != nil {
		if errors.Is(err, service.ErrRuntimeNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok": true,
	})
}

// ListRuntimeEvents returns the stored event history for an agent.
// GET /v1/runtimes/:agent_name/events
func (h *Handler) ListRuntimeEvents(c echo.Context) error {
	ctx := c.Request().Context()
	agentName := c.Param("agent_name")

	var afterTs int64
	if v := c.QueryParam("after_ts"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid after_ts"})
		}
		afterTs = parsed
	}

	limit := 100
	if v := c.QueryParam("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		}
		limit = parsed
	}

	events, err := h.service.ListRuntimeEvents(ctx, agentName, afterTs, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"events": events,
	})
}
