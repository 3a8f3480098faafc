package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tessera-ai/eventgate/internal/resolver"
	"github.com/tessera-ai/eventgate/internal/service"
)

// OperationRequest is the request to execute a gateway operation.
type OperationRequest struct {
	Field     string         `json:"field"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// OperationResponse wraps the operation result.
type OperationResponse struct {
	Data any `json:"data"`
}

// ExecuteOperation runs a mutation field through the resolver pipeline.
// Subscription fields are rejected here: they require a WebSocket
// connection to register their filter against.
// POST /v1/operations
func (h *Handler) ExecuteOperation(c echo.Context) error {
	ctx := c.Request().Context()

	var req OperationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Field == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "field is required"})
	}

	op := h.registry.Lookup(req.Field)
	if op == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown field: " + req.Field})
	}
	if op.Kind == resolver.KindSubscription {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "subscription fields require a websocket connection"})
	}

	result, err := h.registry.Execute(ctx, req.Field, req.Arguments, nil)
	if err != nil {
		if errors.Is(err, service.ErrPublishBlocked) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, OperationResponse{Data: result})
}
