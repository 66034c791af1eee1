package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lumenlabs/lumen-payments/internal/usecase"
)

// StatusHandler serves entitlement snapshots to the dashboard.
type StatusHandler struct {
	logger       *zap.Logger
	entitlements *usecase.EntitlementService
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(logger *zap.Logger, entitlements *usecase.EntitlementService) *StatusHandler {
	return &StatusHandler{
		logger:       logger,
		entitlements: entitlements,
	}
}

type CheckPaymentStatusRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *StatusHandler) CheckPaymentStatus(c echo.Context) error {
	var req CheckPaymentStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	snapshot, err := h.entitlements.Snapshot(c.Request().Context(), req.Email)
	if err != nil {
		h.logger.Error("Failed to load entitlement snapshot",
			zap.String("email", req.Email),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load payment status"})
	}

	return c.JSON(http.StatusOK, snapshot)
}
