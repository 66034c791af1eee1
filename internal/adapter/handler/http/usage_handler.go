package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/lumenlabs/lumen-payments/internal/domain/errors"
	"github.com/lumenlabs/lumen-payments/internal/usecase"
)

// UsageHandler records image generations against an entitlement.
type UsageHandler struct {
	logger *zap.Logger
	usage  *usecase.UsageService
}

// NewUsageHandler creates a new usage handler.
func NewUsageHandler(logger *zap.Logger, usage *usecase.UsageService) *UsageHandler {
	return &UsageHandler{
		logger: logger,
		usage:  usage,
	}
}

type TrackUsageRequest struct {
	Email     string `json:"email" validate:"required,email"`
	ImageData string `json:"imageData"`
}

type TrackUsageResponse struct {
	ImagesGenerated int     `json:"imagesGenerated"`
	TotalUsageCost  float64 `json:"totalUsageCost"`
	Charged         bool    `json:"charged"`
}

func (h *UsageHandler) TrackUsage(c echo.Context) error {
	var req TrackUsageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.usage.Track(c.Request().Context(), req.Email, req.ImageData)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotEntitled):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no active paid plan"})
		case errors.Is(err, domainErrors.ErrEntitlementNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		default:
			h.logger.Error("Failed to track usage",
				zap.String("email", req.Email),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to track usage"})
		}
	}

	return c.JSON(http.StatusOK, TrackUsageResponse{
		ImagesGenerated: result.ImagesGenerated,
		TotalUsageCost:  result.TotalUsageCost,
		Charged:         result.Charged,
	})
}
