package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainErrors "github.com/lumenlabs/lumen-payments/internal/domain/errors"
	"github.com/lumenlabs/lumen-payments/internal/domain/model"
	domainRepo "github.com/lumenlabs/lumen-payments/internal/domain/repository"
)

// UsageResult is the counter state after recording one generated image.
type UsageResult struct {
	ImagesGenerated int
	TotalUsageCost  float64
	Charged         bool
}

// UsageService records image generations against an entitlement. Counters
// increment for every paid plan; metered cost accrues only on usage-based
// plans.
type UsageService struct {
	entitlements domainRepo.EntitlementRepository
	costPerImage decimal.Decimal
	logger       *zap.Logger
}

// NewUsageService creates a usage service charging costPerImage per metered
// image.
func NewUsageService(entitlements domainRepo.EntitlementRepository, costPerImage float64, logger *zap.Logger) *UsageService {
	return &UsageService{
		entitlements: entitlements,
		costPerImage: decimal.NewFromFloat(costPerImage),
		logger:       logger,
	}
}

// Track records one generated image for the user.
func (s *UsageService) Track(ctx context.Context, email string, imageData string) (*UsageResult, error) {
	if email == "" {
		return nil, domainErrors.ErrMissingEmail
	}

	entitlement, err := s.entitlements.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !entitlement.HasPaid() {
		return nil, domainErrors.ErrNotEntitled
	}

	cost := decimal.Zero
	if entitlement.PaymentType == model.PlanTypeUsageBased {
		cost = s.costPerImage
	}

	now := time.Now()
	updated, err := s.entitlements.RecordUsage(ctx, email, cost, now)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Usage recorded",
		zap.String("email", email),
		zap.Int("images_generated", updated.ImagesGenerated),
		zap.String("cost", cost.String()),
		zap.Bool("has_image_data", imageData != ""))

	return &UsageResult{
		ImagesGenerated: updated.ImagesGenerated,
		TotalUsageCost:  updated.TotalUsageCost,
		Charged:         !cost.IsZero(),
	}, nil
}
