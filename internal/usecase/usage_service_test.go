package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	domainErrors "github.com/lumenlabs/lumen-payments/internal/domain/errors"
	"github.com/lumenlabs/lumen-payments/internal/domain/model"
	"github.com/lumenlabs/lumen-payments/internal/usecase"
)

func TestUsageService_Track(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("usage-based plan accrues cost", func(t *testing.T) {
		entitlements := new(MockEntitlementRepository)
		service := usecase.NewUsageService(entitlements, 0.04, logger)

		entitlements.On("GetByEmail", ctx, "metered@example.com").Return(&model.Entitlement{
			Email:           "metered@example.com",
			Payment:         model.PaymentStatePaid,
			PaymentType:     model.PlanTypeUsageBased,
			CustomerID:      "cus_1",
			ImagesGenerated: 4,
			TotalUsageCost:  0.16,
		}, nil)
		entitlements.On("RecordUsage", ctx, "metered@example.com", mock.MatchedBy(func(cost decimal.Decimal) bool {
			return cost.Equal(decimal.NewFromFloat(0.04))
		}), mock.Anything).Return(&model.Entitlement{
			Email:           "metered@example.com",
			ImagesGenerated: 5,
			TotalUsageCost:  0.20,
		}, nil)

		result, err := service.Track(ctx, "metered@example.com", "img-bytes")

		assert.NoError(t, err)
		assert.Equal(t, 5, result.ImagesGenerated)
		assert.InDelta(t, 0.20, result.TotalUsageCost, 1e-9)
		assert.True(t, result.Charged)
		entitlements.AssertExpectations(t)
	})

	t.Run("one-time plan counts images without cost", func(t *testing.T) {
		entitlements := new(MockEntitlementRepository)
		service := usecase.NewUsageService(entitlements, 0.04, logger)

		entitlements.On("GetByEmail", ctx, "credits@example.com").Return(&model.Entitlement{
			Email:        "credits@example.com",
			Payment:      model.PaymentStatePaid,
			PaymentType:  model.PlanTypeOneTime,
			TotalCredits: 10,
		}, nil)
		entitlements.On("RecordUsage", ctx, "credits@example.com", mock.MatchedBy(func(cost decimal.Decimal) bool {
			return cost.IsZero()
		}), mock.Anything).Return(&model.Entitlement{
			Email:           "credits@example.com",
			ImagesGenerated: 1,
		}, nil)

		result, err := service.Track(ctx, "credits@example.com", "")

		assert.NoError(t, err)
		assert.Equal(t, 1, result.ImagesGenerated)
		assert.False(t, result.Charged)
		entitlements.AssertExpectations(t)
	})

	t.Run("totals come from the post-update document", func(t *testing.T) {
		entitlements := new(MockEntitlementRepository)
		service := usecase.NewUsageService(entitlements, 0.04, logger)

		// The pre-update read is stale by two concurrent increments; the
		// result must reflect the counters the update itself observed.
		entitlements.On("GetByEmail", ctx, "metered@example.com").Return(&model.Entitlement{
			Email:           "metered@example.com",
			Payment:         model.PaymentStatePaid,
			PaymentType:     model.PlanTypeUsageBased,
			ImagesGenerated: 4,
			TotalUsageCost:  0.16,
		}, nil)
		entitlements.On("RecordUsage", ctx, "metered@example.com", mock.Anything, mock.Anything).Return(&model.Entitlement{
			Email:           "metered@example.com",
			ImagesGenerated: 7,
			TotalUsageCost:  0.28,
		}, nil)

		result, err := service.Track(ctx, "metered@example.com", "")

		assert.NoError(t, err)
		assert.Equal(t, 7, result.ImagesGenerated)
		assert.InDelta(t, 0.28, result.TotalUsageCost, 1e-9)
	})

	t.Run("unpaid user is rejected", func(t *testing.T) {
		entitlements := new(MockEntitlementRepository)
		service := usecase.NewUsageService(entitlements, 0.04, logger)

		entitlements.On("GetByEmail", ctx, "free@example.com").Return(&model.Entitlement{
			Email:   "free@example.com",
			Payment: model.PaymentStateUnpaid,
		}, nil)

		result, err := service.Track(ctx, "free@example.com", "")

		assert.ErrorIs(t, err, domainErrors.ErrNotEntitled)
		assert.Nil(t, result)
		entitlements.AssertNotCalled(t, "RecordUsage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown user is rejected", func(t *testing.T) {
		entitlements := new(MockEntitlementRepository)
		service := usecase.NewUsageService(entitlements, 0.04, logger)

		entitlements.On("GetByEmail", ctx, "nobody@example.com").Return(nil, nil)

		result, err := service.Track(ctx, "nobody@example.com", "")

		assert.ErrorIs(t, err, domainErrors.ErrNotEntitled)
		assert.Nil(t, result)
	})

	t.Run("missing email is rejected", func(t *testing.T) {
		entitlements := new(MockEntitlementRepository)
		service := usecase.NewUsageService(entitlements, 0.04, logger)

		result, err := service.Track(ctx, "", "")

		assert.ErrorIs(t, err, domainErrors.ErrMissingEmail)
		assert.Nil(t, result)
	})
}
