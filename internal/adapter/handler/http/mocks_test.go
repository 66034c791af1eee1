package http_test

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/lumenlabs/lumen-payments/internal/domain/model"
	"github.com/lumenlabs/lumen-payments/internal/domain/provider"
	domainRepo "github.com/lumenlabs/lumen-payments/internal/domain/repository"
)

// MockEntitlementRepository is a mock implementation of EntitlementRepository
type MockEntitlementRepository struct {
	mock.Mock
}

func (m *MockEntitlementRepository) GetByEmail(ctx context.Context, email string) (*model.Entitlement, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entitlement), args.Error(1)
}

func (m *MockEntitlementRepository) ApplyPaid(ctx context.Context, update *domainRepo.PaidUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func (m *MockEntitlementRepository) MarkUnpaid(ctx context.Context, email, subscriptionID, status string) error {
	args := m.Called(ctx, email, subscriptionID, status)
	return args.Error(0)
}

func (m *MockEntitlementRepository) RecordUsage(ctx context.Context, email string, cost decimal.Decimal, at time.Time) (*model.Entitlement, error) {
	args := m.Called(ctx, email, cost, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Entitlement), args.Error(1)
}

// MockEventLedgerRepository is a mock implementation of EventLedgerRepository
type MockEventLedgerRepository struct {
	mock.Mock
}

func (m *MockEventLedgerRepository) Apply(ctx context.Context, email, eventID string, credits int) (bool, error) {
	args := m.Called(ctx, email, eventID, credits)
	return args.Bool(0), args.Error(1)
}

// MockPaymentClient is a mock implementation of provider.PaymentClient
type MockPaymentClient struct {
	mock.Mock
}

func (m *MockPaymentClient) GetPayment(ctx context.Context, paymentID string) (*provider.Resource, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Resource), args.Error(1)
}

func (m *MockPaymentClient) GetSubscription(ctx context.Context, subscriptionID string) (*provider.Resource, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Resource), args.Error(1)
}

func (m *MockPaymentClient) GetCheckoutSession(ctx context.Context, sessionID string) (*provider.Resource, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Resource), args.Error(1)
}

func (m *MockPaymentClient) CreateCheckoutSession(ctx context.Context, req *provider.CheckoutRequest) (*provider.CheckoutResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.CheckoutResponse), args.Error(1)
}

func (m *MockPaymentClient) VerifyWebhook(payload []byte, headers http.Header) (*model.PaymentEvent, string, error) {
	args := m.Called(payload, headers)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*model.PaymentEvent), args.String(1), args.Error(2)
}

func (m *MockPaymentClient) Name() string {
	return "mock"
}
