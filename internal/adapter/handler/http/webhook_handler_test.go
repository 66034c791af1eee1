package http_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	handler "github.com/lumenlabs/lumen-payments/internal/adapter/handler/http"
	"github.com/lumenlabs/lumen-payments/internal/domain/model"
	"github.com/lumenlabs/lumen-payments/internal/domain/provider"
	domainRepo "github.com/lumenlabs/lumen-payments/internal/domain/repository"
	"github.com/lumenlabs/lumen-payments/internal/usecase"
)

func newWebhookContext(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestWebhookHandler_HandleWebhook(t *testing.T) {
	logger := zap.NewNop()
	e := echo.New()
	e.Validator = handler.NewRequestValidator()

	t.Run("verified payment event is reconciled", func(t *testing.T) {
		client := new(MockPaymentClient)
		entitlements := new(MockEntitlementRepository)
		ledger := new(MockEventLedgerRepository)
		reconciler := usecase.NewReconcileService(entitlements, ledger, logger)
		h := handler.NewWebhookHandler(logger, client, reconciler)

		body := `{"type":"payment.succeeded"}`
		client.On("VerifyWebhook", []byte(body), mock.Anything).Return(&model.PaymentEvent{
			Email:      "buyer@example.com",
			Kind:       model.EventKindPayment,
			ExternalID: "pay_1",
			Status:     "succeeded",
			Metadata:   map[string]string{"plan": "Credit Pack", "credits": "25"},
		}, "payment.succeeded", nil)
		ledger.On("Apply", mock.Anything, "buyer@example.com", "pay_1", 25).Return(true, nil)
		entitlements.On("ApplyPaid", mock.Anything, mock.MatchedBy(func(u *domainRepo.PaidUpdate) bool {
			return u.Email == "buyer@example.com" && u.CreditsDelta == 25
		})).Return(nil)

		c, rec := newWebhookContext(e, body)
		err := h.HandleWebhook(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"received":true}`, rec.Body.String())
		client.AssertExpectations(t)
		entitlements.AssertExpectations(t)
	})

	t.Run("invalid signature returns 400", func(t *testing.T) {
		client := new(MockPaymentClient)
		reconciler := usecase.NewReconcileService(new(MockEntitlementRepository), new(MockEventLedgerRepository), logger)
		h := handler.NewWebhookHandler(logger, client, reconciler)

		client.On("VerifyWebhook", mock.Anything, mock.Anything).Return(nil, "", &provider.ProviderError{
			Code:    "SIGNATURE_INVALID",
			Message: "Webhook signature verification failed",
		})

		c, rec := newWebhookContext(e, `{}`)
		err := h.HandleWebhook(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unhandled event type is acknowledged", func(t *testing.T) {
		client := new(MockPaymentClient)
		entitlements := new(MockEntitlementRepository)
		reconciler := usecase.NewReconcileService(entitlements, new(MockEventLedgerRepository), logger)
		h := handler.NewWebhookHandler(logger, client, reconciler)

		client.On("VerifyWebhook", mock.Anything, mock.Anything).Return(nil, "refund.succeeded", nil)

		c, rec := newWebhookContext(e, `{"type":"refund.succeeded"}`)
		err := h.HandleWebhook(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"received":true}`, rec.Body.String())
		entitlements.AssertNotCalled(t, "ApplyPaid", mock.Anything, mock.Anything)
	})

	t.Run("event without email returns 400", func(t *testing.T) {
		client := new(MockPaymentClient)
		reconciler := usecase.NewReconcileService(new(MockEntitlementRepository), new(MockEventLedgerRepository), logger)
		h := handler.NewWebhookHandler(logger, client, reconciler)

		client.On("VerifyWebhook", mock.Anything, mock.Anything).Return(&model.PaymentEvent{
			Kind:       model.EventKindPayment,
			ExternalID: "pay_1",
			Status:     "succeeded",
		}, "payment.succeeded", nil)

		c, rec := newWebhookContext(e, `{"type":"payment.succeeded"}`)
		err := h.HandleWebhook(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
