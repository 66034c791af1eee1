package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	handler "github.com/lumenlabs/lumen-payments/internal/adapter/handler/http"
	"github.com/lumenlabs/lumen-payments/internal/domain/model"
	"github.com/lumenlabs/lumen-payments/internal/usecase"
)

func newStatusContext(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/api/check-payment-status", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestStatusHandler_CheckPaymentStatus(t *testing.T) {
	logger := zap.NewNop()
	e := echo.New()
	e.Validator = handler.NewRequestValidator()

	t.Run("paid subscriber snapshot", func(t *testing.T) {
		entitlements := new(MockEntitlementRepository)
		service := usecase.NewEntitlementService(entitlements, logger)
		h := handler.NewStatusHandler(logger, service)

		paidAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		entitlements.On("GetByEmail", mock.Anything, "pro@example.com").Return(&model.Entitlement{
			Email:              "pro@example.com",
			Payment:            model.PaymentStatePaid,
			PaymentType:        model.PlanTypeSubscription,
			PaymentDate:        paidAt,
			SubscriptionStatus: "active",
			CustomerID:         "cus_1",
		}, nil)

		c, rec := newStatusContext(e, `{"email":"pro@example.com"}`)
		err := h.CheckPaymentStatus(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, true, body["hasPaid"])
		assert.Equal(t, "subscription", body["paymentType"])
		assert.Equal(t, "active", body["subscriptionStatus"])
	})

	t.Run("unknown email reads as unpaid", func(t *testing.T) {
		entitlements := new(MockEntitlementRepository)
		service := usecase.NewEntitlementService(entitlements, logger)
		h := handler.NewStatusHandler(logger, service)

		entitlements.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, nil)

		c, rec := newStatusContext(e, `{"email":"new@example.com"}`)
		err := h.CheckPaymentStatus(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["hasPaid"])
	})

	t.Run("malformed email is rejected", func(t *testing.T) {
		entitlements := new(MockEntitlementRepository)
		service := usecase.NewEntitlementService(entitlements, logger)
		h := handler.NewStatusHandler(logger, service)

		c, _ := newStatusContext(e, `{"email":"not-an-email"}`)
		err := h.CheckPaymentStatus(c)

		var httpErr *echo.HTTPError
		assert.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		entitlements.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})
}
