package provider

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lumenlabs/lumen-payments/internal/config"
	domainProvider "github.com/lumenlabs/lumen-payments/internal/domain/provider"
	dodoProvider "github.com/lumenlabs/lumen-payments/internal/infrastructure/provider/dodo"
	stripeProvider "github.com/lumenlabs/lumen-payments/internal/infrastructure/provider/stripe"
)

// Factory creates payment clients based on the configured provider
type Factory struct {
	config *config.Config
	logger *zap.Logger
}

// NewFactory creates a new provider factory
func NewFactory(config *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		config: config,
		logger: logger,
	}
}

// GetClient returns the payment client named by the active provider config.
func (f *Factory) GetClient() (domainProvider.PaymentClient, error) {
	switch f.config.Providers.Active {
	case "dodo":
		return f.createDodoClient()
	case "stripe":
		return f.createStripeClient()
	default:
		return nil, fmt.Errorf("unsupported payment provider: %s", f.config.Providers.Active)
	}
}

func (f *Factory) createDodoClient() (domainProvider.PaymentClient, error) {
	if f.config.Providers.Dodo.APIKey == "" {
		return nil, fmt.Errorf("Dodo API key not configured")
	}

	return dodoProvider.NewClient(&f.config.Providers.Dodo, f.logger), nil
}

func (f *Factory) createStripeClient() (domainProvider.PaymentClient, error) {
	if f.config.Providers.Stripe.SecretKey == "" {
		return nil, fmt.Errorf("Stripe secret key not configured")
	}

	return stripeProvider.NewClient(&f.config.Providers.Stripe, f.logger), nil
}
