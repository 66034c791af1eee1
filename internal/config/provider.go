package config

type ProvidersConfig struct {
	// Active selects which payment provider backs the storefront ("dodo"
	// or "stripe").
	Active string       `yaml:"active"`
	Dodo   DodoConfig   `yaml:"dodo"`
	Stripe StripeConfig `yaml:"stripe"`
}

type DodoConfig struct {
	APIBase       string `yaml:"api_base"`
	APIKey        string `yaml:"api_key"`
	WebhookSecret string `yaml:"webhook_secret"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
}
