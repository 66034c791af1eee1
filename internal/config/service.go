package config

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	ClientURL   string `yaml:"client_url"`

	// EnableUnsignedWebhook exposes the legacy /api/webhooks/payment route.
	// It carries no signature, so it stays off outside development.
	EnableUnsignedWebhook bool `yaml:"enable_unsigned_webhook"`
}

type UsageConfig struct {
	// CostPerImage is the metered price charged per generated image for
	// usage-based plans, in USD.
	CostPerImage float64 `yaml:"cost_per_image"`
}

func (c *Config) applyDefaults() {
	if c.Server.HTTP.Host == "" {
		c.Server.HTTP.Host = "0.0.0.0"
	}
	if c.Server.HTTP.Port == 0 {
		c.Server.HTTP.Port = 8080
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "lumen"
	}
	if c.Mongo.Timeout == 0 {
		c.Mongo.Timeout = defaultMongoTimeout
	}
	if c.Providers.Active == "" {
		c.Providers.Active = "dodo"
	}
	if c.Usage.CostPerImage == 0 {
		c.Usage.CostPerImage = 0.04
	}
}
