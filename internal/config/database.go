package config

import "time"

const defaultMongoTimeout = 10 * time.Second

// MongoConfig holds document database connection configuration
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`

	// Timeout bounds every individual database operation.
	Timeout time.Duration `yaml:"timeout"`
}
