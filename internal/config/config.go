package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// UPS
	UPSClientID       string `envconfig:"UPS_CLIENT_ID"`
	UPSClientSecret   string `envconfig:"UPS_CLIENT_SECRET"`
	UPSBaseURL        string `envconfig:"UPS_BASE_URL" default:"https://onlinetools.ups.com"`
	UPSShipperNumber  string `envconfig:"UPS_SHIPPER_NUMBER"`
	UPSTransactionSrc string `envconfig:"UPS_TRANSACTION_SRC" default:"cybership"`
	UPSEnabled        bool   `envconfig:"UPS_ENABLED" default:"true"`
	UPSUseMock        bool   `envconfig:"UPS_USE_MOCK" default:"false"`

	// FedEx
	FedExClientID      string `envconfig:"FEDEX_CLIENT_ID"`
	FedExClientSecret  string `envconfig:"FEDEX_CLIENT_SECRET"`
	FedExBaseURL       string `envconfig:"FEDEX_BASE_URL" default:"https://apis.fedex.com"`
	FedExAccountNumber string `envconfig:"FEDEX_ACCOUNT_NUMBER"`
	FedExEnabled       bool   `envconfig:"FEDEX_ENABLED" default:"true"`
	FedExUseMock       bool   `envconfig:"FEDEX_USE_MOCK" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"cybership-rates"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("ups.enabled", c.UPSEnabled),
		attribute.Bool("fedex.enabled", c.FedExEnabled),
	}
}
