package main

import (
	"context"

	"github.com/emxanuel/cybership-test/internal/config"
	"github.com/emxanuel/cybership-test/internal/telemetry"
	"github.com/emxanuel/cybership-test/pkg/carrier"
	"github.com/emxanuel/cybership-test/pkg/carrier/fedex"
	"github.com/emxanuel/cybership-test/pkg/carrier/ups"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(cfg *config.Config) (*otelzap.Logger, error) {
	return telemetry.NewLogger(cfg.LogLevel, cfg.ServiceName)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
	return shutdown, err
}

func initCarrierRegistry(cfg *config.Config, logger *otelzap.Logger, metrics *telemetry.Metrics) *carrier.Registry {
	registry := carrier.NewRegistry()
	tracer := otel.Tracer(cfg.ServiceName)

	if cfg.UPSEnabled {
		registry.Register(ups.New(ups.Config{
			ClientID:       cfg.UPSClientID,
			ClientSecret:   cfg.UPSClientSecret,
			BaseURL:        cfg.UPSBaseURL,
			ShipperNumber:  cfg.UPSShipperNumber,
			TransactionSrc: cfg.UPSTransactionSrc,
			UseMock:        cfg.UPSUseMock,
			OnTokenAcquire: func(outcome string) {
				metrics.RecordTokenRefresh("ups", outcome)
			},
		}, logger, tracer))
	}

	if cfg.FedExEnabled {
		registry.Register(fedex.New(fedex.Config{
			ClientID:      cfg.FedExClientID,
			ClientSecret:  cfg.FedExClientSecret,
			BaseURL:       cfg.FedExBaseURL,
			AccountNumber: cfg.FedExAccountNumber,
			UseMock:       cfg.FedExUseMock,
			OnTokenAcquire: func(outcome string) {
				metrics.RecordTokenRefresh("fedex", outcome)
			},
		}, logger, tracer))
	}

	return registry
}
