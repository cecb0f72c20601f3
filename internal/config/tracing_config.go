package config

import (
	"fmt"
	"time"
)

// TracingConfig - настройки OpenTelemetry.
type TracingConfig struct {
	Enabled bool `yaml:"enabled" env:"BR_TRACING_ENABLED"`

	// Endpoint - OTLP HTTP, например http://jaeger:4318.
	Endpoint string `yaml:"endpoint" env:"BR_TRACING_ENDPOINT"`

	ServiceName string `yaml:"serviceName" env:"BR_TRACING_SERVICE_NAME" env-default:"rb-ci"`

	// Environment пусто - берётся BR_ENV.
	Environment string `yaml:"environment" env:"BR_TRACING_ENVIRONMENT"`

	// Insecure - HTTP до коллектора. По умолчанию true из getDefaultTracingConfig.
	Insecure bool `yaml:"insecure" env:"BR_TRACING_INSECURE"`

	Timeout      time.Duration `yaml:"timeout" env:"BR_TRACING_TIMEOUT" env-default:"5s"`
	SamplingRate float64       `yaml:"samplingRate" env:"BR_TRACING_SAMPLING_RATE" env-default:"1.0"`
}

func isTracingConfigPresent(c *TracingConfig) bool {
	return c != nil && (c.Enabled || c.Endpoint != "")
}

func getDefaultTracingConfig() *TracingConfig {
	return &TracingConfig{
		ServiceName:  "rb-ci",
		Insecure:     true,
		Timeout:      5 * time.Second,
		SamplingRate: 1.0,
	}
}

func validateTracingConfig(tc *TracingConfig) error {
	if !tc.Enabled {
		return nil
	}
	if tc.Endpoint == "" {
		return fmt.Errorf("tracing: endpoint обязателен при enabled=true")
	}
	if tc.SamplingRate < 0 || tc.SamplingRate > 1 {
		return fmt.Errorf("tracing: samplingRate должен быть в диапазоне 0..1, получено %v", tc.SamplingRate)
	}
	if tc.Timeout <= 0 {
		return fmt.Errorf("tracing: timeout должен быть положительным")
	}
	return nil
}
