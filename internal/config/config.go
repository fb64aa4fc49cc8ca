// Package config holds the catalog service configuration.
package config

import (
	"errors"
	"strings"

	"github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	DynamoDB   config.DynamoDBConfig   `koanf:"dynamodb"`
	Store      config.StoreConfig      `koanf:"store"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	NATS       config.NATSConfig       `koanf:"nats"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
}

// Defaults are the built-in values, overridden by config.yaml, .env and the environment.
// Keys are lower case so that environment overrides land on the same path.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":               3000,
		"server.maxheaderbytes":     1 << 20,
		"server.timeout.read":       "10s",
		"server.timeout.write":      "10s",
		"server.timeout.idle":       "60s",
		"server.timeout.readheader": "5s",

		"store.driver":     config.StoreDriverDynamoDB,
		"dynamodb.region":  "eu-central-1",
		"dynamodb.table":   "ProductsTable",
		"dynamodb.timeout": "5s",

		"resilience.circuitbreaker.enabled":             true,
		"resilience.circuitbreaker.consecutivefailures": 5,
		"resilience.circuitbreaker.errorratepercent":    60,
		"resilience.circuitbreaker.opentimeout":         "10s",
		"resilience.circuitbreaker.maxhalfopenrequests": 1,

		"grpc.port":    "50051",
		"nats.timeout": "5s",
		"nats.stream":  "CATALOG",

		"telemetry.traces.otlphttp.timeout": "5s",
		"telemetry.metrics.enabled":         true,
		"telemetry.metrics.path":            "/metrics",

		"log.level":        "info",
		"shutdown.timeout": "10s",
	}
}

// EnvAliases maps the conventional unprefixed variables onto configuration paths.
func EnvAliases() map[string]string {
	return map[string]string{
		"PORT":              "server.port",
		"AWS_REGION":        "dynamodb.region",
		"DYNAMODB_ENDPOINT": "dynamodb.endpoint",
	}
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Store.String())
	b.WriteString(c.DynamoDB.String())
	b.WriteString(c.Resilience.String())
	b.WriteString(c.GRPC.String())
	b.WriteString(c.NATS.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks every section and applies section defaults.
func (c *Config) Validate() error {
	return errors.Join(
		c.HTTPServer.Validate(),
		c.Store.Validate(),
		c.DynamoDB.Validate(),
		c.Log.Validate(),
		c.PProf.Validate(),
		c.GRPC.Validate(),
		c.Shutdown.Validate(),
		c.Resilience.Validate(),
		c.NATS.Validate(),
		c.Telemetry.Validate(),
	)
}
