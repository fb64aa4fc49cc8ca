package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	defaultRegion    = "eu-central-1"
	defaultTableName = "ProductsTable"
)

// DynamoDBConfig has the settings used to build the DynamoDB client.
// Endpoint is only set for DynamoDB Local or other compatible emulators.
type DynamoDBConfig struct {
	Region      string        `koanf:"region"`
	Table       string        `koanf:"table"`
	Endpoint    string        `koanf:"endpoint"`
	CreateTable bool          `koanf:"createtable"`
	Timeout     time.Duration `koanf:"timeout"`
}

// String returns a string representation of the DynamoDB configuration.
func (c *DynamoDBConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- DynamoDB ---\n")
	b.WriteString(fmt.Sprintf("  region: %s\n", c.Region))
	b.WriteString(fmt.Sprintf("  table: %s\n", c.Table))
	b.WriteString(fmt.Sprintf("  endpoint: %s\n", orDefault(c.Endpoint, "<aws default>")))
	b.WriteString(fmt.Sprintf("  createtable: %t\n", c.CreateTable))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *DynamoDBConfig) Validate() error {
	if c.Region == "" {
		c.Region = defaultRegion
	}
	if c.Table == "" {
		c.Table = defaultTableName
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("dynamodb timeout is not configured")
	}
	if c.Endpoint != "" {
		u, err := url.Parse(c.Endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("dynamodb endpoint must be an absolute URL: %s", c.Endpoint)
		}
	}
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
