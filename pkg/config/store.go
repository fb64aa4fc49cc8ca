package config

import (
	"fmt"
	"strings"
)

const (
	StoreDriverDynamoDB = "dynamodb"
	StoreDriverMemory   = "memory"
)

// StoreConfig selects the product store implementation.
type StoreConfig struct {
	Driver string `koanf:"driver"`
}

// String returns a string representation of the store configuration.
func (c *StoreConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Store ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Driver))
	return b.String()
}

func (c *StoreConfig) Validate() error {
	switch c.Driver {
	case "":
		c.Driver = StoreDriverDynamoDB
	case StoreDriverDynamoDB, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store driver: %q", c.Driver)
	}
	return nil
}
