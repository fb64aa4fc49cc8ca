// Package configloader assembles a typed configuration from defaults, a YAML file,
// a .env file and the process environment, in increasing order of precedence.
package configloader

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Validator interface {
	Validate() error
}

type options struct {
	configFile string
	envFile    string
	defaults   map[string]any
	aliases    map[string]string
}

// Option customizes Load.
type Option func(*options)

// WithConfigFile overrides the YAML file path (default "config.yaml").
func WithConfigFile(path string) Option {
	return func(o *options) { o.configFile = path }
}

// WithEnvFile overrides the dotenv file path (default ".env").
func WithEnvFile(path string) Option {
	return func(o *options) { o.envFile = path }
}

// WithDefaults seeds the configuration with values keyed by koanf path, e.g. "server.port".
func WithDefaults(defaults map[string]any) Option {
	return func(o *options) { o.defaults = defaults }
}

// WithEnvAliases maps unprefixed environment variables (e.g. PORT) onto koanf paths.
// Aliases rank above the YAML and .env files but below prefixed variables.
func WithEnvAliases(aliases map[string]string) Option {
	return func(o *options) { o.aliases = aliases }
}

// Load reads the configuration for serviceName. Prefixed variables use the
// <SERVICE>_ prefix with "_" as the path separator, e.g. CATALOG_SERVER_PORT.
func Load[T Validator](serviceName string, opts ...Option) (T, error) {
	var cfg T
	o := options{configFile: "config.yaml", envFile: ".env"}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")
	envPrefix := fmt.Sprintf("%s_", strings.ToUpper(serviceName))

	// 1. Built-in defaults
	if len(o.defaults) > 0 {
		if err := k.Load(confmap.Provider(o.defaults, "."), nil); err != nil {
			return cfg, fmt.Errorf("error loading default config: %w", err)
		}
	}

	// 2. YAML file
	if err := k.Load(file.Provider(o.configFile), yaml.Parser()); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN: error loading YAML config file '%s': %v", o.configFile, err)
		}
	}

	// 3. .env file
	envTransformer := func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, strings.ToLower(envPrefix))
		return strings.ReplaceAll(key, "_", ".")
	}
	if envFileMap, err := godotenv.Read(o.envFile); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if path, ok := o.aliases[key]; ok {
				envMap[path] = value
				continue
			}
			if strings.HasPrefix(strings.ToUpper(key), envPrefix) {
				envMap[envTransformer(key)] = value
			}
		}
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// 4. Unprefixed aliases from the system environment
	if len(o.aliases) > 0 {
		aliasMap := make(map[string]any)
		for name, path := range o.aliases {
			if value, ok := os.LookupEnv(name); ok && value != "" {
				aliasMap[path] = value
			}
		}
		if err := k.Load(confmap.Provider(aliasMap, "."), nil); err != nil {
			log.Printf("WARN: error loading env aliases: %v", err)
		}
	}

	// 5. Prefixed system environment, the highest priority
	if err := k.Load(env.Provider(envPrefix, ".", envTransformer), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}
