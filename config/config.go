// Package config loads the storefront server configuration from an
// optional YAML file, the environment and command-line flags, in that
// order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultPort         = "50302"
	DefaultHTTPPort     = "8302"
	DefaultStorage      = "memory"
	DefaultDebounce     = 100 * time.Millisecond
	DefaultPaymentDelay = 2 * time.Second
	DefaultSessionIdle  = 30 * time.Minute
)

// Environment variables read by Load.
const (
	EnvPort        = "PORT"
	EnvHTTPPort    = "HTTP_PORT"
	EnvStorage     = "STOREFRONT_STORAGE"
	EnvStoragePath = "STOREFRONT_STORAGE_PATH"
)

type ServerConfig struct {
	Port     string `yaml:"port"`
	HTTPPort string `yaml:"http_port"`
}

type StorageConfig struct {
	Backend  string        `yaml:"backend"`
	Path     string        `yaml:"path"`
	Debounce time.Duration `yaml:"debounce"`
}

type CheckoutConfig struct {
	PaymentDelay time.Duration `yaml:"payment_delay"`
	// FailEvery makes every n-th simulated charge fail. Zero disables.
	FailEvery int `yaml:"fail_every"`
}

type SessionsConfig struct {
	// IdleTimeout evicts sessions unused for this long. Zero keeps them
	// resident until shutdown.
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

type CatalogConfig struct {
	// Path overrides the embedded product dataset.
	Path string `yaml:"path"`
}

type LogConfig struct {
	Development bool `yaml:"development"`
}

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Checkout CheckoutConfig `yaml:"checkout"`
	Sessions SessionsConfig `yaml:"sessions"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Log      LogConfig      `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:   ServerConfig{Port: DefaultPort, HTTPPort: DefaultHTTPPort},
		Storage:  StorageConfig{Backend: DefaultStorage, Debounce: DefaultDebounce},
		Checkout: CheckoutConfig{PaymentDelay: DefaultPaymentDelay},
		Sessions: SessionsConfig{IdleTimeout: DefaultSessionIdle},
	}
}

// Load builds the configuration from args (without the program name)
// and getenv. It returns pflag.ErrHelp when help was requested.
func Load(args []string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	var path, port, httpPort string
	var development bool
	flags := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	flags.StringVar(&path, "config", "", "path to a YAML config file")
	flags.StringVar(&port, "port", "", "gRPC listen port (default "+DefaultPort+")")
	flags.StringVar(&httpPort, "http-port", "", "HTTP gateway listen port (default "+DefaultHTTPPort+")")
	flags.BoolVar(&development, "dev", false, "use the development logger")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg
	}

	if v := getenv(EnvPort); v != "" {
		cfg.Server.Port = v
	}
	if v := getenv(EnvHTTPPort); v != "" {
		cfg.Server.HTTPPort = v
	}
	if v := getenv(EnvStorage); v != "" {
		cfg.Storage.Backend = v
	}
	if v := getenv(EnvStoragePath); v != "" {
		cfg.Storage.Path = v
	}

	if flags.Changed("port") {
		cfg.Server.Port = port
	}
	if flags.Changed("http-port") {
		cfg.Server.HTTPPort = httpPort
	}
	if flags.Changed("dev") {
		cfg.Log.Development = development
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads a YAML file over the defaults. Keys missing from the
// file keep their default values.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration can start a server.
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HTTPPort == "" {
		return fmt.Errorf("http port is required")
	}
	switch c.Storage.Backend {
	case "memory":
	case "file", "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage backend %s needs a path", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Debounce < 0 {
		return fmt.Errorf("storage debounce must not be negative")
	}
	if c.Checkout.PaymentDelay < 0 {
		return fmt.Errorf("payment delay must not be negative")
	}
	if c.Sessions.IdleTimeout < 0 {
		return fmt.Errorf("session idle timeout must not be negative")
	}
	if c.Checkout.FailEvery < 0 {
		return fmt.Errorf("fail_every must not be negative")
	}
	return nil
}
