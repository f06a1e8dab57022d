package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/andrei-cloud/go_pool/internal/pool"
	"github.com/andrei-cloud/go_pool/internal/preset"
)

var (
	configData Config
	v          *viper.Viper
	bindings   = map[string]*pflag.Flag{}
)

// Config holds all configuration settings.
type Config struct {
	// Server configuration
	Server struct {
		Host string
		Port int
	}
	// Metrics endpoint configuration
	Metrics struct {
		Addr string
	}
	// Logging configuration
	Log struct {
		Level  string
		Format string
	}
	// Host loop configuration
	Host struct {
		TickRate time.Duration `mapstructure:"tick_rate"`
	}
	// Pool policy and categories
	Pool struct {
		Persistent         bool
		Debug              bool
		UsePreset          bool           `mapstructure:"use_preset"`
		EnforcePooling     bool           `mapstructure:"enforce_pooling"`
		AllowInstantiation bool           `mapstructure:"allow_instantiation"`
		DetachOnAcquire    bool           `mapstructure:"detach_on_acquire"`
		Presets            []string       // preset files
		SharedPresets      []string       `mapstructure:"shared_presets"` // preset names in redis
		Categories         []preset.Entry // categories defined inline
	}
	// Redis holds the shared preset store connection.
	Redis struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
	}
	// Catalog lists the template kinds available as prototypes and for the resource fallback.
	Catalog []string
}

// Policy returns the pool policy switches.
func (c *Config) Policy() pool.Policy {
	return pool.Policy{
		Persistent:         c.Pool.Persistent,
		Debug:              c.Pool.Debug,
		UsePreset:          c.Pool.UsePreset,
		EnforcePooling:     c.Pool.EnforcePooling,
		AllowInstantiation: c.Pool.AllowInstantiation,
		DetachOnAcquire:    c.Pool.DetachOnAcquire,
	}
}

// Initialize sets up the configuration system. cfgFile overrides the config search path.
func Initialize(cfgFile string) error {
	v = viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")         // name of config file (without extension)
		v.SetConfigType("yaml")           // config file type
		v.AddConfigPath(".")              // optionally look for config in working directory
		v.AddConfigPath("$HOME/.go_pool") // look for config in .go_pool directory in home
		v.AddConfigPath("/etc/go_pool/")  // path to look for the config file in
	}

	// Set default values
	setDefaults()

	// Command line flags override file and environment
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("error binding flag %s: %w", key, err)
		}
	}

	// Environment variables
	v.SetEnvPrefix("GOPOOL") // prefix for env vars
	v.AutomaticEnv()         // read in environment variables that match
	v.SetEnvKeyReplacer(     // replace dots with underscores in env vars
		strings.NewReplacer(".", "_"),
	)

	if cfgFile == "" {
		// Create config file if it doesn't exist
		if err := ensureConfig(); err != nil {
			return fmt.Errorf("error creating config file: %w", err)
		}
	}

	// Read in config file
	if err := v.ReadInConfig(); err != nil {
		// It's okay if we can't find a config file, we'll use defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal config into struct
	configData = Config{}
	if err := v.Unmarshal(&configData); err != nil {
		return fmt.Errorf("unable to decode into config struct: %w", err)
	}

	return nil
}

// setDefaults sets default values for all configuration options.
func setDefaults() {
	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 1600)

	// Metrics defaults
	v.SetDefault("metrics.addr", "")

	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "human")

	// Host defaults
	v.SetDefault("host.tick_rate", 50*time.Millisecond)

	// Pool defaults
	v.SetDefault("pool.persistent", false)
	v.SetDefault("pool.debug", false)
	v.SetDefault("pool.use_preset", true)
	v.SetDefault("pool.enforce_pooling", false)
	v.SetDefault("pool.allow_instantiation", false)
	v.SetDefault("pool.detach_on_acquire", false)

	// Redis defaults
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "gopool:preset")
}

// ensureConfig creates a default config file if none exists.
func ensureConfig() error {
	dir := filepath.Join(os.Getenv("HOME"), ".go_pool")
	// Check if config directory exists
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		// Create default config file
		defaultConfig := `# GO POOL Configuration File
server:
  host: localhost
  port: 1600

log:
  level: info
  format: human

host:
  tick_rate: 50ms

pool:
  use_preset: true
  enforce_pooling: false
  allow_instantiation: false
  detach_on_acquire: false
  presets: []
  categories: []

catalog: []
`
		if err := os.WriteFile(configFile, []byte(defaultConfig), 0o644); err != nil {
			return err
		}
	}

	return nil
}

// BindPFlag registers a command line flag for key. Bindings apply on the next Initialize.
func BindPFlag(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	bindings[key] = flag
}

// Get returns the current configuration.
func Get() *Config {
	return &configData
}

// GetViper returns the viper instance.
func GetViper() *viper.Viper {
	return v
}
