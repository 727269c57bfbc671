package config

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/mikey/mailgun-routes/internal/core"
)

// Config represents the application configuration. Viper is only read
// during construction and by the file watcher; request paths read the
// policy snapshot through Policy.
type Config struct {
	v      *viper.Viper
	policy atomic.Pointer[core.PolicyConfig]
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/mailgun-routes/")
	v.AddConfigPath("$HOME/.mailgun-routes")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	return load(v)
}

// NewFromFile creates a configuration instance backed by a single file,
// watched for changes like the default search path
func NewFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("MAILGUN_ROUTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
		return NewFromViper(v), nil
	}

	// Policy settings are administrator-editable while the server runs.
	// The watcher goroutine is the only writer of the viper maps after
	// this point, and the callback runs on it once the file is re-read.
	c := NewFromViper(v)
	v.OnConfigChange(func(fsnotify.Event) {
		c.ReloadPolicy()
	})
	v.WatchConfig()

	return c, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	c := &Config{v: v}
	c.ReloadPolicy()
	return c
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Mailgun policy defaults
	v.SetDefault("mailgun.api_key", "")
	v.SetDefault("mailgun.spam_detection", "none")
	v.SetDefault("mailgun.spam_score", 5.0)
	v.SetDefault("mailgun.dkim_domain_exclusions", "")
	v.SetDefault("mailgun.spf_domain_exclusions", "")
	v.SetDefault("mailgun.blocked_domains", "")
	v.SetDefault("mailgun.spf_neutral_passes", false)
	v.SetDefault("mailgun.log_rejections", true)

	// Server defaults
	v.SetDefault("server.receiver_type", "http")
	v.SetDefault("server.listen_address", "0.0.0.0:8080")
	v.SetDefault("server.max_body_size", 25*1024*1024)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")

	// Queue defaults
	v.SetDefault("queue.type", "sqlite")
	v.SetDefault("queue.name", "process_email")
	v.SetDefault("queue.memory_capacity", 1000)
	v.SetDefault("queue.redis_addr", "localhost:6379")
	v.SetDefault("queue.redis_password", "")
	v.SetDefault("queue.redis_db", 0)
	v.SetDefault("queue.sqlite_path", "/data/mailgun_jobs.db")
	v.SetDefault("queue.mysql_dsn", "user:password@tcp(localhost:3306)/mailgun_routes")
	v.SetDefault("queue.sqs_region", "us-east-1")
	v.SetDefault("queue.sqs_queue_url", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetInt64 gets an int64 value from the configuration
func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
