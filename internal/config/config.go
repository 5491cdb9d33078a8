// Package config loads the flowedit settings from a YAML file and the
// environment, then validates them.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Listen string `yaml:"listen" validate:"required"`
	Store  string `yaml:"store" validate:"oneof=memory file redis"`

	File  FileConfig  `yaml:"file"`
	Redis RedisConfig `yaml:"redis"`

	History   HistoryConfig   `yaml:"history"`
	Breaker   BreakerConfig   `yaml:"breaker"`
	Templates TemplatesConfig `yaml:"templates"`
	Log       LogConfig       `yaml:"log"`
	Deploy    DeployConfig    `yaml:"deploy"`

	// Redact lists regular expressions; matching parameter names are masked before saving.
	Redact []string `yaml:"redact" validate:"dive,required"`
}

type FileConfig struct {
	Dir string `yaml:"dir"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"min=0,max=15"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl" validate:"min=0"`
	// Lock enables the distributed automation lock.
	Lock bool `yaml:"lock"`
}

type HistoryConfig struct {
	Capacity int `yaml:"capacity" validate:"min=1,max=1000"`
}

// BreakerConfig guards network stores with a circuit breaker.
type BreakerConfig struct {
	Enabled             bool          `yaml:"enabled"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures" validate:"min=1"`
	Timeout             time.Duration `yaml:"timeout" validate:"min=0"`
}

type TemplatesConfig struct {
	// Dir holds Markdown/JSON templates. Empty uses the built-in catalogue.
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// DeployConfig runs a local command for every saved automation.
// An empty Command disables deployment.
type DeployConfig struct {
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`
	Dir     string            `yaml:"dir"`
	Timeout time.Duration     `yaml:"timeout" validate:"min=0"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		Store:  StoreMemory,
		File:   FileConfig{Dir: ".flowedit/automations"},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "flowedit:automation:",
		},
		History: HistoryConfig{Capacity: 50},
		Breaker: BreakerConfig{
			ConsecutiveFailures: 5,
			Timeout:             30 * time.Second,
		},
		Log:    LogConfig{Level: "info", Format: "text"},
		Deploy: DeployConfig{Timeout: 30 * time.Second},
	}
}

// Load reads path (when not empty) over the defaults, applies FLOWEDIT_*
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("FLOWEDIT_LISTEN", &c.Listen)
	str("FLOWEDIT_STORE", &c.Store)
	str("FLOWEDIT_FILE_DIR", &c.File.Dir)
	str("FLOWEDIT_REDIS_ADDR", &c.Redis.Addr)
	str("FLOWEDIT_REDIS_PASSWORD", &c.Redis.Password)
	str("FLOWEDIT_TEMPLATES_DIR", &c.Templates.Dir)
	str("FLOWEDIT_LOG_LEVEL", &c.Log.Level)
	str("FLOWEDIT_DEPLOY_COMMAND", &c.Deploy.Command)

	if v, ok := lookup("FLOWEDIT_HISTORY_CAPACITY"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FLOWEDIT_HISTORY_CAPACITY: %w", err)
		}
		c.History.Capacity = n
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		c := sl.Current().Interface().(Config)
		switch c.Store {
		case StoreFile:
			if c.File.Dir == "" {
				sl.ReportError(c.File.Dir, "File.Dir", "Dir", "required_for_store", c.Store)
			}
		case StoreRedis:
			if c.Redis.Addr == "" {
				sl.ReportError(c.Redis.Addr, "Redis.Addr", "Addr", "required_for_store", c.Store)
			}
		}
		for i, p := range c.Redact {
			if _, err := regexp.Compile(p); err != nil {
				sl.ReportError(p, fmt.Sprintf("Redact[%d]", i), "Redact", "regexp", "")
			}
		}
	}, Config{})
	return v
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(strings.TrimPrefix(e.Namespace(), "Config."))
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port", field)
	case "regexp":
		return fmt.Sprintf("%s is not a valid regular expression", field)
	case "required_for_store":
		return fmt.Sprintf("%s is required for store %q", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
