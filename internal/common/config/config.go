// internal/common/config/config.go
package config

import (
	"fmt"
	"strings"
)

// Config is the main application configuration struct. The file keeps the
// historical top-level keys datacite_test and datacite_live.
type Config struct {
	DataciteTest  DataciteConfig     `mapstructure:"datacite_test"`
	DataciteLive  DataciteConfig     `mapstructure:"datacite_live"`
	Allocator     AllocatorConfig    `mapstructure:"allocator"`
	Ledger        LedgerConfig       `mapstructure:"ledger"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Notifications NotificationConfig `mapstructure:"notifications"`
}

// DataciteConfig holds the credentials and endpoint of one DataCite environment.
type DataciteConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"` // repository ID, e.g. ORG.REPO
	Password string `mapstructure:"password"`
	Prefix   string `mapstructure:"prefix"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds
}

// Validate checks the fields needed to build a client.
func (d DataciteConfig) Validate() error {
	if d.URL == "" {
		return fmt.Errorf("url is required")
	}
	if d.Username == "" {
		return fmt.Errorf("username is required")
	}
	if d.Password == "" {
		return fmt.Errorf("password is required")
	}
	if d.Prefix == "" {
		return fmt.Errorf("prefix is required")
	}
	if !strings.HasPrefix(d.Prefix, "10.") || strings.Contains(d.Prefix, "/") {
		return fmt.Errorf("prefix %q is not a DOI prefix", d.Prefix)
	}
	if d.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

type AllocatorConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
}

// LedgerConfig configures where allocated identifiers are reserved. An empty
// redis address keeps reservations in process memory.
type LedgerConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
	TTL       int    `mapstructure:"ttl"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// NotificationConfig holds settings for the batch summary notification.
// Each channel is used only when its target is set.
type NotificationConfig struct {
	SNS SNSConfig `mapstructure:"sns"`
	SES SESConfig `mapstructure:"ses"`
}

type SNSConfig struct {
	Region   string `mapstructure:"region"`
	TopicARN string `mapstructure:"topic_arn"`
}

type SESConfig struct {
	Region string   `mapstructure:"region"`
	From   string   `mapstructure:"from"`
	To     []string `mapstructure:"to"`
}

// Settings returns the validated DataCite settings for the live or test system.
func (c *Config) Settings(live bool) (DataciteConfig, error) {
	name, settings := "datacite_test", c.DataciteTest
	if live {
		name, settings = "datacite_live", c.DataciteLive
	}
	if err := settings.Validate(); err != nil {
		return DataciteConfig{}, fmt.Errorf("%s: %w", name, err)
	}
	return settings, nil
}
