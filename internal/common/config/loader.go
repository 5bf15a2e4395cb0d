// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPath is the config file used when none is given on the command line.
const DefaultPath = "config.json"

// Load reads the configuration file at path, expands ${VAR} placeholders and
// applies environment overrides and defaults. Environment selection and its
// validation happen in Settings, so a file may carry only one environment.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	loadEnvFile(filepath.Dir(path))

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configType(path))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// loadEnvFile loads .env next to the config file or in the working directory.
// Variables already present in the environment win.
func loadEnvFile(configDir string) {
	possiblePaths := []string{".env"}
	if configDir != "" && configDir != "." {
		possiblePaths = append([]string{filepath.Join(configDir, ".env")}, possiblePaths...)
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills credentials left empty in the file from the environment.
func overrideEmptyConfig(cfg *Config) {
	if cfg.DataciteTest.Password == "" {
		if val := os.Getenv("DATACITE_TEST_PASSWORD"); val != "" {
			cfg.DataciteTest.Password = val
		}
	}
	if cfg.DataciteLive.Password == "" {
		if val := os.Getenv("DATACITE_LIVE_PASSWORD"); val != "" {
			cfg.DataciteLive.Password = val
		}
	}
	if cfg.Ledger.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Ledger.Redis.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	for _, d := range []*DataciteConfig{&cfg.DataciteTest, &cfg.DataciteLive} {
		if d.Timeout == 0 {
			d.Timeout = 30000
		}
		d.URL = strings.TrimRight(d.URL, "/")
	}

	if cfg.Allocator.MaxAttempts == 0 {
		cfg.Allocator.MaxAttempts = 10
	}

	if cfg.Ledger.Redis.TTL == 0 {
		cfg.Ledger.Redis.TTL = int((24 * time.Hour).Milliseconds())
	}
	if cfg.Ledger.Redis.KeyPrefix == "" {
		cfg.Ledger.Redis.KeyPrefix = "bulkdoi:reserved:"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}

// validateConfig validates settings shared by both environments.
func validateConfig(cfg *Config) error {
	if cfg.Allocator.MaxAttempts < 1 {
		return fmt.Errorf("allocator.max_attempts must be at least 1")
	}
	if cfg.Ledger.Redis.TTL < 0 {
		return fmt.Errorf("ledger.redis.ttl must not be negative")
	}
	if cfg.Notifications.SNS.TopicARN != "" && cfg.Notifications.SNS.Region == "" {
		return fmt.Errorf("notifications.sns.region is required when topic_arn is set")
	}
	if ses := cfg.Notifications.SES; ses.From != "" {
		if ses.Region == "" {
			return fmt.Errorf("notifications.ses.region is required when from is set")
		}
		if len(ses.To) == 0 {
			return fmt.Errorf("notifications.ses.to is required when from is set")
		}
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
