// Copyright © 2025 jackelyj <dreamerlyj@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//

// Package config loads the pulse configuration from pulse.yaml and
// PULSE_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DatabaseConfig holds connection settings for the relational store.
type DatabaseConfig struct {
	Username string `json:"username" yaml:"username" mapstructure:"username" validate:"required"`
	Password string `json:"password" yaml:"password" mapstructure:"password"`
	Host     string `json:"host" yaml:"host" mapstructure:"host" validate:"required"`
	Port     string `json:"port" yaml:"port" mapstructure:"port" validate:"required"`
	DBName   string `json:"dbname" yaml:"dbname" mapstructure:"dbname" validate:"required"`
}

// RedisConfig holds connection settings for the cache store. The cache store
// is optional: an empty URL means it is not configured for this deployment.
type RedisConfig struct {
	URL      string `json:"url" yaml:"url" mapstructure:"url"`
	Required bool   `json:"required" yaml:"required" mapstructure:"required"`
}

// ClickHouseConfig holds connection settings for the analytics store, reached
// over its HTTP interface. An empty host means it is not configured.
type ClickHouseConfig struct {
	Host     string `json:"host" yaml:"host" mapstructure:"host"`
	Port     string `json:"port" yaml:"port" mapstructure:"port"`
	User     string `json:"user" yaml:"user" mapstructure:"user"`
	Password string `json:"password" yaml:"password" mapstructure:"password"`
	Secure   bool   `json:"secure" yaml:"secure" mapstructure:"secure"`
	Required bool   `json:"required" yaml:"required" mapstructure:"required"`
}

// HealthConfig tunes the health check engine itself.
type HealthConfig struct {
	// CacheTTL is how long a probe result stays valid. Default 30s.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// Config is the root pulse configuration.
type Config struct {
	Environment string           `json:"environment" yaml:"environment" mapstructure:"environment"`
	Database    DatabaseConfig   `json:"database" yaml:"database" mapstructure:"database" validate:"required"`
	Redis       RedisConfig      `json:"redis" yaml:"redis" mapstructure:"redis"`
	ClickHouse  ClickHouseConfig `json:"clickhouse" yaml:"clickhouse" mapstructure:"clickhouse"`
	Health      HealthConfig     `json:"health" yaml:"health" mapstructure:"health"`
}

const (
	// DefaultCacheTTL is the default validity window for cached probe results.
	DefaultCacheTTL = 30 * time.Second

	defaultEnvironment    = "development"
	defaultClickHousePort = "8123"
)

// Load reads pulse.yaml from the given search paths (defaulting to the
// working directory) with PULSE_* environment variables taking precedence,
// and returns a validated configuration.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("pulse")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("PULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees keys viper knows about, so bind every key
	// explicitly for environment-only deployments.
	for _, key := range []string{
		"environment",
		"database.username", "database.password", "database.host",
		"database.port", "database.dbname",
		"redis.url", "redis.required",
		"clickhouse.host", "clickhouse.port", "clickhouse.user",
		"clickhouse.password", "clickhouse.secure", "clickhouse.required",
		"health.cache_ttl",
	} {
		_ = v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Environment-only configuration is allowed; a malformed file is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", defaultEnvironment)
	v.SetDefault("database.port", "3306")
	v.SetDefault("clickhouse.port", defaultClickHousePort)
	v.SetDefault("health.cache_ttl", DefaultCacheTTL)
}

// Validate checks structural constraints on the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.ClickHouse.Host != "" && c.ClickHouse.Port == "" {
		return fmt.Errorf("invalid config: clickhouse.port required when clickhouse.host is set")
	}
	if c.Health.CacheTTL <= 0 {
		c.Health.CacheTTL = DefaultCacheTTL
	}
	return nil
}

// ClickHouseConfigured reports whether the analytics store has connection
// settings for this deployment.
func (c *Config) ClickHouseConfigured() bool {
	return c.ClickHouse.Host != ""
}

// RedisConfigured reports whether the cache store has connection settings
// for this deployment.
func (c *Config) RedisConfigured() bool {
	return c.Redis.URL != ""
}
