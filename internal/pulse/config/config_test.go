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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return dir
}

const validConfig = `
environment: production
database:
  username: pulse
  password: secret
  host: db.internal
  port: "3306"
  dbname: pulse
redis:
  url: redis://cache.internal:6379/0
  required: true
clickhouse:
  host: analytics.internal
  port: "8123"
  user: pulse
  password: secret
  secure: true
  required: false
health:
  cache_ttl: 45s
`

func TestLoad_ValidConfig(t *testing.T) {
	dir := writeConfig(t, validConfig)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Equal(t, "redis://cache.internal:6379/0", cfg.Redis.URL)
	assert.True(t, cfg.Redis.Required)
	assert.Equal(t, "analytics.internal", cfg.ClickHouse.Host)
	assert.True(t, cfg.ClickHouse.Secure)
	assert.False(t, cfg.ClickHouse.Required)
	assert.Equal(t, 45*time.Second, cfg.Health.CacheTTL)
}

func TestLoad_Defaults(t *testing.T) {
	dir := writeConfig(t, `
database:
  username: pulse
  host: localhost
  dbname: pulse
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Equal(t, "8123", cfg.ClickHouse.Port)
	assert.Equal(t, DefaultCacheTTL, cfg.Health.CacheTTL)
	assert.False(t, cfg.RedisConfigured())
	assert.False(t, cfg.ClickHouseConfigured())
}

func TestLoad_MissingRequiredDatabaseFields(t *testing.T) {
	dir := writeConfig(t, `
database:
  username: pulse
`)

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	dir := writeConfig(t, validConfig)
	t.Setenv("PULSE_ENVIRONMENT", "staging")
	t.Setenv("PULSE_DATABASE_HOST", "db.staging.internal")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "db.staging.internal", cfg.Database.Host)
}

func TestLoad_EnvOnlyDeployment(t *testing.T) {
	t.Setenv("PULSE_DATABASE_USERNAME", "pulse")
	t.Setenv("PULSE_DATABASE_HOST", "localhost")
	t.Setenv("PULSE_DATABASE_DBNAME", "pulse")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Database.Host)
}

func TestConfigured_Helpers(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.RedisConfigured())
	assert.False(t, cfg.ClickHouseConfigured())

	cfg.Redis.URL = "redis://localhost:6379"
	cfg.ClickHouse.Host = "localhost"
	assert.True(t, cfg.RedisConfigured())
	assert.True(t, cfg.ClickHouseConfigured())
}

func TestValidate_ZeroTTLFallsBackToDefault(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Username = "pulse"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = "3306"
	cfg.Database.DBName = "pulse"

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultCacheTTL, cfg.Health.CacheTTL)
}
