package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewDefault(t *testing.T) {
	t.Parallel()

	cfg := NewDefault()
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultAdminPort, cfg.Admin.Port)
	assert.Equal(t, DefaultFilesPath, cfg.Files.Path)
	assert.Equal(t, DefaultDebounce, cfg.Files.Debounce)
	assert.True(t, cfg.Files.Watch)
	require.NotNil(t, cfg.Server.CORS)
	assert.True(t, cfg.Server.CORS.Enabled)
	assert.Equal(t, SourceDefault, cfg.Source("server.port"))
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "mocks.config.yaml", `
server:
  port: 8080
  cors:
    enabled: false
mock:
  collections:
    selected: errors
  routes:
    delay: 250
files:
  watch: false
  debounce: 500ms
`)

	cfg, err := Load(dir, "", env(nil))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DefaultHost, cfg.Server.Host, "keys absent from the file keep their default")
	assert.False(t, cfg.Server.CORS.Enabled)
	assert.Equal(t, []string{"*"}, cfg.Server.CORS.AllowOrigins)
	assert.Equal(t, "errors", cfg.Mock.Collections.Selected)
	assert.Equal(t, 250, cfg.Mock.Routes.Delay)
	assert.False(t, cfg.Files.Watch)
	assert.Equal(t, 500*time.Millisecond, cfg.Files.Debounce)

	assert.Equal(t, SourceFile, cfg.Source("server.port"))
	assert.Equal(t, SourceFile, cfg.Source("files.watch"))
	assert.Equal(t, SourceDefault, cfg.Source("server.host"))
}

func TestLoad_Precedence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	explicit := writeConfig(t, dir, "custom.yaml", "server:\n  port: 9000\nadmin:\n  port: 9001\n")
	writeConfig(t, dir, "mocks.config.yml", "server:\n  port: 7000\n")

	cfg, err := Load(dir, "", env(map[string]string{EnvPort: "7777"}))
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Server.Port, "environment overrides the file")
	assert.Equal(t, SourceEnv, cfg.Source("server.port"))

	cfg, err = Load(dir, "", env(map[string]string{EnvConfig: explicit}))
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port, "MOCKS_CONFIG replaces the local file")
	assert.Equal(t, 9001, cfg.Admin.Port)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	unknown := writeConfig(t, dir, "unknown.yaml", "server:\n  prot: 8080\n")
	_, err := Load(dir, unknown, env(nil))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, unknown, cfgErr.Path)
	assert.Equal(t, 2, cfgErr.Line)

	broken := writeConfig(t, dir, "broken.yaml", "server: [unclosed")
	_, err = Load(dir, broken, env(nil))
	assert.ErrorAs(t, err, &cfgErr)

	_, err = Load(dir, filepath.Join(dir, "missing.yaml"), env(nil))
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := writeConfig(t, dir, "empty.yaml", "")
	cfg, err := Load(dir, empty, env(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	cfg := NewDefault()
	require.NoError(t, ApplyEnv(cfg, env(map[string]string{
		EnvHost:           "127.0.0.1",
		EnvAdminEnabled:   "false",
		EnvCollection:     "base",
		EnvDelay:          "100",
		EnvFilesPath:      "fixtures",
		EnvFilesDebounce:  "1s",
		EnvOpenAPIEnabled: "0",
		EnvLogLevel:       "debug",
		EnvCORSEnabled:    "false",
	})))

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.False(t, cfg.Admin.Enabled)
	assert.Equal(t, "base", cfg.Mock.Collections.Selected)
	assert.Equal(t, 100, cfg.Mock.Routes.Delay)
	assert.Equal(t, "fixtures", cfg.Files.Path)
	assert.Equal(t, time.Second, cfg.Files.Debounce)
	assert.False(t, cfg.OpenAPI.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Server.CORS.Enabled)
	assert.Equal(t, SourceEnv, cfg.Source("mock.routes.delay"))

	err := ApplyEnv(NewDefault(), env(map[string]string{
		EnvPort:       "eighty",
		EnvFilesWatch: "maybe",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvPort)
	assert.Contains(t, err.Error(), EnvFilesWatch)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port 70000 is out of range"},
		{"admin port negative", func(c *Config) { c.Admin.Port = -1 }, "admin.port -1 is out of range"},
		{"admin port ignored when disabled", func(c *Config) { c.Admin.Enabled = false; c.Admin.Port = -1 }, ""},
		{"same ports", func(c *Config) { c.Admin.Port = c.Server.Port }, "conflicts with server.port"},
		{"read timeout too high", func(c *Config) { c.Server.ReadTimeout = 9999 }, "server.readTimeout 9999 is out of range"},
		{"negative delay", func(c *Config) { c.Mock.Routes.Delay = -5 }, "mock.routes.delay -5"},
		{"delay too long", func(c *Config) { c.Mock.Routes.Delay = 86400001 }, "mock.routes.delay 86400001 is out of range"},
		{"empty files path", func(c *Config) { c.Files.Path = " " }, "files.path is required"},
		{"files path ignored when disabled", func(c *Config) { c.Files.Enabled = false; c.Files.Path = "" }, ""},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, `log.level: unknown log level "verbose"`},
		{"silent log level", func(c *Config) { c.Log.Level = "silent" }, ""},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, `log.format: unknown log format "xml"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewDefault()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
