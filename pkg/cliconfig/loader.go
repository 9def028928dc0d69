package cliconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LocalConfigFileNames are the names searched for in the working directory, in order.
var LocalConfigFileNames = []string{"mocks.config.yaml", "mocks.config.yml"}

// Environment variables.
const (
	EnvConfig          = "MOCKS_CONFIG"
	EnvHost            = "MOCKS_HOST"
	EnvPort            = "MOCKS_PORT"
	EnvAdminEnabled    = "MOCKS_ADMIN_ENABLED"
	EnvAdminHost       = "MOCKS_ADMIN_HOST"
	EnvAdminPort       = "MOCKS_ADMIN_PORT"
	EnvCollection      = "MOCKS_COLLECTION"
	EnvDelay           = "MOCKS_DELAY"
	EnvFilesPath       = "MOCKS_FILES_PATH"
	EnvFilesWatch      = "MOCKS_FILES_WATCH"
	EnvOpenAPIEnabled  = "MOCKS_OPENAPI_ENABLED"
	EnvLogLevel        = "MOCKS_LOG_LEVEL"
	EnvLogFormat       = "MOCKS_LOG_FORMAT"
	EnvCORSEnabled     = "MOCKS_CORS_ENABLED"
	EnvFilesDebounce   = "MOCKS_FILES_DEBOUNCE"
	EnvOpenAPICollName = "MOCKS_OPENAPI_COLLECTION"
)

// LookupFunc looks up an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ConfigError represents a configuration file error with location info.
type ConfigError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d, column %d): %s", e.Path, e.Line, e.Column, e.Message)
	}
	return e.Path + ": " + e.Message
}

// FindLocalConfig searches dir for a config file. It returns "" when there is none.
func FindLocalConfig(dir string) string {
	for _, name := range LocalConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadConfigFile reads the YAML file at path over cfg. Keys absent from the
// file keep their current value; unknown keys are errors.
func LoadConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return newConfigError(path, err)
	}
	if node.Kind == 0 {
		// Empty file.
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return newConfigError(path, err)
	}

	markSources(cfg, &node, "")
	return nil
}

// newConfigError extracts the line of a yaml.v3 error when there is one.
func newConfigError(path string, err error) *ConfigError {
	cfgErr := &ConfigError{Path: path, Message: err.Error()}
	msg := err.Error()
	if _, rest, ok := strings.Cut(msg, "line "); ok {
		digits, _, _ := strings.Cut(rest, ":")
		if line, convErr := strconv.Atoi(digits); convErr == nil {
			cfgErr.Line = line
			cfgErr.Column = 1
		}
	}
	return cfgErr
}

// markSources records every leaf key present in node as coming from the file.
func markSources(cfg *Config, node *yaml.Node, prefix string) {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			markSources(cfg, child, prefix)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			if prefix != "" {
				key = prefix + "." + key
			}
			markSources(cfg, node.Content[i+1], key)
		}
	default:
		if prefix != "" {
			cfg.SetSource(prefix, SourceFile)
		}
	}
}

// ApplyEnv applies the MOCKS_* environment variables to cfg.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	var errs []error

	setString := func(env, key string, dst *string) {
		if v, ok := lookup(env); ok && v != "" {
			*dst = v
			cfg.SetSource(key, SourceEnv)
		}
	}
	setInt := func(env, key string, dst *int) {
		if v, ok := lookup(env); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid integer %q", env, v))
				return
			}
			*dst = n
			cfg.SetSource(key, SourceEnv)
		}
	}
	setBool := func(env, key string, dst *bool) {
		if v, ok := lookup(env); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid boolean %q", env, v))
				return
			}
			*dst = b
			cfg.SetSource(key, SourceEnv)
		}
	}
	setDuration := func(env, key string, dst *time.Duration) {
		if v, ok := lookup(env); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid duration %q", env, v))
				return
			}
			*dst = d
			cfg.SetSource(key, SourceEnv)
		}
	}

	setString(EnvHost, "server.host", &cfg.Server.Host)
	setInt(EnvPort, "server.port", &cfg.Server.Port)
	if cfg.Server.CORS != nil {
		setBool(EnvCORSEnabled, "server.cors.enabled", &cfg.Server.CORS.Enabled)
	}
	setBool(EnvAdminEnabled, "admin.enabled", &cfg.Admin.Enabled)
	setString(EnvAdminHost, "admin.host", &cfg.Admin.Host)
	setInt(EnvAdminPort, "admin.port", &cfg.Admin.Port)
	setString(EnvCollection, "mock.collections.selected", &cfg.Mock.Collections.Selected)
	setInt(EnvDelay, "mock.routes.delay", &cfg.Mock.Routes.Delay)
	setString(EnvFilesPath, "files.path", &cfg.Files.Path)
	setBool(EnvFilesWatch, "files.watch", &cfg.Files.Watch)
	setDuration(EnvFilesDebounce, "files.debounce", &cfg.Files.Debounce)
	setBool(EnvOpenAPIEnabled, "openapi.enabled", &cfg.OpenAPI.Enabled)
	setString(EnvOpenAPICollName, "openapi.collection.id", &cfg.OpenAPI.Collection.ID)
	setString(EnvLogLevel, "log.level", &cfg.Log.Level)
	setString(EnvLogFormat, "log.format", &cfg.Log.Format)

	return errors.Join(errs...)
}

// Load builds the configuration from defaults, the config file and the
// environment. An empty path searches dir for a local config file; the
// MOCKS_CONFIG variable overrides both.
func Load(dir, path string, lookup LookupFunc) (*Config, error) {
	cfg := NewDefault()

	if v, ok := lookup(EnvConfig); ok && v != "" && path == "" {
		path = v
	}
	if path == "" {
		path = FindLocalConfig(dir)
	}
	if path != "" {
		if err := LoadConfigFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := ApplyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}
