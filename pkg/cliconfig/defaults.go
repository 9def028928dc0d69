package cliconfig

import (
	"time"

	"github.com/mocks-server/main/pkg/engine"
	"github.com/mocks-server/main/pkg/openapi"
)

// Default values.
const (
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 3100
	DefaultAdminHost    = "127.0.0.1"
	DefaultAdminPort    = 3110
	DefaultReadTimeout  = 30
	DefaultWriteTimeout = 30
	DefaultCollection   = "base"
	DefaultFilesPath    = "mocks"
	DefaultWatch        = true
	DefaultDebounce     = 200 * time.Millisecond
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			CORS:         engine.DefaultCORSConfig(),
		},
		Admin: AdminConfig{
			Enabled: true,
			Host:    DefaultAdminHost,
			Port:    DefaultAdminPort,
		},
		Mock: MockConfig{
			Collections: CollectionsConfig{Selected: DefaultCollection},
		},
		Files: FilesConfig{
			Enabled:  true,
			Path:     DefaultFilesPath,
			Watch:    DefaultWatch,
			Debounce: DefaultDebounce,
		},
		OpenAPI: OpenAPIConfig{
			Enabled:    true,
			Collection: OpenAPICollectionConfig{ID: openapi.DefaultCollectionID},
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Sources: make(map[string]string),
	}
}

// Source returns where the value of a dotted key came from.
func (c *Config) Source(key string) string {
	if s, ok := c.Sources[key]; ok {
		return s
	}
	return SourceDefault
}

// SetSource records where the value of a dotted key came from.
func (c *Config) SetSource(key, source string) {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[key] = source
}
