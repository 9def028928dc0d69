// Package cliconfig provides the configuration of the mocks CLI.
package cliconfig

import (
	"time"

	"github.com/mocks-server/main/pkg/engine"
)

// Config represents the complete configuration of the mocks server.
// Values can come from several sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables (MOCKS_*)
// 3. Config file (mocks.config.yaml in the current directory, or --config)
// 4. Default values (lowest priority)
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Admin   AdminConfig   `yaml:"admin" json:"admin"`
	Mock    MockConfig    `yaml:"mock" json:"mock"`
	Files   FilesConfig   `yaml:"files" json:"files"`
	OpenAPI OpenAPIConfig `yaml:"openapi" json:"openapi"`
	Log     LogConfig     `yaml:"log" json:"log"`

	// Sources tracks where each value came from, by dotted key.
	Sources map[string]string `yaml:"-" json:"-"`
}

// ServerConfig configures the mock HTTP server.
type ServerConfig struct {
	Host         string             `yaml:"host" json:"host"`
	Port         int                `yaml:"port" json:"port"`
	ReadTimeout  int                `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout int                `yaml:"writeTimeout" json:"writeTimeout"`
	CORS         *engine.CORSConfig `yaml:"cors,omitempty" json:"cors,omitempty"`
}

// AdminConfig configures the admin REST API.
type AdminConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`
}

// MockConfig holds the options of the mock engine.
type MockConfig struct {
	Collections CollectionsConfig `yaml:"collections" json:"collections"`
	Routes      RoutesConfig      `yaml:"routes" json:"routes"`
}

// CollectionsConfig holds the collection options.
type CollectionsConfig struct {
	// Selected is the collection served on start. Empty selects the first one.
	Selected string `yaml:"selected" json:"selected"`
}

// RoutesConfig holds the route options.
type RoutesConfig struct {
	// Delay is the global delay in milliseconds.
	Delay int `yaml:"delay" json:"delay"`
}

// FilesConfig configures the files loader.
type FilesConfig struct {
	Enabled  bool          `yaml:"enabled" json:"enabled"`
	Path     string        `yaml:"path" json:"path"`
	Watch    bool          `yaml:"watch" json:"watch"`
	Debounce time.Duration `yaml:"debounce" json:"debounce"`
}

// OpenAPIConfig configures the OpenAPI definition source.
type OpenAPIConfig struct {
	Enabled    bool                    `yaml:"enabled" json:"enabled"`
	Collection OpenAPICollectionConfig `yaml:"collection" json:"collection"`
}

// OpenAPICollectionConfig configures the collection generated from OpenAPI documents.
type OpenAPICollectionConfig struct {
	ID   string `yaml:"id" json:"id"`
	From string `yaml:"from" json:"from"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Config sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)
