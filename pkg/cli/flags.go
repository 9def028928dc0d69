package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mocks-server/main/pkg/cliconfig"
)

// configFlags are the flags overriding configuration values.
type configFlags struct {
	configFile string

	host      string
	port      int
	adminHost string
	adminPort int
	noAdmin   bool
	noCORS    bool

	path       string
	collection string
	delay      int
	noWatch    bool
	noOpenAPI  bool

	logLevel  string
	logFormat string
}

// register adds the flags to cmd. Server flags only make sense for commands
// that serve requests.
func (f *configFlags) register(cmd *cobra.Command, serverFlags bool) {
	fs := cmd.Flags()
	fs.StringVarP(&f.configFile, "config", "c", "", "Path to the config file (default: mocks.config.yaml)")
	fs.StringVar(&f.path, "path", cliconfig.DefaultFilesPath, "Path to the mocks folder")
	fs.StringVar(&f.collection, "collection", cliconfig.DefaultCollection, "Collection to select")
	fs.BoolVar(&f.noOpenAPI, "no-openapi", false, "Do not load OpenAPI documents")
	fs.StringVar(&f.logLevel, "log-level", cliconfig.DefaultLogLevel, "Log level (debug, info, warn, error, silent)")
	fs.StringVar(&f.logFormat, "log-format", cliconfig.DefaultLogFormat, "Log format (text, json)")

	if !serverFlags {
		return
	}
	fs.StringVar(&f.host, "host", cliconfig.DefaultHost, "Mock server host")
	fs.IntVarP(&f.port, "port", "p", cliconfig.DefaultPort, "Mock server port")
	fs.StringVar(&f.adminHost, "admin-host", cliconfig.DefaultAdminHost, "Admin API host")
	fs.IntVarP(&f.adminPort, "admin-port", "a", cliconfig.DefaultAdminPort, "Admin API port")
	fs.BoolVar(&f.noAdmin, "no-admin", false, "Disable the admin API")
	fs.BoolVar(&f.noCORS, "no-cors", false, "Disable CORS headers on mock responses")
	fs.IntVar(&f.delay, "delay", 0, "Global delay in milliseconds")
	fs.BoolVar(&f.noWatch, "no-watch", false, "Do not reload the mocks folder on changes")
}

// load builds the configuration and applies the flags set on cmd.
func (f *configFlags) load(cmd *cobra.Command) (*cliconfig.Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := cliconfig.Load(dir, f.configFile, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	f.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply copies the flags explicitly set on cmd into cfg.
func (f *configFlags) apply(cmd *cobra.Command, cfg *cliconfig.Config) {
	changed := func(flag, key string) bool {
		if !cmd.Flags().Changed(flag) {
			return false
		}
		cfg.SetSource(key, cliconfig.SourceFlag)
		return true
	}

	if changed("host", "server.host") {
		cfg.Server.Host = f.host
	}
	if changed("port", "server.port") {
		cfg.Server.Port = f.port
	}
	if changed("no-cors", "server.cors.enabled") && cfg.Server.CORS != nil {
		cfg.Server.CORS.Enabled = !f.noCORS
	}
	if changed("admin-host", "admin.host") {
		cfg.Admin.Host = f.adminHost
	}
	if changed("admin-port", "admin.port") {
		cfg.Admin.Port = f.adminPort
	}
	if changed("no-admin", "admin.enabled") {
		cfg.Admin.Enabled = !f.noAdmin
	}
	if changed("path", "files.path") {
		cfg.Files.Path = f.path
	}
	if changed("collection", "mock.collections.selected") {
		cfg.Mock.Collections.Selected = f.collection
	}
	if changed("delay", "mock.routes.delay") {
		cfg.Mock.Routes.Delay = f.delay
	}
	if changed("no-watch", "files.watch") {
		cfg.Files.Watch = !f.noWatch
	}
	if changed("no-openapi", "openapi.enabled") {
		cfg.OpenAPI.Enabled = !f.noOpenAPI
	}
	if changed("log-level", "log.level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format", "log.format") {
		cfg.Log.Format = f.logFormat
	}
}
