package cliconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mocks-server/main/pkg/logging"
	"github.com/mocks-server/main/pkg/mock"
)

const maxTimeout = 3600

// Validate checks the configuration for invalid values. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	checkPort := func(name string, port int) {
		if port < 0 || port > 65535 {
			errs = append(errs, fmt.Errorf("%s %d is out of range (0-65535)", name, port))
		}
	}
	checkTimeout := func(name string, seconds int) {
		if seconds < 0 || seconds > maxTimeout {
			errs = append(errs, fmt.Errorf("%s %d is out of range (0-%d)", name, seconds, maxTimeout))
		}
	}

	checkPort("server.port", c.Server.Port)
	checkTimeout("server.readTimeout", c.Server.ReadTimeout)
	checkTimeout("server.writeTimeout", c.Server.WriteTimeout)

	if c.Admin.Enabled {
		checkPort("admin.port", c.Admin.Port)
		if c.Admin.Port != 0 && c.Admin.Port == c.Server.Port {
			errs = append(errs, fmt.Errorf("admin.port %d conflicts with server.port", c.Admin.Port))
		}
	}

	if d := c.Mock.Routes.Delay; d < 0 || d > mock.MaxDelayMs {
		errs = append(errs, fmt.Errorf("mock.routes.delay %d is out of range (0-%d)", d, mock.MaxDelayMs))
	}

	if c.Files.Enabled && strings.TrimSpace(c.Files.Path) == "" {
		errs = append(errs, errors.New("files.path is required when files are enabled"))
	}
	if c.Files.Debounce < 0 {
		errs = append(errs, fmt.Errorf("files.debounce %s must be zero or greater", c.Files.Debounce))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, fmt.Errorf("log.format: %w", err))
	}

	return errors.Join(errs...)
}
