// Package logging builds the slog loggers used across the mocks server.
//
// The mock manager, the loaders, the watcher and the admin API each log
// through a child logger tagged with their component name:
//
//	level, _ := logging.ParseLevel("debug")
//	log := logging.New(logging.Config{Level: level, Format: logging.FormatJSON})
//	mm := engine.NewMockManager(engine.WithLogger(logging.Component(log, "mock")))
//
// The "silent" level turns a logger into Nop.
package logging
