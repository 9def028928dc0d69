package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mocks-server/main/pkg/mock"
)

// Common errors for definition file loading.
var (
	ErrFileNotFound     = errors.New("definitions file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("definitions file is empty")
	ErrNotAnArray       = errors.New("definitions file must contain an array")
)

// EntryError is a definition that could not be decoded. The rest of the file
// is still usable.
type EntryError struct {
	Index int
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d: %v", e.Index, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// readFile reads a definitions file, mapping the usual failures to the
// package errors.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	case len(bytes.TrimSpace(data)) == 0:
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	return data, nil
}

// splitEntries turns a JSON or YAML array into one JSON document per entry,
// choosing the format by extension.
func splitEntries(path string, data []byte) ([]json.RawMessage, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w in %s: %v", ErrInvalidYAML, path, err)
		}
		if _, ok := doc.([]any); !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotAnArray, path)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("%w in %s: %v", ErrInvalidYAML, path, err)
		}
		data = converted
	default:
		if !json.Valid(data) {
			return nil, fmt.Errorf("%w in %s", ErrInvalidJSON, path)
		}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotAnArray, path)
	}
	return entries, nil
}

// decodeEntries decodes every entry on its own, so one malformed entry does
// not discard the others.
func decodeEntries[T any](entries []json.RawMessage) ([]T, []*EntryError) {
	result := make([]T, 0, len(entries))
	var errs []*EntryError
	for i, entry := range entries {
		var def T
		if err := json.Unmarshal(entry, &def); err != nil {
			errs = append(errs, &EntryError{Index: i, Err: err})
			continue
		}
		result = append(result, def)
	}
	return result, errs
}

// loadFile reads a definitions file. A non-nil error means the whole file
// was unusable; entry errors only drop their entry.
func loadFile[T any](path string) ([]T, []*EntryError, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, nil, err
	}
	entries, err := splitEntries(path, data)
	if err != nil {
		return nil, nil, err
	}
	defs, errs := decodeEntries[T](entries)
	return defs, errs, nil
}

// LoadRoutesFile reads the route definitions of a file.
func LoadRoutesFile(path string) ([]mock.RouteDefinition, []*EntryError, error) {
	return loadFile[mock.RouteDefinition](path)
}

// LoadCollectionsFile reads the collection definitions of a file.
func LoadCollectionsFile(path string) ([]mock.CollectionDefinition, []*EntryError, error) {
	return loadFile[mock.CollectionDefinition](path)
}
