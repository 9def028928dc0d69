package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mocks-server/main/pkg/httputil"
	"github.com/mocks-server/main/pkg/logging"
)

// fileResponse reads its file on every request so edits are served without reload.
type fileResponse struct {
	status  int
	headers map[string]string
	path    string
	log     *slog.Logger
}

func newFileHandler(options json.RawMessage, env Env) (Handler, error) {
	var opts struct {
		responseOptions
		Path string `json:"path"`
	}
	if err := decodeOptions(options, &opts); err != nil {
		return nil, err
	}
	if opts.Status == 0 {
		return nil, errors.New("status is required")
	}
	path, err := resolveFilePath(env.FilesPath, opts.Path)
	if err != nil {
		return nil, err
	}
	log := env.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &fileResponse{
		status:  opts.Status,
		headers: opts.Headers,
		path:    path,
		log:     log,
	}, nil
}

// resolveFilePath joins relative paths to base. Absolute paths are kept; relative
// paths may not climb out of base.
func resolveFilePath(base, path string) (string, error) {
	if path == "" {
		return "", errors.New("path is required")
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) {
		return clean, nil
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrUnsafePath
	}
	return filepath.Join(base, clean), nil
}

func (f *fileResponse) Preview() any {
	return Preview{Status: f.status}
}

func (f *fileResponse) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		f.log.Error("failed to read response file", "file", f.path, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, httputil.CodeFile, "failed to read response file")
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(f.path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	httputil.WriteBody(w, r, f.status, f.headers, contentType, data)
}
