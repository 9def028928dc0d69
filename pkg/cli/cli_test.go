package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mocks-server/main/pkg/cliconfig"
	"github.com/mocks-server/main/pkg/config"
	"github.com/mocks-server/main/pkg/logging"
)

// execute runs the root command with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(BuildInfo{Version: "1.0.0", Commit: "abc", BuildDate: "today"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func scaffold(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "mocks")
	created, err := config.Scaffold(dir)
	require.NoError(t, err)
	require.True(t, created)
	return dir
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var v VersionOutput
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "1.0.0", v.Version)
	assert.Equal(t, "abc", v.Commit)
	assert.NotEmpty(t, v.Go)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "mocks v1.0.0 (abc, today)"), out)
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	dir := scaffold(t)

	out, err := execute(t, "validate", "--path", dir, "--json")
	require.NoError(t, err)

	var result ValidateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.Routes)
	assert.Equal(t, 4, result.RouteVariants)
	assert.Equal(t, 2, result.Collections)
	assert.Equal(t, "base", result.Selected)
	assert.Empty(t, result.Alerts)

	out, err = execute(t, "validate", "--path", dir, "--collection", "errors")
	require.NoError(t, err)
	assert.Contains(t, out, "Selected collection: errors")
	assert.Contains(t, out, "No alerts")
}

func TestValidateCommand_Alerts(t *testing.T) {
	t.Parallel()

	dir := scaffold(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "routes", "broken.json"), []byte(`[{`), 0o644))

	out, err := execute(t, "validate", "--path", dir)
	require.ErrorIs(t, err, ErrAlertsFound)
	assert.Contains(t, out, "files:load:routes/broken.json")

	_, err = execute(t, "validate", "--path", filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, config.ErrFileNotFound)
}

func TestValidateCommand_RejectsUnknownArgs(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "validate", "extra")
	assert.Error(t, err)
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestStartApp(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "mocks")

	cfg := cliconfig.NewDefault()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Admin.Port = 0
	cfg.Files.Path = dir
	cfg.Files.Debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := startApp(ctx, cfg, logging.Nop(), "1.0.0")
	require.NoError(t, err)
	defer a.shutdown()

	// The missing folder was scaffolded and is served.
	status, body := get(t, "http://"+a.server.Addr()+"/api/users/1")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"id": 1, "name": "John Doe"}`, body)

	status, body = get(t, "http://"+a.admin.Addr()+"/api/config")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"mock":{"collections":{"selected":"base"},"routes":{"delay":0}}}`, body)

	// Changes in the folder are reloaded.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "routes", "health.json"), []byte(`[
		{"id": "health", "method": "GET", "path": "/health", "variants": [{"id": "ok", "handlerType": "status", "options": {"status": 204}}]}
	]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "collections.json"), []byte(`[
		{"id": "base", "routes": ["health:ok"]}
	]`), 0o644))

	require.Eventually(t, func() bool {
		status, _ := get(t, "http://"+a.server.Addr()+"/health")
		return status == http.StatusNoContent
	}, 5*time.Second, 20*time.Millisecond)
}

func TestReload_RoutesChangesToTheirSource(t *testing.T) {
	t.Parallel()

	dir := scaffold(t)
	cfg := cliconfig.NewDefault()
	cfg.Files.Path = dir

	a, err := newApp(cfg, logging.Nop())
	require.NoError(t, err)
	require.NoError(t, a.load(context.Background()))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "openapi"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "openapi", "health.json"), []byte(`{
		"openapi": "3.0.3",
		"info": {"title": "Health", "version": "1.0.0"},
		"paths": {"/health": {"get": {"operationId": "health", "responses": {"204": {"description": "ok"}}}}}
	}`), 0o644))

	require.NoError(t, a.reload(context.Background(), []string{"openapi/health.json"}))

	var ids []string
	for _, r := range a.mm.PlainRoutes() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"get-users", "get-user", "health"}, ids)
}
