package alerts

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mocks-server/main/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlerts_SetReplacesByID(t *testing.T) {
	root := New("mock", nil)
	root.Set("selected", "first", nil)
	root.Set("other", "other", nil)
	root.Set("selected", "second", errors.New("boom"))

	items := root.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "selected", items[0].ID)
	assert.Equal(t, "second", items[0].Message)
	assert.EqualError(t, items[0].Error, "boom")
}

func TestAlerts_FlatBuildsContext(t *testing.T) {
	root := New("mock", nil)
	load := root.Collection("routes").Collection("load")
	load.Collection("get-user").Set("validation", "Route is invalid", errors.New("path is required"))
	root.Collection("collections").Set("empty", "No collections found", nil)

	flat := root.Flat()
	require.Len(t, flat, 2)
	assert.Equal(t, "mock:routes:load:get-user:validation", flat[0].ID)
	assert.Equal(t, "path is required", flat[0].Error)
	assert.Equal(t, "mock:collections:empty", flat[1].ID)
	assert.Empty(t, flat[1].Error)
}

func TestAlerts_CollectionIsReused(t *testing.T) {
	root := New("mock", nil)
	a := root.Collection("routes")
	b := root.Collection("routes")
	assert.Same(t, a, b)
}

func TestAlerts_CleanIsRecursive(t *testing.T) {
	root := New("mock", nil)
	routes := root.Collection("routes")
	routes.Set("a", "a", nil)
	routes.Collection("load").Set("b", "b", nil)
	root.Collection("collections").Set("c", "c", nil)

	routes.Clean()

	flat := root.Flat()
	require.Len(t, flat, 1)
	assert.Equal(t, "mock:collections:c", flat[0].ID)
}

func TestAlerts_Remove(t *testing.T) {
	root := New("mock", nil)
	root.Set("a", "a", nil)
	root.Remove("a")
	root.Remove("missing")
	assert.Empty(t, root.Flat())
}

func TestAlerts_LogsWarnings(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf})
	root := New("mock", log)

	root.Collection("collections").Set("selected", "Collection not found", nil)
	assert.Contains(t, buf.String(), "alert=mock:collections:selected")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestAlerts_AnonymousRoot(t *testing.T) {
	root := New("", nil)
	root.Collection("files").Collection("load").Set("routes/users.yaml", "Error loading file", nil)

	flat := root.Flat()
	require.Len(t, flat, 1)
	assert.Equal(t, "files:load:routes/users.yaml", flat[0].ID)
}
