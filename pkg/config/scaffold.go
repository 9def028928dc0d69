package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const scaffoldRoutes = `[
  {
    "id": "get-users",
    "method": "GET",
    "path": "/api/users",
    "variants": [
      {
        "id": "success",
        "handlerType": "json",
        "options": {
          "status": 200,
          "body": [
            {"id": 1, "name": "John Doe"},
            {"id": 2, "name": "Jane Doe"}
          ]
        }
      },
      {
        "id": "error",
        "handlerType": "json",
        "options": {
          "status": 500,
          "body": {"message": "Internal server error"}
        }
      }
    ]
  },
  {
    "id": "get-user",
    "method": "GET",
    "path": "/api/users/:id",
    "variants": [
      {
        "id": "success",
        "handlerType": "json",
        "options": {
          "status": 200,
          "body": {"id": 1, "name": "John Doe"}
        }
      },
      {
        "id": "not-found",
        "handlerType": "status",
        "options": {"status": 404}
      }
    ]
  }
]
`

const scaffoldCollections = `[
  {
    "id": "base",
    "routes": ["get-users:success", "get-user:success"]
  },
  {
    "id": "errors",
    "from": "base",
    "routes": ["get-users:error", "get-user:not-found"]
  }
]
`

// Scaffold creates an example mocks folder at path when nothing exists there.
// It reports whether the folder was created.
func Scaffold(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to access mocks folder: %w", err)
	}

	routesDir := filepath.Join(path, RoutesDir)
	if err := os.MkdirAll(routesDir, 0o755); err != nil {
		return false, fmt.Errorf("failed to create directory %s: %w", routesDir, err)
	}
	files := map[string]string{
		filepath.Join(routesDir, "users.json"):  scaffoldRoutes,
		filepath.Join(path, "collections.json"): scaffoldCollections,
	}
	for file, content := range files {
		if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
			return false, fmt.Errorf("failed to write %s: %w", file, err)
		}
	}
	return true, nil
}
