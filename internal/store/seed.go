package store

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed seed/tasks.json
var seedFS embed.FS

const seedTasksPath = "seed/tasks.json"

// SeedTaskPaths lists the files checked, in order, before the embedded seed.
func SeedTaskPaths(dir string) []string {
	var out []string
	if dir != "" {
		out = append(out, filepath.Join(dir, "data", "tasks.json"))
	}
	return append(out, filepath.Join("data", "tasks.json"))
}

// LoadSeedTasks decodes the static mock task list into out (a pointer to a slice).
// The first readable file from SeedTaskPaths wins; otherwise the embedded seed is used.
func LoadSeedTasks(dir string, out any) error {
	for _, p := range SeedTaskPaths(dir) {
		b, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		if err := json.Unmarshal(b, out); err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		return nil
	}
	b, err := seedFS.ReadFile(seedTasksPath)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
