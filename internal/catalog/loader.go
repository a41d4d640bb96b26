package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

// LoadDir registers every workflow definition found in dir (*.yaml, *.yml).
// It returns the number of definitions registered. A file that fails to
// parse or validate aborts loading.
func (c *Catalog) LoadDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read workflow dir: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return count, fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		var def orchestrator.WorkflowDefinition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return count, fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		if err := c.Register(ctx, &def); err != nil {
			return count, fmt.Errorf("register %s: %w", entry.Name(), err)
		}
		count++
	}
	return count, nil
}
