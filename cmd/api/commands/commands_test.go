package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert"

	"github.com/lunchdesk/core/internal/adapters/repository"
	"github.com/lunchdesk/core/internal/domain/entities"
	"github.com/lunchdesk/core/internal/infrastructure/csvstore"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
)

// writeConfig points every storage path at a fresh temp dir
func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	cfg := fmt.Sprintf(`
storage:
  data_dir: %q
  backup_dir: %q
  uploads_dir: %q
logger:
  level: error
metrics:
  enabled: false
`, dataDir, filepath.Join(dataDir, "backups"), filepath.Join(dataDir, "uploads"))
	path := filepath.Join(dir, "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path, dataDir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func seedLunches(t *testing.T, dataDir string, n int) {
	t.Helper()
	store, err := csvstore.New(csvstore.Config{DataDir: dataDir})
	assert.NoError(t, err)
	assert.NoError(t, repository.InitCollections(store))
	repo := repository.NewLunchRepository(store, logger.NewNop())
	for i := 0; i < n; i++ {
		assert.NoError(t, repo.Create(context.Background(), &entities.Lunch{Title: fmt.Sprintf("Dish %d", i), Price: 10}))
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, out, "LunchDesk dev")
}

func TestExportCommand(t *testing.T) {
	cfgPath, dataDir := writeConfig(t)
	seedLunches(t, dataDir, 1)
	target := filepath.Join(t.TempDir(), "report.xlsx")

	out, err := run(t, "--config", cfgPath, "export", "--out", target)
	assert.NoError(t, err)
	assert.Contains(t, out, target)

	data, err := os.ReadFile(target)
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestBackupListAndVerify(t *testing.T) {
	cfgPath, dataDir := writeConfig(t)
	seedLunches(t, dataDir, 1)

	out, err := run(t, "--config", cfgPath, "backup", "list", "lunches")
	assert.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, 2, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))

	name := strings.Fields(lines[1])[0]
	out, err = run(t, "--config", cfgPath, "backup", "verify", "lunches", name)
	assert.NoError(t, err)
	assert.Contains(t, out, "1 row(s) OK")

	out, err = run(t, "--config", cfgPath, "backup", "restore", "lunches", name)
	assert.NoError(t, err)
	assert.Contains(t, out, "Restored lunches")
}

func TestBackupPrune(t *testing.T) {
	cfgPath, dataDir := writeConfig(t)
	seedLunches(t, dataDir, 1)

	_, err := run(t, "--config", cfgPath, "backup", "prune", "lunches", "--keep", "0")
	assert.Error(t, err)

	out, err := run(t, "--config", cfgPath, "backup", "prune", "lunches", "--keep", "1")
	assert.NoError(t, err)
	assert.Contains(t, out, "0 snapshot(s) removed")
}

func TestBackupUnknownCollection(t *testing.T) {
	cfgPath, _ := writeConfig(t)

	_, err := run(t, "--config", cfgPath, "backup", "list", "users")
	assert.Error(t, err)
}
