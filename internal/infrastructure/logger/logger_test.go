package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert"
	"github.com/lunchdesk/core/internal/infrastructure/config"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud", Format: "json", Output: "stdout"})
	assert.Error(t, err)
}

func TestNewStdout(t *testing.T) {
	l, err := New(config.LoggerConfig{Level: "info", Format: "text", Output: "stdout"})
	assert.NoError(t, err)
	assert.NotNil(t, l.SugaredLogger)
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(config.LoggerConfig{
		Level:      "debug",
		Format:     "json",
		Output:     "file",
		Filename:   path,
		MaxSizeMB:  1,
		MaxBackups: 1,
	})
	assert.NoError(t, err)

	l.WithComponent("store").LogStoreWrite("orders", "append", "", errors.New("disk full"))
	l.LogStoreWrite("orders", "append", "orders-20240301-120000.csv", nil)
	_ = l.Close()

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, `"component":"store"`))
	assert.True(t, strings.Contains(out, "disk full"))
	assert.True(t, strings.Contains(out, "orders-20240301-120000.csv"))
}

func TestNopDiscards(t *testing.T) {
	l := NewNop()
	l.WithError(errors.New("boom")).Errorw("ignored")
	l.LogHTTPRequest("GET", "/api/test", "go", "127.0.0.1", 200, 1.5)
	assert.NoError(t, l.Close())
}
