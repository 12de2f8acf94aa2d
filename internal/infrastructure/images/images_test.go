package images

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert"
)

// 1x1 transparent png
const pixel = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func TestSave(t *testing.T) {
	tests := []struct {
		name   string
		uri    string
		suffix string
	}{
		{"png", "data:image/png;base64," + pixel, ".png"},
		{"jpeg stored as jpg", "data:image/jpeg;base64," + pixel, ".jpg"},
		{"jpg", "data:image/jpg;base64," + pixel, ".jpg"},
		{"webp", "data:image/webp;base64," + pixel, ".webp"},
		{"upper case", "DATA:IMAGE/PNG;BASE64," + pixel, ".png"},
		{"unpadded", "data:image/png;base64," + strings.TrimRight(pixel, "="), ".png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			s := NewStore(root)

			p, err := s.Save(tt.uri)
			assert.NoError(t, err)
			assert.True(t, strings.HasPrefix(p, "/uploads/lunches/"))
			assert.True(t, strings.HasSuffix(p, tt.suffix))

			data, err := os.ReadFile(filepath.Join(root, "lunches", filepath.Base(p)))
			assert.NoError(t, err)
			assert.Equal(t, "\x89PNG", string(data[:4]))
		})
	}
}

func TestSaveUniqueNames(t *testing.T) {
	s := NewStore(t.TempDir())
	a, err := s.Save("data:image/png;base64," + pixel)
	assert.NoError(t, err)
	b, err := s.Save("data:image/png;base64," + pixel)
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSaveRejects(t *testing.T) {
	s := NewStore(t.TempDir())
	for _, uri := range []string{
		"",
		"/uploads/lunches/a.png",
		"data:image/gif;base64," + pixel,
		"data:image/png," + pixel,
		"data:text/plain;base64,aGVsbG8=",
		"data:image/png;base64,",
		"data:image/png;base64,%%%not-base64%%%",
	} {
		_, err := s.Save(uri)
		assert.True(t, errors.Is(err, ErrInvalidImage), uri)
	}

	entries, err := os.ReadDir(s.Dir())
	if err == nil {
		assert.Equal(t, 0, len(entries))
	}
}

func TestIsDataURI(t *testing.T) {
	assert.True(t, IsDataURI("data:image/png;base64,xyz"))
	assert.True(t, IsDataURI("Data:Image/gif;base64,xyz"))
	assert.False(t, IsDataURI("/uploads/lunches/a.png"))
	assert.False(t, IsDataURI("data:"))
	assert.False(t, IsDataURI(""))
}
