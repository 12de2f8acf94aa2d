package images

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidImage is returned for anything that is not a base64 png, jpeg or
// webp data URI
var ErrInvalidImage = errors.New("invalid image format")

// PublicPrefix is the URL path uploaded lunch images are served under
const PublicPrefix = "/uploads/lunches"

var dataURIPattern = regexp.MustCompile(`(?is)^data:(image/(png|jpg|jpeg|webp));base64,(.+)$`)

// IsDataURI reports whether s looks like an inline image rather than a path
func IsDataURI(s string) bool {
	return len(s) >= len("data:image/") && strings.EqualFold(s[:len("data:image/")], "data:image/")
}

// Store writes uploaded images below <root>/lunches
type Store struct {
	root string
}

// NewStore creates an image store rooted at the uploads directory
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Dir returns the directory lunch images are written to
func (s *Store) Dir() string {
	return filepath.Join(s.root, "lunches")
}

// Save decodes a data URI, writes it under a fresh random name and returns
// the public path of the file
func (s *Store) Save(dataURI string) (string, error) {
	m := dataURIPattern.FindStringSubmatch(dataURI)
	if m == nil {
		return "", ErrInvalidImage
	}
	ext := strings.ToLower(m[2])
	if ext == "jpeg" {
		ext = "jpg"
	}
	data, err := decodeBase64(m[3])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if err := os.MkdirAll(s.Dir(), 0755); err != nil {
		return "", fmt.Errorf("create images dir: %w", err)
	}
	name := uuid.New().String() + "." + ext
	if err := os.WriteFile(filepath.Join(s.Dir(), name), data, 0644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return path.Join(PublicPrefix, name), nil
}

// decodeBase64 accepts padded and unpadded payloads with embedded whitespace,
// as browsers and some clients produce both
func decodeBase64(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)
	if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
}
