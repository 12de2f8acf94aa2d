package csvstore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// replaceFile writes dst atomically: the content goes to a temporary file
// created in tmpDir, which is synced, closed and renamed over dst. tmpDir
// must be on the same filesystem as dst. On any failure the temporary file
// is removed and dst is left as it was.
func replaceFile(tmpDir, dst string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(tmpDir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	didRename := false
	defer func() {
		if !didRename {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	// CreateTemp uses 0600, collection files are world readable
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	// https://www.joeshaw.org/dont-defer-close-on-writable-files/
	errSync := tmp.Sync()
	errClose := tmp.Close()
	if errSync != nil {
		return fmt.Errorf("sync temp file: %w", errSync)
	}
	if errClose != nil {
		return fmt.Errorf("close temp file: %w", errClose)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	didRename = true
	syncDir(filepath.Dir(dst))
	return nil
}

// copyFileTo returns a writer func that streams src into w
func copyFileTo(src string) func(w io.Writer) error {
	return func(w io.Writer) error {
		f, err := os.Open(src)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	}
}

// syncDir flushes a directory entry after a rename. Errors are ignored,
// this is a nice to have, not a must have.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
