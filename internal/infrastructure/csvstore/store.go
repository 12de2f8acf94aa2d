package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Row is one record as raw column text keyed by column name
type Row map[string]string

// Collection names one CSV file and its fixed header
type Collection struct {
	Name   string
	Path   string
	Header []string
}

// Stem returns the collection file name without extension
func (c Collection) Stem() string {
	base := filepath.Base(c.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// HeaderLine returns the literal first line of the collection file
func (c Collection) HeaderLine() string {
	return strings.Join(c.Header, ",")
}

// Config holds store locations and the snapshot retention policy
type Config struct {
	DataDir   string
	BackupDir string
	// Retention is the number of snapshots kept per collection, 0 keeps all
	Retention int
}

// WriteResult reports the side effects of a successful write. A non-nil
// BackupErr means the data was written but the snapshot step (copy, prune
// or mirror) failed.
type WriteResult struct {
	Snapshot  *Snapshot
	BackupErr error
}

// Store persists collections as CSV files, one file per collection
type Store struct {
	cfg     Config
	backups *Backups
	metrics *Metrics
}

// Option configures a Store
type Option func(*Store)

// WithMetrics records writes and backup failures
func WithMetrics(m *Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithMirror uploads every new snapshot through m
func WithMirror(m SnapshotMirror) Option {
	return func(s *Store) { s.backups.mirror = m }
}

// WithClock overrides the clock used to name snapshots
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.backups.now = now }
}

// New creates a store rooted at cfg.DataDir
func New(cfg Config, opts ...Option) (*Store, error) {
	if cfg.DataDir == "" {
		return nil, errors.New("data dir is required")
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = filepath.Join(cfg.DataDir, "backups")
	}
	if cfg.Retention < 0 {
		return nil, fmt.Errorf("invalid retention %d", cfg.Retention)
	}
	s := &Store{
		cfg:     cfg,
		backups: newBackups(cfg.BackupDir, cfg.Retention),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Collection describes the collection name stored at <data>/<name>/<name>.csv
func (s *Store) Collection(name string, header []string) Collection {
	return Collection{
		Name:   name,
		Path:   filepath.Join(s.cfg.DataDir, name, name+".csv"),
		Header: header,
	}
}

// Backups gives access to snapshot listing, pruning and restore
func (s *Store) Backups() *Backups {
	return s.backups
}

// DataDir returns the root data directory
func (s *Store) DataDir() string {
	return s.cfg.DataDir
}

// Init creates the data and backup directories of the given collections and
// writes a header-only file for every collection file that does not exist.
func (s *Store) Init(collections ...Collection) error {
	for _, c := range collections {
		if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
			return fmt.Errorf("create %s dir: %w", c.Name, err)
		}
		if err := os.MkdirAll(s.backups.collectionDir(c), 0755); err != nil {
			return fmt.Errorf("create %s backup dir: %w", c.Name, err)
		}
		_, err := os.Stat(c.Path)
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", c.Path, err)
		}
		if err := os.WriteFile(c.Path, []byte(c.HeaderLine()+"\n"), 0644); err != nil {
			return fmt.Errorf("create %s: %w", c.Path, err)
		}
	}
	return nil
}

// ReadAll returns every non-blank record of the collection in file order
func (s *Store) ReadAll(ctx context.Context, c Collection) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return readRows(c.Path, c.Header)
}

// Overwrite replaces the collection file with the header followed by rows,
// then snapshots it.
func (s *Store) Overwrite(ctx context.Context, c Collection, rows []Row) (WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return WriteResult{}, err
	}
	err := replaceFile(filepath.Dir(c.Path), c.Path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(c.Header); err != nil {
			return err
		}
		for _, row := range rows {
			if err := cw.Write(toRecord(c.Header, row)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return WriteResult{}, fmt.Errorf("overwrite %s: %w", c.Name, err)
	}
	return s.afterWrite(ctx, c, "overwrite"), nil
}

// Append adds one record at the end of the collection file, writing the
// header first when the file is new, then snapshots it.
func (s *Store) Append(ctx context.Context, c Collection, row Row) (WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return WriteResult{}, err
	}
	if err := appendRecord(c, toRecord(c.Header, row)); err != nil {
		return WriteResult{}, fmt.Errorf("append %s: %w", c.Name, err)
	}
	return s.afterWrite(ctx, c, "append"), nil
}

func appendRecord(c Collection, rec []string) error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(c.Path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(c.Header); err != nil {
			_ = f.Close()
			return err
		}
	} else if !endsWithNewline(f, st.Size()) {
		// a hand-edited file may lack the final newline
		if _, err := f.Write([]byte("\n")); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := w.Write(rec); err != nil {
		_ = f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	errSync := f.Sync()
	errClose := f.Close()
	if errSync != nil {
		return errSync
	}
	return errClose
}

func endsWithNewline(f *os.File, size int64) bool {
	b := make([]byte, 1)
	if _, err := f.ReadAt(b, size-1); err != nil {
		return true
	}
	return b[0] == '\n'
}

func (s *Store) afterWrite(ctx context.Context, c Collection, op string) WriteResult {
	s.metrics.observeWrite(c.Name, op)
	snap, err := s.backups.Snapshot(ctx, c)
	if err != nil {
		s.metrics.observeBackupFailure(c.Name)
	}
	return WriteResult{Snapshot: snap, BackupErr: err}
}
