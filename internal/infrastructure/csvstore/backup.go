package csvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// snapshotLayout sorts lexicographically in chronological order
const snapshotLayout = "20060102-150405"

var (
	ErrSnapshotNotFound    = errors.New("snapshot not found")
	ErrInvalidSnapshotName = errors.New("invalid snapshot name")
)

// Snapshot is one timestamped copy of a collection file
type Snapshot struct {
	Collection string    `json:"collection"`
	Name       string    `json:"name"`
	Path       string    `json:"-"`
	Time       time.Time `json:"time"`
	Size       int64     `json:"size"`
}

// SnapshotMirror receives every snapshot after it is written locally
type SnapshotMirror interface {
	Upload(ctx context.Context, snap Snapshot) error
}

// Backups manages the snapshot tree <dir>/<collection>/<stem>-<timestamp>.csv
type Backups struct {
	dir       string
	retention int
	mirror    SnapshotMirror
	now       func() time.Time
}

func newBackups(dir string, retention int) *Backups {
	return &Backups{
		dir:       dir,
		retention: retention,
		now:       time.Now,
	}
}

// Dir returns the root of the snapshot tree
func (b *Backups) Dir() string {
	return b.dir
}

func (b *Backups) collectionDir(c Collection) string {
	return filepath.Join(b.dir, c.Name)
}

// Snapshot copies the collection file into its backup directory. The copy is
// staged in the backup root and renamed into place, so readers of the
// collection's backup directory never observe a partial file. Snapshots taken
// within the same second share a name and the later one wins.
//
// When a retention is set the oldest snapshots are pruned, and when a mirror
// is set the snapshot is uploaded. The returned snapshot is nil only if the
// local copy failed; prune and mirror errors are returned alongside it.
func (b *Backups) Snapshot(ctx context.Context, c Collection) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ts := b.now()
	name := fmt.Sprintf("%s-%s.csv", c.Stem(), ts.Format(snapshotLayout))
	dst := filepath.Join(b.collectionDir(c), name)

	if err := replaceFile(b.dir, dst, copyFileTo(c.Path)); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", c.Name, err)
	}
	snap := &Snapshot{
		Collection: c.Name,
		Name:       name,
		Path:       dst,
		Time:       parseSnapshotTime(c, name),
	}
	if st, err := os.Stat(dst); err == nil {
		snap.Size = st.Size()
	}

	var errs []error
	if b.retention > 0 {
		if _, err := b.Prune(c, b.retention); err != nil {
			errs = append(errs, err)
		}
	}
	if b.mirror != nil {
		if err := b.mirror.Upload(ctx, *snap); err != nil {
			errs = append(errs, fmt.Errorf("mirror %s: %w", name, err))
		}
	}
	return snap, errors.Join(errs...)
}

// List returns the collection's snapshots, oldest first. Files in the backup
// directory that do not follow the snapshot naming are ignored.
func (b *Backups) List(c Collection) ([]Snapshot, error) {
	dir := b.collectionDir(c)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Snapshot{}, nil
		}
		return nil, fmt.Errorf("list %s snapshots: %w", c.Name, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && isSnapshotName(c, e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	snaps := make([]Snapshot, 0, len(names))
	for _, name := range names {
		snap := Snapshot{
			Collection: c.Name,
			Name:       name,
			Path:       filepath.Join(dir, name),
			Time:       parseSnapshotTime(c, name),
		}
		if st, err := os.Stat(snap.Path); err == nil {
			snap.Size = st.Size()
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// Prune removes the oldest snapshots so that at most keep remain and returns
// the removed names. keep <= 0 keeps everything.
func (b *Backups) Prune(c Collection, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	snaps, err := b.List(c)
	if err != nil {
		return nil, err
	}
	if len(snaps) <= keep {
		return nil, nil
	}

	var removed []string
	var errs []error
	for _, snap := range snaps[:len(snaps)-keep] {
		if err := os.Remove(snap.Path); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", snap.Name, err))
			continue
		}
		removed = append(removed, snap.Name)
	}
	return removed, errors.Join(errs...)
}

// Restore copies the named snapshot over the live collection file,
// unconditionally replacing its content.
func (b *Backups) Restore(ctx context.Context, c Collection, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := b.snapshotPath(c, name)
	if err != nil {
		return err
	}
	if err := replaceFile(filepath.Dir(c.Path), c.Path, copyFileTo(src)); err != nil {
		return fmt.Errorf("restore %s from %s: %w", c.Name, name, err)
	}
	return nil
}

// ReadSnapshot parses the named snapshot with the collection's header
func (b *Backups) ReadSnapshot(ctx context.Context, c Collection, name string) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := b.snapshotPath(c, name)
	if err != nil {
		return nil, err
	}
	return readRows(src, c.Header)
}

func (b *Backups) snapshotPath(c Collection, name string) (string, error) {
	if name == "" || filepath.Base(name) != name || !isSnapshotName(c, name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSnapshotName, name)
	}
	p := filepath.Join(b.collectionDir(c), name)
	st, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
		}
		return "", err
	}
	if !st.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	return p, nil
}

func isSnapshotName(c Collection, name string) bool {
	_, ok := snapshotTimestamp(c, name)
	return ok
}

func snapshotTimestamp(c Collection, name string) (string, bool) {
	prefix := c.Stem() + "-"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".csv") {
		return "", false
	}
	ts := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".csv")
	if len(ts) != len(snapshotLayout) {
		return "", false
	}
	if _, err := time.ParseInLocation(snapshotLayout, ts, time.Local); err != nil {
		return "", false
	}
	return ts, true
}

func parseSnapshotTime(c Collection, name string) time.Time {
	ts, ok := snapshotTimestamp(c, name)
	if !ok {
		return time.Time{}
	}
	t, _ := time.ParseInLocation(snapshotLayout, ts, time.Local)
	return t
}
