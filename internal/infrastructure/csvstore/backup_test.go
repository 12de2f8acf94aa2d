package csvstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert"
)

type recordingMirror struct {
	uploaded []string
	err      error
}

func (m *recordingMirror) Upload(ctx context.Context, snap Snapshot) error {
	m.uploaded = append(m.uploaded, snap.Name)
	return m.err
}

func snapshotNames(snaps []Snapshot) []string {
	names := make([]string, len(snaps))
	for i, s := range snaps {
		names[i] = s.Name
	}
	return names
}

func TestSnapshotAfterEachWrite(t *testing.T) {
	s, c := newTestStore(t)
	ctx := context.Background()

	res, err := s.Append(ctx, c, Row{"id": "1", "title": "Soup", "price": "10"})
	assert.NoError(t, err)
	assert.NoError(t, res.BackupErr)
	assert.Equal(t, "lunches-20240301-120000.csv", res.Snapshot.Name)

	before, err := s.Backups().List(c)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(before))

	res, err = s.Overwrite(ctx, c, []Row{{"id": "2", "title": "Rice", "price": "12"}})
	assert.NoError(t, err)

	after, err := s.Backups().List(c)
	assert.NoError(t, err)
	assert.Equal(t, len(before)+1, len(after))
	last := after[len(after)-1]
	assert.Equal(t, res.Snapshot.Name, last.Name)
	assert.Equal(t, "lunches-20240301-120001.csv", last.Name)
	assert.Equal(t, readFile(t, c.Path), readFile(t, last.Path))
	assert.Equal(t, 2024, last.Time.Year())
	assert.True(t, last.Size > 0)
}

func TestSnapshotsInSameSecondShareName(t *testing.T) {
	frozen := func() time.Time { return fixedStart() }
	s, c := newTestStore(t, WithClock(frozen))
	ctx := context.Background()

	first, err := s.Append(ctx, c, Row{"id": "1", "title": "Soup", "price": "10"})
	assert.NoError(t, err)
	second, err := s.Append(ctx, c, Row{"id": "2", "title": "Rice", "price": "12"})
	assert.NoError(t, err)
	assert.NoError(t, second.BackupErr)
	assert.Equal(t, first.Snapshot.Name, second.Snapshot.Name)

	// the later write replaces the earlier snapshot instead of adding one
	snaps, err := s.Backups().List(c)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(snaps))
	assert.Equal(t, readFile(t, c.Path), readFile(t, snaps[0].Path))
}

func TestSnapshotLeavesNoTempFiles(t *testing.T) {
	s, c := newTestStore(t)
	_, err := s.Append(context.Background(), c, Row{"id": "1"})
	assert.NoError(t, err)

	entries, err := os.ReadDir(s.Backups().Dir())
	assert.NoError(t, err)
	assert.Equal(t, 1, len(entries))
	assert.Equal(t, "lunches", entries[0].Name())
}

func TestListIgnoresForeignFiles(t *testing.T) {
	s, c := newTestStore(t)
	dir := filepath.Join(s.Backups().Dir(), "lunches")
	writeFile(t, filepath.Join(dir, "lunches-20240101-000000.csv"), "a")
	writeFile(t, filepath.Join(dir, "notes.txt"), "b")
	writeFile(t, filepath.Join(dir, "lunches-latest.csv"), "c")
	writeFile(t, filepath.Join(dir, "orders-20240101-000000.csv"), "d")

	snaps, err := s.Backups().List(c)
	assert.NoError(t, err)
	assert.Equal(t, []string{"lunches-20240101-000000.csv"}, snapshotNames(snaps))
}

func TestListMissingDir(t *testing.T) {
	s, c := newTestStore(t)
	snaps, err := s.Backups().List(c)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(snaps))
}

func TestPrune(t *testing.T) {
	s, c := newTestStore(t)
	dir := filepath.Join(s.Backups().Dir(), "lunches")
	for _, name := range []string{
		"lunches-20240103-000000.csv",
		"lunches-20240101-000000.csv",
		"lunches-20240102-000000.csv",
		"lunches-20231231-235959.csv",
	} {
		writeFile(t, filepath.Join(dir, name), name)
	}

	removed, err := s.Backups().Prune(c, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(removed))

	removed, err = s.Backups().Prune(c, 2)
	assert.NoError(t, err)
	assert.Equal(t, []string{"lunches-20231231-235959.csv", "lunches-20240101-000000.csv"}, removed)

	snaps, err := s.Backups().List(c)
	assert.NoError(t, err)
	assert.Equal(t, []string{"lunches-20240102-000000.csv", "lunches-20240103-000000.csv"}, snapshotNames(snaps))

	removed, err = s.Backups().Prune(c, 5)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(removed))
}

func TestRetentionPrunesOnWrite(t *testing.T) {
	dir := t.TempDir()
	s, err := New(Config{DataDir: dir, Retention: 2}, WithClock(tickingClock(fixedStart())))
	assert.NoError(t, err)
	c := s.Collection("expenses", []string{"id"})

	for i := 0; i < 4; i++ {
		res, err := s.Append(context.Background(), c, Row{"id": "x"})
		assert.NoError(t, err)
		assert.NoError(t, res.BackupErr)
	}
	snaps, err := s.Backups().List(c)
	assert.NoError(t, err)
	assert.Equal(t, []string{"expenses-20240301-120002.csv", "expenses-20240301-120003.csv"}, snapshotNames(snaps))
}

func TestRestore(t *testing.T) {
	s, c := newTestStore(t)
	ctx := context.Background()

	res, err := s.Overwrite(ctx, c, []Row{{"id": "1", "title": "Soup", "price": "10"}})
	assert.NoError(t, err)
	first := res.Snapshot.Name

	_, err = s.Overwrite(ctx, c, []Row{{"id": "2", "title": "Rice", "price": "12"}})
	assert.NoError(t, err)

	assert.NoError(t, s.Backups().Restore(ctx, c, first))
	rows, err := s.ReadAll(ctx, c)
	assert.NoError(t, err)
	assert.Equal(t, []Row{{"id": "1", "title": "Soup", "price": "10"}}, rows)

	snapRows, err := s.Backups().ReadSnapshot(ctx, c, first)
	assert.NoError(t, err)
	assert.Equal(t, rows, snapRows)
}

func TestRestoreErrors(t *testing.T) {
	s, c := newTestStore(t)
	ctx := context.Background()

	err := s.Backups().Restore(ctx, c, "lunches-20990101-000000.csv")
	assert.True(t, errors.Is(err, ErrSnapshotNotFound))

	for _, name := range []string{"", "../lunches/lunches.csv", "lunches-20990101-000000.txt", "orders-20240101-000000.csv"} {
		err = s.Backups().Restore(ctx, c, name)
		assert.True(t, errors.Is(err, ErrInvalidSnapshotName), name)
	}

	_, err = s.Backups().ReadSnapshot(ctx, c, "lunches-20990101-000000.csv")
	assert.True(t, errors.Is(err, ErrSnapshotNotFound))
}

func TestMirrorReceivesSnapshots(t *testing.T) {
	m := &recordingMirror{}
	s, c := newTestStore(t, WithMirror(m))

	res, err := s.Append(context.Background(), c, Row{"id": "1"})
	assert.NoError(t, err)
	assert.NoError(t, res.BackupErr)
	assert.Equal(t, []string{res.Snapshot.Name}, m.uploaded)

	m.err = errors.New("bucket unavailable")
	res, err = s.Append(context.Background(), c, Row{"id": "2"})
	assert.NoError(t, err)
	assert.Error(t, res.BackupErr)
	// the local snapshot still exists
	assert.NotNil(t, res.Snapshot)
	_, err = os.Stat(res.Snapshot.Path)
	assert.NoError(t, err)
}
