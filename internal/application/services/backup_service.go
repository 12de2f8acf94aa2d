package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lunchdesk/core/internal/infrastructure/csvstore"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
	"github.com/lunchdesk/core/internal/ports"
)

// ErrUnknownCollection is returned for a collection name that has no file
var ErrUnknownCollection = errors.New("unknown collection")

// BackupService handles snapshot listing, restore and pruning
type BackupService struct {
	snapshotRepo ports.SnapshotRepository
	logger       *logger.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(snapshotRepo ports.SnapshotRepository, logger *logger.Logger) *BackupService {
	return &BackupService{
		snapshotRepo: snapshotRepo,
		logger:       logger,
	}
}

// Collections returns the names snapshots can be managed for
func (s *BackupService) Collections() []string {
	return s.snapshotRepo.Collections()
}

// ListSnapshots returns a collection's snapshots, oldest first
func (s *BackupService) ListSnapshots(ctx context.Context, collection string) ([]csvstore.Snapshot, error) {
	if err := s.checkCollection(collection); err != nil {
		return nil, err
	}
	snaps, err := s.snapshotRepo.List(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snaps, nil
}

// RestoreSnapshot replaces the live collection file with the named snapshot
func (s *BackupService) RestoreSnapshot(ctx context.Context, collection, name string) error {
	if err := s.checkCollection(collection); err != nil {
		return err
	}
	if err := s.snapshotRepo.Restore(ctx, collection, name); err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}

	s.logger.Infow("Snapshot restored successfully", "collection", collection, "snapshot", name)

	return nil
}

// PruneSnapshots keeps the newest keep snapshots and returns the removed names
func (s *BackupService) PruneSnapshots(ctx context.Context, collection string, keep int) ([]string, error) {
	if err := s.checkCollection(collection); err != nil {
		return nil, err
	}
	removed, err := s.snapshotRepo.Prune(ctx, collection, keep)
	if err != nil {
		return removed, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	if removed == nil {
		removed = []string{}
	}

	s.logger.Infow("Snapshots pruned", "collection", collection, "keep", keep, "removed", len(removed))

	return removed, nil
}

// VerifySnapshot strictly decodes every row of a snapshot and returns how
// many rows were checked
func (s *BackupService) VerifySnapshot(ctx context.Context, collection, name string) (int, error) {
	if err := s.checkCollection(collection); err != nil {
		return 0, err
	}
	n, err := s.snapshotRepo.Verify(ctx, collection, name)
	if err != nil {
		return n, fmt.Errorf("snapshot verification failed: %w", err)
	}
	return n, nil
}

func (s *BackupService) checkCollection(collection string) error {
	for _, name := range s.snapshotRepo.Collections() {
		if name == collection {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
}
