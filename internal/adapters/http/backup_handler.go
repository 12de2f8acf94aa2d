package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lunchdesk/core/internal/infrastructure/csvstore"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
	"github.com/lunchdesk/core/internal/ports"
)

// BackupHandler exposes collection snapshots
type BackupHandler struct {
	backupService ports.BackupService
	logger        *logger.Logger
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(backupService ports.BackupService, logger *logger.Logger) *BackupHandler {
	return &BackupHandler{
		backupService: backupService,
		logger:        logger,
	}
}

// ListSnapshots godoc
// @Summary List snapshots of a collection
// @Description Oldest first
// @Tags backups
// @Produce json
// @Param collection path string true "lunches, orders or expenses"
// @Success 200 {array} csvstore.Snapshot
// @Failure 404 {object} ports.ErrorResponse
// @Router /backups/{collection} [get]
func (h *BackupHandler) ListSnapshots(c echo.Context) error {
	snaps, err := h.backupService.ListSnapshots(c.Request().Context(), c.Param("collection"))
	if err != nil {
		return httpError(h.logger, "List snapshots", err)
	}
	if snaps == nil {
		snaps = []csvstore.Snapshot{}
	}
	return c.JSON(http.StatusOK, snaps)
}

// RestoreSnapshot godoc
// @Summary Restore a collection from a snapshot
// @Tags backups
// @Accept json
// @Produce json
// @Param collection path string true "lunches, orders or expenses"
// @Param request body ports.RestoreSnapshotRequest true "Snapshot name"
// @Success 200 {object} ports.OKResponse
// @Failure 400 {object} ports.ErrorResponse
// @Failure 404 {object} ports.ErrorResponse
// @Router /backups/{collection}/restore [post]
func (h *BackupHandler) RestoreSnapshot(c echo.Context) error {
	var req ports.RestoreSnapshotRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.backupService.RestoreSnapshot(c.Request().Context(), c.Param("collection"), req.Name); err != nil {
		return httpError(h.logger, "Restore snapshot", err)
	}

	return c.JSON(http.StatusOK, ports.OKResponse{OK: true})
}

// PruneSnapshots godoc
// @Summary Remove old snapshots
// @Description Keeps the newest keep snapshots
// @Tags backups
// @Accept json
// @Produce json
// @Param collection path string true "lunches, orders or expenses"
// @Param request body ports.PruneSnapshotsRequest true "Snapshots to keep"
// @Success 200 {object} ports.PruneSnapshotsResponse
// @Failure 400 {object} ports.ErrorResponse
// @Router /backups/{collection}/prune [post]
func (h *BackupHandler) PruneSnapshots(c echo.Context) error {
	var req ports.PruneSnapshotsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	removed, err := h.backupService.PruneSnapshots(c.Request().Context(), c.Param("collection"), req.Keep)
	if err != nil {
		return httpError(h.logger, "Prune snapshots", err)
	}

	return c.JSON(http.StatusOK, ports.PruneSnapshotsResponse{Removed: removed})
}

// VerifySnapshot godoc
// @Summary Check that every row of a snapshot decodes
// @Tags backups
// @Produce json
// @Param collection path string true "lunches, orders or expenses"
// @Param name path string true "Snapshot file name"
// @Success 200 {object} VerifySnapshotResponse
// @Failure 404 {object} ports.ErrorResponse
// @Failure 422 {object} ports.ErrorResponse
// @Router /backups/{collection}/{name}/verify [get]
func (h *BackupHandler) VerifySnapshot(c echo.Context) error {
	name := c.Param("name")
	rows, err := h.backupService.VerifySnapshot(c.Request().Context(), c.Param("collection"), name)
	if err != nil {
		return httpError(h.logger, "Verify snapshot", err)
	}

	return c.JSON(http.StatusOK, VerifySnapshotResponse{OK: true, Name: name, Rows: rows})
}
