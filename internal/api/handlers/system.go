package handlers

import (
	"context"
	"net/http"

	"github.com/ramonehamilton/carddex/internal/api/response"
	"github.com/ramonehamilton/carddex/internal/apperrors"
	"github.com/ramonehamilton/carddex/internal/storage"
)

// BackupService runs and lists database backups.
type BackupService interface {
	RunOnce(ctx context.Context) (string, error)
	Status() storage.SchedulerStatus
	ListBackups() ([]storage.BackupInfo, error)
}

// SystemHandler handles maintenance endpoints.
type SystemHandler struct {
	backups BackupService
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(backups BackupService) *SystemHandler {
	return &SystemHandler{backups: backups}
}

// BackupsResponse is the body of GET /system/backups.
type BackupsResponse struct {
	Status  storage.SchedulerStatus `json:"status"`
	Backups []storage.BackupInfo    `json:"backups"`
}

// GetBackups returns scheduler status and the stored backups.
func (h *SystemHandler) GetBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := h.backups.ListBackups()
	if err != nil {
		response.FromError(w, apperrors.Persistence(err, "failed to list backups"))
		return
	}
	response.Success(w, BackupsResponse{Status: h.backups.Status(), Backups: backups})
}

// CreateBackup writes a backup now.
func (h *SystemHandler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	path, err := h.backups.RunOnce(r.Context())
	if err != nil {
		response.FromError(w, apperrors.Persistence(err, "backup failed"))
		return
	}
	response.Created(w, map[string]string{"path": path})
}
