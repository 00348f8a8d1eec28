package http

import (
	"errors"
	"net/http"

	"boutique/internal/backup"
)

type snapshotResponse struct {
	ID        string `json:"id"`
	File      string `json:"file"`
	CreatedAt string `json:"created_at"`
	SizeBytes int64  `json:"size_bytes"`
}

func toSnapshotResponse(s backup.Snapshot) snapshotResponse {
	return snapshotResponse{
		ID:        s.ID,
		File:      s.File,
		CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		SizeBytes: s.SizeBytes,
	}
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		writeError(w, http.StatusNotImplemented, "snapshots not configured")
		return
	}
	list, err := s.snapshots.List()
	if err != nil {
		s.writeDomainError(w, r, err, "list snapshots")
		return
	}
	out := make([]snapshotResponse, 0, len(list))
	for _, snap := range list {
		out = append(out, toSnapshotResponse(snap))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		writeError(w, http.StatusNotImplemented, "snapshots not configured")
		return
	}
	snap, err := s.snapshots.Snapshot(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err, "create snapshot")
		return
	}
	writeJSON(w, http.StatusCreated, toSnapshotResponse(snap))
}

// handleRestoreSnapshot copies a snapshot over the live database. The
// id "latest" restores the most recent snapshot. The repository closes
// its handle for the duration of the copy, so requests racing the
// restore may fail and should be retried.
func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		writeError(w, http.StatusNotImplemented, "snapshots not configured")
		return
	}
	id := r.PathValue("id")

	var restored backup.Snapshot
	err := s.repo.Reload(func() error {
		var snap backup.Snapshot
		var err error
		if id == "latest" {
			snap, err = s.snapshots.RestoreLatest()
		} else {
			snap, err = s.snapshots.Restore(id)
		}
		if err != nil {
			return err
		}
		restored = snap
		return nil
	})
	if errors.Is(err, backup.ErrSnapshotNotFound) || errors.Is(err, backup.ErrNoSnapshots) {
		writeError(w, http.StatusNotFound, "snapshot not found")
		return
	}
	if err != nil {
		s.writeDomainError(w, r, err, "restore snapshot")
		return
	}

	// Cached reports describe the pre-restore state.
	s.reportCache.Clear()
	writeJSON(w, http.StatusOK, toSnapshotResponse(restored))
}
