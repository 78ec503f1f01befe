package api

import (
	"net/http"

	"github.com/google/uuid"
)

const (
	defaultSnapshotLimit = 20
	maxSnapshotLimit     = 100
)

// ListSnapshots возвращает список снимков без entries.
// GET /api/v1/snapshots?limit=20&offset=0
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		Unavailable(w, "snapshot storage is not configured")
		return
	}

	limit := queryInt(r, "limit", defaultSnapshotLimit)
	if limit <= 0 {
		limit = defaultSnapshotLimit
	}
	if limit > maxSnapshotLimit {
		limit = maxSnapshotLimit
	}
	offset := queryInt(r, "offset", 0)

	summaries, err := h.snapshots.List(r.Context(), limit, offset)
	if HandleError(w, h.logger, err) {
		return
	}

	total, err := h.snapshots.Count(r.Context())
	if HandleError(w, h.logger, err) {
		return
	}

	resp := make([]SnapshotResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = SnapshotResponse{
			ID:         s.ID,
			TakenAt:    s.TakenAt,
			EntryCount: s.EntryCount,
		}
	}
	List(w, resp, total)
}

// GetSnapshot возвращает снимок со всеми entries.
// GET /api/v1/snapshots/{id}
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		Unavailable(w, "snapshot storage is not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid snapshot ID")
		return
	}

	snap, err := h.snapshots.GetByID(r.Context(), id)
	if HandleError(w, h.logger, err) {
		return
	}

	Success(w, SnapshotFromDomain(snap, true))
}

// TakeSnapshot снимает снимок таблицы немедленно.
// POST /api/v1/snapshots
func (h *Handler) TakeSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		Unavailable(w, "snapshot storage is not configured")
		return
	}

	snap, err := h.snapshotter.SnapshotNow(r.Context())
	if HandleError(w, h.logger, err) {
		return
	}

	h.logger.Info("snapshot taken via api", "snapshot_id", snap.ID, "entries", snap.EntryCount())
	Created(w, SnapshotFromDomain(snap, false))
}
