package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Dashboard/internal/domain"
)

// Entry DTOs

// EntryResponse — ответ с entry.
type EntryResponse struct {
	Path       string           `json:"path"`
	Type       domain.ValueType `json:"type"`
	Value      any              `json:"value"`
	Persistent bool             `json:"persistent"`
	Seq        uint64           `json:"seq"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// EntryFromDomain конвертирует domain.Entry в EntryResponse.
func EntryFromDomain(e domain.Entry) EntryResponse {
	return EntryResponse{
		Path:       e.Path,
		Type:       e.Value.Type,
		Value:      e.Value.Any(),
		Persistent: e.Persistent,
		Seq:        e.Seq,
		UpdatedAt:  e.UpdatedAt,
	}
}

// SetPersistentRequest — запрос на изменение флага persistent.
type SetPersistentRequest struct {
	Persistent *bool `json:"persistent"`
}

// Snapshot DTOs

// SnapshotResponse — ответ со снимком.
type SnapshotResponse struct {
	ID         uuid.UUID       `json:"id"`
	TakenAt    time.Time       `json:"taken_at"`
	EntryCount int             `json:"entry_count"`
	Entries    []EntryResponse `json:"entries,omitempty"`
}

// SnapshotFromDomain конвертирует domain.Snapshot в SnapshotResponse.
func SnapshotFromDomain(s *domain.Snapshot, withEntries bool) SnapshotResponse {
	resp := SnapshotResponse{
		ID:         s.ID,
		TakenAt:    s.TakenAt,
		EntryCount: s.EntryCount(),
	}
	if withEntries {
		resp.Entries = make([]EntryResponse, len(s.Entries))
		for i, e := range s.Entries {
			resp.Entries[i] = EntryFromDomain(e)
		}
	}
	return resp
}
