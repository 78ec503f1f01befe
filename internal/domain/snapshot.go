package domain

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot — снимок всей таблицы в момент времени.
//
// Снимки создаются publisher'ом по расписанию (SnapshotCron)
// или вручную через API, и хранятся в БД для просмотра истории.
type Snapshot struct {
	// ID — уникальный идентификатор снимка.
	ID uuid.UUID `json:"id"`

	// TakenAt — время снятия.
	TakenAt time.Time `json:"taken_at"`

	// Entries — все entries на момент снятия.
	Entries []Entry `json:"entries"`
}

// NewSnapshot создаёт снимок из набора entries.
func NewSnapshot(entries []Entry) *Snapshot {
	return &Snapshot{
		ID:      uuid.New(),
		TakenAt: time.Now().UTC(),
		Entries: entries,
	}
}

// EntryCount возвращает количество entries в снимке.
func (s *Snapshot) EntryCount() int {
	return len(s.Entries)
}

// Find возвращает entry по пути.
func (s *Snapshot) Find(path string) (Entry, bool) {
	path = NormalizePath(path)
	for _, e := range s.Entries {
		if e.Path == path {
			return e, true
		}
	}
	return Entry{}, false
}
