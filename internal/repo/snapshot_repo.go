package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Dashboard/internal/domain"
)

// SnapshotRepo — репозиторий снимков таблицы.
type SnapshotRepo struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepo создаёт новый SnapshotRepo.
func NewSnapshotRepo(pool *pgxpool.Pool) *SnapshotRepo {
	return &SnapshotRepo{pool: pool}
}

// SnapshotSummary — снимок без entries (для списков).
type SnapshotSummary struct {
	ID         uuid.UUID `json:"id"`
	TakenAt    time.Time `json:"taken_at"`
	EntryCount int       `json:"entry_count"`
}

// Create сохраняет снимок.
func (r *SnapshotRepo) Create(ctx context.Context, snap *domain.Snapshot) error {
	entriesJSON, err := json.Marshal(snap.Entries)
	if err != nil {
		return fmt.Errorf("marshal entries: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO snapshots (id, taken_at, entry_count, entries)
		VALUES ($1, $2, $3, $4)
	`, snap.ID, snap.TakenAt, snap.EntryCount(), entriesJSON)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// GetByID возвращает снимок вместе с entries.
func (r *SnapshotRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Snapshot, error) {
	var (
		snap        domain.Snapshot
		entriesJSON []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, taken_at, entries
		FROM snapshots
		WHERE id = $1
	`, id).Scan(&snap.ID, &snap.TakenAt, &entriesJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	if err := json.Unmarshal(entriesJSON, &snap.Entries); err != nil {
		return nil, fmt.Errorf("%w: snapshot %s: %v", ErrCorrupted, id, err)
	}
	return &snap, nil
}

// List возвращает снимки от новых к старым.
func (r *SnapshotRepo) List(ctx context.Context, limit, offset int) ([]SnapshotSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, taken_at, entry_count
		FROM snapshots
		ORDER BY taken_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var result []SnapshotSummary
	for rows.Next() {
		var s SnapshotSummary
		if err := rows.Scan(&s.ID, &s.TakenAt, &s.EntryCount); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// Count возвращает общее количество снимков.
func (r *SnapshotRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}

// DeleteOlderThan удаляет снимки, снятые раньше before.
// Возвращает количество удалённых.
func (r *SnapshotRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM snapshots WHERE taken_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete old snapshots: %w", err)
	}
	return result.RowsAffected(), nil
}
