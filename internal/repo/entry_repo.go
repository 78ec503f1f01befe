package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Dashboard/internal/domain"
)

// EntryRepo — репозиторий persistent entries.
type EntryRepo struct {
	pool *pgxpool.Pool
}

// NewEntryRepo создаёт новый EntryRepo.
func NewEntryRepo(pool *pgxpool.Pool) *EntryRepo {
	return &EntryRepo{pool: pool}
}

const upsertEntryQuery = `
	INSERT INTO persistent_entries (path, type, value, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (path) DO UPDATE
	SET type = EXCLUDED.type, value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`

// SavePersistent сохраняет (или обновляет) одну entry.
func (r *EntryRepo) SavePersistent(ctx context.Context, entry domain.Entry) error {
	valueJSON, err := json.Marshal(entry.Value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}

	_, err = r.pool.Exec(ctx, upsertEntryQuery,
		entry.Path,
		string(entry.Value.Type),
		valueJSON,
		updatedAt(entry),
	)
	if err != nil {
		return fmt.Errorf("upsert entry %s: %w", entry.Path, err)
	}
	return nil
}

// ReplacePersistent приводит таблицу к набору entries:
// отсутствующие в наборе пути удаляются, остальные обновляются.
func (r *EntryRepo) ReplacePersistent(ctx context.Context, entries []domain.Entry) error {
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM persistent_entries WHERE NOT (path = ANY($1))`, paths,
		); err != nil {
			return fmt.Errorf("delete stale entries: %w", err)
		}

		batch := &pgx.Batch{}
		for _, e := range entries {
			valueJSON, err := json.Marshal(e.Value)
			if err != nil {
				return fmt.Errorf("marshal value %s: %w", e.Path, err)
			}
			batch.Queue(upsertEntryQuery, e.Path, string(e.Value.Type), valueJSON, updatedAt(e))
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upsert entries: %w", err)
		}
		return nil
	})
}

// LoadPersistent возвращает все сохранённые entries (Persistent = true).
func (r *EntryRepo) LoadPersistent(ctx context.Context) ([]domain.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT path, type, value, updated_at
		FROM persistent_entries
		ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("load persistent entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// GetPersistent возвращает сохранённую entry по пути.
func (r *EntryRepo) GetPersistent(ctx context.Context, path string) (*domain.Entry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT path, type, value, updated_at
		FROM persistent_entries
		WHERE path = $1
	`, domain.NormalizePath(path))

	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// DeletePersistent удаляет сохранённую entry.
func (r *EntryRepo) DeletePersistent(ctx context.Context, path string) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM persistent_entries WHERE path = $1`, domain.NormalizePath(path))
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Helpers ---

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var (
		e         domain.Entry
		typ       string
		valueJSON []byte
	)
	if err := row.Scan(&e.Path, &typ, &valueJSON, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan entry: %w", err)
	}

	if err := json.Unmarshal(valueJSON, &e.Value); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupted, e.Path, err)
	}
	if string(e.Value.Type) != typ {
		return nil, fmt.Errorf("%w: %s: type %s, value %s", ErrCorrupted, e.Path, typ, e.Value.Type)
	}
	e.Persistent = true
	return &e, nil
}

func updatedAt(e domain.Entry) time.Time {
	if e.UpdatedAt.IsZero() {
		return time.Now().UTC()
	}
	return e.UpdatedAt
}
