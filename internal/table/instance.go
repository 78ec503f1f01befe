package table

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shaiso/Dashboard/internal/domain"
)

// Listener — обработчик изменения entry.
type Listener func(change domain.Change)

// ListenerID — идентификатор подписки, нужен для RemoveListener.
type ListenerID uint64

type listener struct {
	prefix string
	fn     Listener
}

// record — хранимое состояние одного пути.
type record struct {
	value      domain.Value
	persistent bool
	seq        uint64
	updatedAt  time.Time
}

// Instance — хранилище всех entries процесса.
//
// Потокобезопасен. Все записи упорядочены через mu и получают
// последовательные номера seq.
type Instance struct {
	mu sync.RWMutex

	entries map[string]*record

	// tombstones — удалённые пути → seq удаления (для ChangesSince).
	tombstones map[string]uint64

	seq uint64

	listeners    map[ListenerID]listener
	nextListener ListenerID

	now func() time.Time
}

// NewInstance создаёт пустое хранилище.
func NewInstance() *Instance {
	return &Instance{
		entries:    make(map[string]*record),
		tombstones: make(map[string]uint64),
		listeners:  make(map[ListenerID]listener),
		now:        time.Now,
	}
}

// Table возвращает представление поддерева с корнем name.
func (i *Instance) Table(name string) *Table {
	return &Table{inst: i, path: domain.NormalizePath(name)}
}

// Entry возвращает entry по полному пути.
func (i *Instance) Entry(path string) *Entry {
	return &Entry{inst: i, path: domain.NormalizePath(path)}
}

// Set записывает значение по пути.
//
// Если значение не изменилось, seq не увеличивается и listeners не вызываются.
func (i *Instance) Set(path string, value domain.Value, source domain.ChangeSource) error {
	path = domain.NormalizePath(path)
	if path == domain.PathSeparator {
		return ErrEmptyKey
	}
	if !value.Type.IsValid() {
		return fmt.Errorf("%w: %s", domain.ErrInvalidValue, path)
	}

	i.mu.Lock()
	rec, exists := i.entries[path]
	if exists && rec.value.Type != value.Type {
		i.mu.Unlock()
		return fmt.Errorf("%w: %s is %s, got %s", ErrTypeMismatch, path, rec.value.Type, value.Type)
	}
	if exists && rec.value.Equal(value) {
		i.mu.Unlock()
		return nil
	}

	change := domain.Change{
		Path:   path,
		Kind:   domain.ChangeKindSet,
		Value:  value.Clone(),
		Source: source,
	}
	if exists {
		prev := rec.value
		change.Previous = &prev
	} else {
		rec = &record{}
		i.entries[path] = rec
		delete(i.tombstones, path)
	}

	i.seq++
	rec.value = change.Value
	rec.seq = i.seq
	rec.updatedAt = i.now()

	change.Seq = rec.seq
	change.At = rec.updatedAt
	change.Persistent = rec.persistent

	targets := i.matchListenersLocked(path)
	i.mu.Unlock()

	notify(targets, change)
	return nil
}

// SetDefault записывает значение, только если entry ещё нет.
// Возвращает true, если значение было записано.
func (i *Instance) SetDefault(path string, value domain.Value, source domain.ChangeSource) (bool, error) {
	path = domain.NormalizePath(path)

	i.mu.RLock()
	rec, exists := i.entries[path]
	var existingType domain.ValueType
	if exists {
		existingType = rec.value.Type
	}
	i.mu.RUnlock()

	if exists {
		if existingType != value.Type {
			return false, fmt.Errorf("%w: %s is %s, got %s", ErrTypeMismatch, path, existingType, value.Type)
		}
		return false, nil
	}

	if err := i.Set(path, value, source); err != nil {
		return false, err
	}
	return true, nil
}

// Get возвращает значение по пути.
func (i *Instance) Get(path string) (domain.Value, bool) {
	path = domain.NormalizePath(path)

	i.mu.RLock()
	defer i.mu.RUnlock()

	rec, ok := i.entries[path]
	if !ok {
		return domain.Value{}, false
	}
	return rec.value.Clone(), true
}

// Lookup возвращает entry целиком (значение, флаги, seq).
func (i *Instance) Lookup(path string) (domain.Entry, bool) {
	path = domain.NormalizePath(path)

	i.mu.RLock()
	defer i.mu.RUnlock()

	rec, ok := i.entries[path]
	if !ok {
		return domain.Entry{}, false
	}
	return rec.entry(path), true
}

// Delete удаляет entry. Возвращает false, если entry не было.
func (i *Instance) Delete(path string, source domain.ChangeSource) bool {
	path = domain.NormalizePath(path)

	i.mu.Lock()
	rec, ok := i.entries[path]
	if !ok {
		i.mu.Unlock()
		return false
	}

	delete(i.entries, path)
	i.seq++
	i.tombstones[path] = i.seq

	prev := rec.value
	change := domain.Change{
		Path:       path,
		Kind:       domain.ChangeKindDelete,
		Previous:   &prev,
		Persistent: rec.persistent,
		Source:     source,
		Seq:        i.seq,
		At:         i.now(),
	}
	targets := i.matchListenersLocked(path)
	i.mu.Unlock()

	notify(targets, change)
	return true
}

// SetPersistent меняет флаг persistent у существующей entry.
func (i *Instance) SetPersistent(path string, persistent bool, source domain.ChangeSource) error {
	path = domain.NormalizePath(path)

	i.mu.Lock()
	rec, ok := i.entries[path]
	if !ok {
		i.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if rec.persistent == persistent {
		i.mu.Unlock()
		return nil
	}

	i.seq++
	rec.persistent = persistent
	rec.seq = i.seq
	rec.updatedAt = i.now()

	change := domain.Change{
		Path:       path,
		Kind:       domain.ChangeKindFlags,
		Value:      rec.value.Clone(),
		Persistent: persistent,
		Source:     source,
		Seq:        rec.seq,
		At:         rec.updatedAt,
	}
	targets := i.matchListenersLocked(path)
	i.mu.Unlock()

	notify(targets, change)
	return nil
}

// IsPersistent возвращает флаг persistent. Для отсутствующей entry — false.
func (i *Instance) IsPersistent(path string) bool {
	path = domain.NormalizePath(path)

	i.mu.RLock()
	defer i.mu.RUnlock()

	rec, ok := i.entries[path]
	return ok && rec.persistent
}

// Entries возвращает все entries под префиксом, отсортированные по пути.
// Пустой префикс или "/" — все entries.
func (i *Instance) Entries(prefix string) []domain.Entry {
	prefix = domain.NormalizePath(prefix)

	i.mu.RLock()
	defer i.mu.RUnlock()

	result := make([]domain.Entry, 0, len(i.entries))
	for path, rec := range i.entries {
		if !underPrefix(path, prefix) {
			continue
		}
		result = append(result, rec.entry(path))
	}
	sort.Slice(result, func(a, b int) bool { return result[a].Path < result[b].Path })
	return result
}

// Persistent возвращает все entries с флагом persistent.
func (i *Instance) Persistent() []domain.Entry {
	all := i.Entries("")
	result := all[:0]
	for _, e := range all {
		if e.Persistent {
			result = append(result, e)
		}
	}
	return result
}

// Restore загружает сохранённые entries (например, из БД при старте).
// Восстановленные entries помечаются persistent.
// Entries с несовпадающим типом пропускаются и возвращаются в ошибке.
func (i *Instance) Restore(entries []domain.Entry) error {
	var failed []string
	for _, e := range entries {
		if err := i.Set(e.Path, e.Value, domain.SourceRestore); err != nil {
			failed = append(failed, e.Path)
			continue
		}
		if e.Persistent {
			if err := i.SetPersistent(e.Path, true, domain.SourceRestore); err != nil {
				failed = append(failed, e.Path)
			}
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("restore %d entries failed: %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}

// Seq возвращает номер последнего изменения.
func (i *Instance) Seq() uint64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.seq
}

// Len возвращает количество entries.
func (i *Instance) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// ChangesSince возвращает изменения с seq > since и текущий seq.
//
// Для каждого пути возвращается только последнее состояние:
// несколько записей между вызовами схлопываются в одну.
func (i *Instance) ChangesSince(since uint64) ([]domain.Change, uint64) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var changes []domain.Change
	for path, rec := range i.entries {
		if rec.seq <= since {
			continue
		}
		changes = append(changes, domain.Change{
			Path:       path,
			Kind:       domain.ChangeKindSet,
			Value:      rec.value.Clone(),
			Persistent: rec.persistent,
			Seq:        rec.seq,
			At:         rec.updatedAt,
		})
	}
	for path, seq := range i.tombstones {
		if seq <= since {
			continue
		}
		changes = append(changes, domain.Change{
			Path: path,
			Kind: domain.ChangeKindDelete,
			Seq:  seq,
		})
	}

	sort.Slice(changes, func(a, b int) bool { return changes[a].Seq < changes[b].Seq })
	return changes, i.seq
}

// PruneTombstones удаляет записи об удалениях с seq <= upTo.
// Вызывается после того, как изменения доставлены.
func (i *Instance) PruneTombstones(upTo uint64) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for path, seq := range i.tombstones {
		if seq <= upTo {
			delete(i.tombstones, path)
		}
	}
}

// AddListener подписывает fn на изменения под префиксом.
// Пустой префикс — все изменения.
func (i *Instance) AddListener(prefix string, fn Listener) ListenerID {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.nextListener++
	id := i.nextListener
	i.listeners[id] = listener{prefix: domain.NormalizePath(prefix), fn: fn}
	return id
}

// RemoveListener отписывает listener.
func (i *Instance) RemoveListener(id ListenerID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.listeners, id)
}

// ListenerCount возвращает количество активных подписок.
func (i *Instance) ListenerCount() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.listeners)
}

// matchListenersLocked возвращает listeners для пути в порядке подписки.
// Вызывается под mu.
func (i *Instance) matchListenersLocked(path string) []Listener {
	ids := make([]ListenerID, 0, len(i.listeners))
	for id, l := range i.listeners {
		if underPrefix(path, l.prefix) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

	fns := make([]Listener, len(ids))
	for n, id := range ids {
		fns[n] = i.listeners[id].fn
	}
	return fns
}

func notify(targets []Listener, change domain.Change) {
	for _, fn := range targets {
		fn(change)
	}
}

func (r *record) entry(path string) domain.Entry {
	return domain.Entry{
		Path:       path,
		Value:      r.value.Clone(),
		Persistent: r.persistent,
		Seq:        r.seq,
		UpdatedAt:  r.updatedAt,
	}
}

// underPrefix проверяет, что path совпадает с prefix или лежит под ним.
func underPrefix(path, prefix string) bool {
	if prefix == domain.PathSeparator {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+domain.PathSeparator)
}
