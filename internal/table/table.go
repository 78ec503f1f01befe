package table

import (
	"sort"
	"strings"

	"github.com/shaiso/Dashboard/internal/domain"
)

// Table — представление поддерева Instance.
//
// Table не хранит данных: все операции делегируются Instance
// с путями относительно Path().
type Table struct {
	inst *Instance
	path string
}

// Path возвращает полный путь таблицы.
func (t *Table) Path() string {
	return t.path
}

// Name возвращает последний сегмент пути.
func (t *Table) Name() string {
	_, name := domain.SplitPath(t.path)
	return name
}

// Instance возвращает хранилище, к которому привязана таблица.
func (t *Table) Instance() *Instance {
	return t.inst
}

// SubTable возвращает вложенную таблицу.
func (t *Table) SubTable(name string) *Table {
	return &Table{inst: t.inst, path: domain.JoinPath(t.path, name)}
}

// Entry возвращает entry по ключу относительно таблицы.
func (t *Table) Entry(key string) *Entry {
	return &Entry{inst: t.inst, path: domain.JoinPath(t.path, key)}
}

// Keys возвращает ключи entries, лежащих непосредственно в таблице.
func (t *Table) Keys() []string {
	keys, _ := t.children()
	return keys
}

// SubTables возвращает имена непосредственных подтаблиц.
func (t *Table) SubTables() []string {
	_, subs := t.children()
	return subs
}

// ContainsKey проверяет наличие entry в таблице.
func (t *Table) ContainsKey(key string) bool {
	return t.Entry(key).Exists()
}

// ContainsSubTable проверяет, есть ли entries под подтаблицей name.
func (t *Table) ContainsSubTable(name string) bool {
	return len(t.inst.Entries(domain.JoinPath(t.path, name))) > 0
}

// Delete удаляет entry по ключу.
func (t *Table) Delete(key string) bool {
	return t.inst.Delete(domain.JoinPath(t.path, key), domain.SourceLocal)
}

// Entries возвращает все entries под таблицей (рекурсивно).
func (t *Table) Entries() []domain.Entry {
	return t.inst.Entries(t.path)
}

// AddListener подписывается на изменения под таблицей.
func (t *Table) AddListener(fn Listener) ListenerID {
	return t.inst.AddListener(t.path, fn)
}

// RemoveListener отписывает listener.
func (t *Table) RemoveListener(id ListenerID) {
	t.inst.RemoveListener(id)
}

// RelativeKey возвращает путь относительно таблицы.
// Для путей вне таблицы возвращает false.
func (t *Table) RelativeKey(path string) (string, bool) {
	path = domain.NormalizePath(path)
	if !underPrefix(path, t.path) || path == t.path {
		return "", false
	}
	if t.path == domain.PathSeparator {
		return strings.TrimPrefix(path, domain.PathSeparator), true
	}
	return strings.TrimPrefix(path, t.path+domain.PathSeparator), true
}

// children разбирает entries под таблицей на прямые ключи и подтаблицы.
func (t *Table) children() (keys, subs []string) {
	seenSubs := make(map[string]bool)
	for _, e := range t.inst.Entries(t.path) {
		rel, ok := t.RelativeKey(e.Path)
		if !ok {
			continue
		}
		if idx := strings.Index(rel, domain.PathSeparator); idx >= 0 {
			sub := rel[:idx]
			if !seenSubs[sub] {
				seenSubs[sub] = true
				subs = append(subs, sub)
			}
			continue
		}
		keys = append(keys, rel)
	}
	sort.Strings(keys)
	sort.Strings(subs)
	return keys, subs
}
