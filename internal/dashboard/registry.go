package dashboard

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shaiso/Dashboard/internal/sendable"
)

// Binding — пара ключ/Handle из снимка реестра.
type Binding struct {
	Key    string
	Handle *Handle
}

// Registry — реестр виджетов по ключам.
//
// Потокобезопасен: блокировка внутренняя, вызывающему не нужно
// ничего захватывать. Add, Put, Remove и Clear взаимно упорядочены.
// Release-хуки вытесненных Handle вызываются после снятия блокировки,
// но до возврата из метода.
type Registry struct {
	mu      sync.RWMutex
	widgets map[string]*Handle
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		widgets: make(map[string]*Handle),
	}
}

// Add регистрирует data под key. Предыдущий виджет с этим ключом
// освобождается. Возвращает Handle, принадлежащий реестру;
// чтобы удержать виджет дольше реестра, вызывающий делает Acquire.
func (r *Registry) Add(key string, data sendable.Sendable) (*Handle, error) {
	if data == nil {
		return nil, ErrNilData
	}
	h := NewHandle(data)
	if err := r.Put(key, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Put регистрирует готовый Handle. Реестр забирает ссылку вызывающего.
// Повторный Put уже зарегистрированного под тем же ключом Handle — no-op.
func (r *Registry) Put(key string, h *Handle) error {
	if key == "" {
		return ErrEmptyKey
	}
	if h == nil || h.Data() == nil {
		return ErrNilData
	}

	r.mu.Lock()
	prev := r.widgets[key]
	r.widgets[key] = h
	r.mu.Unlock()

	if prev != nil && prev != h {
		prev.Release()
	}
	return nil
}

// Get возвращает виджет по ключу.
func (r *Registry) Get(key string) (sendable.Sendable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.widgets[key]
	if !ok {
		return nil, false
	}
	return h.Data(), true
}

// Lookup возвращает виджет или ErrNotFound.
func (r *Registry) Lookup(key string) (sendable.Sendable, error) {
	data, ok := r.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return data, nil
}

// Acquire возвращает Handle с дополнительной ссылкой для вызывающего.
// Вызывающий обязан сделать Release.
func (r *Registry) Acquire(key string) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.widgets[key]
	if !ok || !h.Acquire() {
		return nil, false
	}
	return h, true
}

// Has проверяет, зарегистрирован ли ключ.
func (r *Registry) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.widgets[key]
	return exists
}

// Keys возвращает ключи в алфавитном порядке.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.widgets))
	for k := range r.widgets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len возвращает количество виджетов.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.widgets)
}

// Remove удаляет виджет и освобождает его Handle.
func (r *Registry) Remove(key string) bool {
	r.mu.Lock()
	h, ok := r.widgets[key]
	delete(r.widgets, key)
	r.mu.Unlock()

	if ok {
		h.Release()
	}
	return ok
}

// Clear удаляет все виджеты и освобождает их Handle.
// После возврата реестр пуст.
func (r *Registry) Clear() {
	r.mu.Lock()
	old := r.widgets
	r.widgets = make(map[string]*Handle)
	r.mu.Unlock()

	for _, h := range old {
		h.Release()
	}
}

// Snapshot возвращает все виджеты, отсортированные по ключу, с захваченными
// ссылками. Вызывающий отпускает каждую через Release (или ReleaseAll).
func (r *Registry) Snapshot() []Binding {
	r.mu.RLock()
	bindings := make([]Binding, 0, len(r.widgets))
	for k, h := range r.widgets {
		if h.Acquire() {
			bindings = append(bindings, Binding{Key: k, Handle: h})
		}
	}
	r.mu.RUnlock()

	sort.Slice(bindings, func(i, j int) bool { return bindings[i].Key < bindings[j].Key })
	return bindings
}

// ReleaseAll отпускает ссылки, полученные через Snapshot.
func ReleaseAll(bindings []Binding) {
	for _, b := range bindings {
		b.Handle.Release()
	}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default возвращает общий реестр процесса, создавая его при первом вызове.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// ResetDefault очищает и сбрасывает общий реестр (для тестов).
func ResetDefault() {
	if defaultRegistry != nil {
		defaultRegistry.Clear()
	}
	defaultRegistry = nil
	defaultRegistryOnce = sync.Once{}
}
