package dashboard

import (
	"sync"

	"github.com/shaiso/Dashboard/internal/sendable"
)

// Handle — разделяемая ссылка на виджет со счётчиком ссылок.
//
// Владельцы (реестр, цикл публикации, API) берут ссылку через Acquire
// и отпускают через Release. Когда счётчик доходит до нуля, хуки
// OnRelease вызываются ровно один раз в порядке регистрации, и Handle
// больше нельзя захватить.
type Handle struct {
	data sendable.Sendable

	mu       sync.Mutex
	refs     int
	released bool
	hooks    []func()
}

// NewHandle создаёт Handle с одной ссылкой (ссылкой создателя).
func NewHandle(data sendable.Sendable) *Handle {
	return &Handle{data: data, refs: 1}
}

// Data возвращает виджет.
func (h *Handle) Data() sendable.Sendable {
	return h.data
}

// Acquire добавляет ссылку. Возвращает false, если Handle уже освобождён.
func (h *Handle) Acquire() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return false
	}
	h.refs++
	return true
}

// Release отпускает ссылку. Лишние вызовы после освобождения — no-op.
func (h *Handle) Release() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.refs--
	if h.refs > 0 {
		h.mu.Unlock()
		return
	}
	h.released = true
	hooks := h.hooks
	h.hooks = nil
	h.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// OnRelease регистрирует хук освобождения.
// Для уже освобождённого Handle хук вызывается сразу.
func (h *Handle) OnRelease(fn func()) {
	h.mu.Lock()
	if !h.released {
		h.hooks = append(h.hooks, fn)
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()
	fn()
}

// Refs возвращает текущее количество ссылок.
func (h *Handle) Refs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refs
}

// Released возвращает true, если все ссылки отпущены.
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}
