package dashboard

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Dashboard/internal/sendable"
)

// stubWidget — виджет без свойств.
type stubWidget struct {
	id string
}

func (s *stubWidget) InitSendable(sendable.Builder) {}

func TestRegistry_LastWriterWins(t *testing.T) {
	r := NewRegistry()
	s1, s2 := &stubWidget{"S1"}, &stubWidget{"S2"}

	h1, err := r.Add("speed", s1)
	require.NoError(t, err)
	_, err = r.Add("speed", s2)
	require.NoError(t, err)

	got, ok := r.Get("speed")
	require.True(t, ok)
	assert.Same(t, s2, got)
	assert.Equal(t, 1, r.Len())

	// Вытесненный handle освобождён
	assert.True(t, h1.Released())
}

func TestRegistry_PutSameHandleTwice(t *testing.T) {
	r := NewRegistry()
	w := &stubWidget{"w"}

	h, err := r.Add("k", w)
	require.NoError(t, err)
	released := 0
	h.OnRelease(func() { released++ })

	require.NoError(t, r.Put("k", h))

	assert.False(t, h.Released())
	assert.Equal(t, 1, h.Refs())
	assert.Zero(t, released)

	got, ok := r.Get("k")
	require.True(t, ok)
	assert.Same(t, w, got)

	held, ok := r.Acquire("k")
	require.True(t, ok)
	held.Release()

	r.Clear()
	assert.True(t, h.Released())
	assert.Equal(t, 1, released)
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry()

	h, _ := r.Add("angle", &stubWidget{"A1"})
	r.Add("speed", &stubWidget{"S1"})

	r.Clear()

	_, ok := r.Get("angle")
	assert.False(t, ok)
	assert.Zero(t, r.Len())
	assert.True(t, h.Released())

	_, err := r.Lookup("angle")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_AddClearAdd(t *testing.T) {
	r := NewRegistry()

	first := &stubWidget{"first"}
	second := &stubWidget{"second"}

	h1, _ := r.Add("k", first)
	hookCalls := 0
	h1.OnRelease(func() { hookCalls++ })

	r.Clear()
	r.Add("k", second)

	got, _ := r.Get("k")
	assert.Same(t, second, got)

	// Первый handle полностью освобождён
	assert.Equal(t, 0, h1.Refs())
	assert.Equal(t, 1, hookCalls)
	assert.False(t, h1.Acquire(), "released handle must not be acquirable")
}

func TestRegistry_SharedOwnership(t *testing.T) {
	r := NewRegistry()
	h, _ := r.Add("k", &stubWidget{"w"})

	held, ok := r.Acquire("k")
	require.True(t, ok)
	require.Same(t, h, held)
	assert.Equal(t, 2, h.Refs())

	// Реестр отпускает свою ссылку, но виджет жив у второго владельца
	r.Remove("k")
	assert.False(t, h.Released())

	held.Release()
	assert.True(t, h.Released())

	// Лишний Release — no-op
	held.Release()
	assert.Equal(t, 0, h.Refs())
}

func TestRegistry_Validation(t *testing.T) {
	r := NewRegistry()

	_, err := r.Add("k", nil)
	assert.ErrorIs(t, err, ErrNilData)
	_, err = r.Add("", &stubWidget{})
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, r.Put("k", nil), ErrNilData)
	assert.Zero(t, r.Len())
}

func TestRegistry_KeysAndSnapshot(t *testing.T) {
	r := NewRegistry()
	for _, k := range []string{"c", "a", "b"} {
		r.Add(k, &stubWidget{k})
	}

	assert.Equal(t, []string{"a", "b", "c"}, r.Keys())

	snap := r.Snapshot()
	require.Len(t, snap, 3)
	require.Equal(t, "a", snap[0].Key)

	// Clear во время работы со снимком не освобождает виджеты
	r.Clear()
	for _, b := range snap {
		assert.False(t, b.Handle.Released(), "%s released while snapshot holds it", b.Key)
	}

	ReleaseAll(snap)
	for _, b := range snap {
		assert.True(t, b.Handle.Released(), "%s should be released", b.Key)
	}
}

func TestRegistry_ConcurrentAdds(t *testing.T) {
	r := NewRegistry()

	const goroutines = 16
	const perGoroutine = 200

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		handles []*Handle
	)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for n := 0; n < perGoroutine; n++ {
				key := fmt.Sprintf("k%d", n%10)
				h, err := r.Add(key, &stubWidget{fmt.Sprintf("%d-%d", g, n)})
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				handles = append(handles, h)
				mu.Unlock()
				if n%50 == 0 {
					r.Clear()
				}
			}
		}(g)
	}
	wg.Wait()

	// Каждый ключ — не более одного виджета, ровно len(Keys) живых handle
	alive := 0
	for _, h := range handles {
		if !h.Released() {
			alive++
		}
	}
	assert.Equal(t, r.Len(), alive)
	assert.LessOrEqual(t, r.Len(), 10)

	r.Clear()
	for _, h := range handles {
		require.True(t, h.Released(), "all handles should be released after final clear")
	}
}

func TestDefault(t *testing.T) {
	t.Cleanup(ResetDefault)

	a := Default()
	assert.Same(t, a, Default())
	h, _ := a.Add("k", &stubWidget{"w"})

	ResetDefault()
	assert.True(t, h.Released())
	assert.NotSame(t, a, Default())
}
