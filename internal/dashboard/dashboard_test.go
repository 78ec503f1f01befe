package dashboard

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Dashboard/internal/domain"
	"github.com/shaiso/Dashboard/internal/sendable"
	"github.com/shaiso/Dashboard/internal/table"
	"github.com/shaiso/Dashboard/internal/telemetry"
)

func newTestDashboard(t *testing.T) *Dashboard {
	t.Helper()
	return New(Config{
		Logger:  telemetry.Nop(),
		Metrics: telemetry.NewMetrics(prometheus.NewRegistry()),
	})
}

func TestDashboard_Basic(t *testing.T) {
	d := newTestDashboard(t)
	ntsd := d.Instance().Table("SmartDashboard")

	require.NoError(t, ntsd.Entry("bool").SetBoolean(true))
	assert.True(t, d.GetBoolean("bool", false))

	require.NoError(t, d.PutNumber("number", 1))
	assert.Equal(t, 1.0, ntsd.Entry("number").GetDouble(0))

	assert.Equal(t, "none", d.GetString("string", "none"))
	require.NoError(t, ntsd.Entry("string").SetString("s"))
	assert.Equal(t, "s", d.GetString("string", "none"))

	require.NoError(t, d.PutStringArray("names", []string{"a"}))
	assert.Equal(t, []string{"a"}, d.GetStringArray("names", nil))
	assert.Equal(t, []string{"bool", "names", "number", "string"}, d.Keys())

	ok, err := d.SetDefaultNumber("number", 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDashboard_Chooser(t *testing.T) {
	d := newTestDashboard(t)

	o1, o2, o3 := new(int), new(int), new(int)
	chooser := sendable.NewChooser[*int]()
	chooser.AddOption("o1", o1)
	chooser.AddOption("o2", o2)
	chooser.SetDefaultOption("o3", o3)

	assert.Same(t, o3, chooser.Selected())

	require.NoError(t, d.PutData("Autonomous Mode", chooser))
	assert.Same(t, o3, chooser.Selected())

	ct := d.Instance().Table("SmartDashboard").SubTable("Autonomous Mode")
	err := d.Instance().Set(ct.Entry(sendable.ChooserSelected).Path(), domain.StringValue("o1"), domain.SourceRemote)
	require.NoError(t, err)

	assert.Same(t, o1, chooser.Selected())

	got, err := d.GetData("Autonomous Mode")
	require.NoError(t, err)
	assert.Same(t, chooser, got)
}

func TestDashboard_GetDataNotFound(t *testing.T) {
	d := newTestDashboard(t)

	_, err := d.GetData("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, d.PutData("k", nil), ErrNilData)
	assert.ErrorIs(t, d.PutData("", sendable.NewToggle("x")), ErrEmptyKey)
}

func TestDashboard_OverwriteDetachesPrevious(t *testing.T) {
	d := newTestDashboard(t)
	inst := d.Instance()

	first := sendable.NewToggle("Claw")
	second := sendable.NewToggle("Claw")

	require.NoError(t, d.PutNamedData(first))
	listeners := inst.ListenerCount()

	require.NoError(t, d.PutNamedData(second))
	assert.Equal(t, listeners, inst.ListenerCount())

	path := d.Table().SubTable("Claw").Entry("Value").Path()
	require.NoError(t, inst.Set(path, domain.BooleanValue(true), domain.SourceRemote))

	assert.False(t, first.Get(), "detached widget must not receive writes")
	assert.True(t, second.Get())
}

func TestDashboard_PutSameDataTwice(t *testing.T) {
	d := newTestDashboard(t)
	tg := sendable.NewToggle("Claw")

	require.NoError(t, d.PutNamedData(tg))
	h, ok := d.Registry().Acquire("Claw")
	require.True(t, ok)
	defer h.Release()

	require.NoError(t, d.PutNamedData(tg))

	// Тот же объект — handle не пересоздаётся
	h2, ok := d.Registry().Acquire("Claw")
	require.True(t, ok)
	defer h2.Release()
	assert.Same(t, h, h2)
}

func TestDashboard_PutSameDataConcurrently(t *testing.T) {
	d := newTestDashboard(t)
	inst := d.Instance()
	tg := sendable.NewToggle("Claw")

	// Эталон: одна регистрация на отдельном экземпляре
	ref := newTestDashboard(t)
	before := ref.Instance().ListenerCount()
	require.NoError(t, ref.PutNamedData(sendable.NewToggle("Claw")))
	perWidget := ref.Instance().ListenerCount() - before

	base := inst.ListenerCount()

	const goroutines = 32
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, d.PutNamedData(tg))
		}()
	}
	wg.Wait()

	assert.Equal(t, base+perWidget, inst.ListenerCount())

	widgets := d.Widgets()
	require.Len(t, widgets, 1)
	assert.Equal(t, 1, widgets[0].Refs)

	d.mu.Lock()
	builders := len(d.builders)
	d.mu.Unlock()
	assert.Equal(t, 1, builders)
}

func TestDashboard_ClearData(t *testing.T) {
	d := newTestDashboard(t)
	inst := d.Instance()
	before := inst.ListenerCount()

	tg := sendable.NewToggle("Claw")
	require.NoError(t, d.PutNamedData(tg))
	require.NoError(t, d.PutData("Accel", sendable.NewAccelerometer("Accel", sendable.NewSimAccel())))
	assert.Equal(t, 2.0, testutil.ToFloat64(d.metrics.Widgets))

	d.ClearData()

	assert.Equal(t, 0, d.Registry().Len())
	assert.Equal(t, before, inst.ListenerCount())
	assert.Equal(t, 0.0, testutil.ToFloat64(d.metrics.Widgets))

	_, err := d.GetData("Claw")
	assert.ErrorIs(t, err, ErrNotFound)

	// Entries остаются, но виджет больше не управляется
	path := d.Table().SubTable("Claw").Entry("Value").Path()
	require.NoError(t, inst.Set(path, domain.BooleanValue(true), domain.SourceRemote))
	assert.False(t, tg.Get())
}

func TestDashboard_UpdateValues(t *testing.T) {
	d := newTestDashboard(t)

	accel := sendable.NewSimAccel()
	require.NoError(t, d.PutData("BuiltInAccel", sendable.NewAccelerometer("BuiltInAccel", accel)))
	require.NoError(t, d.PutNamedData(sendable.NewToggle("Claw")))

	accel.Set(0.1, 0.2, 0.3)

	n, err := d.UpdateValues()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0.2, d.Table().SubTable("BuiltInAccel").Entry("Y").GetDouble(0))

	widgets := d.Widgets()
	require.Len(t, widgets, 2)
	assert.Equal(t, "BuiltInAccel", widgets[0].Key)
	assert.Equal(t, sendable.AccelerometerType, widgets[0].Type)
	assert.Equal(t, 1, widgets[0].Refs)
	assert.Equal(t, sendable.ToggleType, widgets[1].Type)
}

func TestDashboard_UpdateValuesError(t *testing.T) {
	d := newTestDashboard(t)

	// Ключ свойства занят значением другого типа
	require.NoError(t, d.Table().SubTable("Battery").Entry("Value").SetString("n/a"))
	require.NoError(t, d.PutNamedData(sendable.NewNumber("Battery", func() float64 { return 12 })))

	n, err := d.UpdateValues()
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, table.ErrTypeMismatch)
}

func TestDashboard_Persistent(t *testing.T) {
	d := newTestDashboard(t)

	assert.ErrorIs(t, d.SetPersistent("gain"), table.ErrNotFound)

	require.NoError(t, d.PutNumber("gain", 0.5))
	require.NoError(t, d.SetPersistent("gain"))
	assert.True(t, d.IsPersistent("gain"))

	require.NoError(t, d.ClearPersistent("gain"))
	assert.False(t, d.IsPersistent("gain"))

	assert.True(t, d.Delete("gain"))
	assert.False(t, d.ContainsKey("gain"))
}
