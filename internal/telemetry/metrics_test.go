package telemetry

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.Widgets.Set(2)
	m.Ticks.Inc()
	m.HTTPRequests.WithLabelValues("GET", "200").Inc()

	if got := testutil.ToFloat64(m.Widgets); got != 2 {
		t.Errorf("expected widgets 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "200")); got != 1 {
		t.Errorf("expected 1 request, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Error("expected registered metric families")
	}
}

func TestNewMetrics_NilRegisterer(t *testing.T) {
	// Повторное создание без регистрации не паникует
	NewMetrics(nil)
	NewMetrics(nil)
}

func TestWithAttrs(t *testing.T) {
	logger := WithSnapshotID(WithWidgetKey(Nop(), "speed"), "abc")
	if logger == nil {
		t.Fatal("expected logger")
	}
}

func TestObserveRemoteWrite(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveRemoteWrite("api", nil)
	m.ObserveRemoteWrite("api", errors.New("boom"))
	m.ObserveRemoteWrite("mq", nil)

	if got := testutil.ToFloat64(m.RemoteWrites.WithLabelValues("api", "ok")); got != 1 {
		t.Errorf("expected 1 ok api write, got %v", got)
	}
	if got := testutil.ToFloat64(m.RemoteWrites.WithLabelValues("api", "error")); got != 1 {
		t.Errorf("expected 1 failed api write, got %v", got)
	}

	// nil metrics — no-op
	var nilMetrics *Metrics
	nilMetrics.ObserveRemoteWrite("api", nil)
}
