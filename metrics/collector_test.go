package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ftahirops/xnet/engine"
	"github.com/ftahirops/xnet/model"
)

func newTestEngine(t *testing.T) *engine.Engine {
	eng := engine.NewEngine(1, 1, 1)
	t.Cleanup(eng.Close)
	return eng
}

func TestCollectorDescribeEmitsOneDescPerMetric(t *testing.T) {
	c := New(newTestEngine(t))
	ch := make(chan *prometheus.Desc, 16)
	c.Describe(ch)
	close(ch)

	n := 0
	for range ch {
		n++
	}
	if n != len(c.metrics) {
		t.Fatalf("Describe() emitted %d descs, want %d", n, len(c.metrics))
	}
}

func TestCollectorCollectBeforeUpdateEmitsNothing(t *testing.T) {
	c := New(newTestEngine(t))
	ch := make(chan prometheus.Metric, 16)
	c.Collect(ch)
	close(ch)

	n := 0
	for range ch {
		n++
	}
	if n != 0 {
		t.Errorf("Collect() before any Update() emitted %d samples, want 0", n)
	}
}

func TestCollectorCollectAfterUpdateEmitsSamples(t *testing.T) {
	c := New(newTestEngine(t))
	snap := &model.Snapshot{
		Connections: []model.Connection{
			{Protocol: model.TCP, State: model.StateEstablished},
			{Protocol: model.TCP, State: model.StateListen},
		},
		Speed: model.SpeedState{CurrentDown: 100, CurrentUp: 50},
	}
	c.Update(snap)

	ch := make(chan prometheus.Metric, 16)
	c.Collect(ch)
	close(ch)

	n := 0
	for range ch {
		n++
	}
	// 2 distinct (protocol,state) groups + down rate + up rate + snippets
	// counter (the counter emits a zero-value sample even with nothing captured).
	if n != 5 {
		t.Fatalf("Collect() after Update() emitted %d samples, want 5", n)
	}
}
