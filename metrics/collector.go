// Package metrics exposes the live tick state as Prometheus metrics,
// wired in only when the caller opts into the -prom flag.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ftahirops/xnet/engine"
	"github.com/ftahirops/xnet/model"
)

type metric struct {
	description *prometheus.Desc
	supplier    func(d *prometheus.Desc, snap *model.Snapshot, eng *engine.Engine) []prometheus.Metric
}

// Collector implements prometheus.Collector over the engine's most recent
// tick: connection counts by state, current rates, and sniffer totals.
// The held snapshot is read and replaced under mu since the tick loop
// updates it concurrently with promhttp's own goroutine; Describe only
// reads the fixed metric list and takes no lock.
type Collector struct {
	mu   sync.Mutex
	eng  *engine.Engine
	snap *model.Snapshot

	metrics []metric
}

func New(eng *engine.Engine) *Collector {
	return &Collector{
		eng: eng,
		metrics: []metric{
			{
				description: prometheus.NewDesc(
					"xnet_connections_total", "Number of tracked sockets by protocol and state.",
					[]string{"protocol", "state"}, nil,
				),
				supplier: connectionsByState,
			},
			{
				description: prometheus.NewDesc(
					"xnet_download_bytes_per_second", "Current download rate in bytes/sec.", nil, nil,
				),
				supplier: func(d *prometheus.Desc, snap *model.Snapshot, _ *engine.Engine) []prometheus.Metric {
					return []prometheus.Metric{prometheus.MustNewConstMetric(d, prometheus.GaugeValue, snap.Speed.CurrentDown)}
				},
			},
			{
				description: prometheus.NewDesc(
					"xnet_upload_bytes_per_second", "Current upload rate in bytes/sec.", nil, nil,
				),
				supplier: func(d *prometheus.Desc, snap *model.Snapshot, _ *engine.Engine) []prometheus.Metric {
					return []prometheus.Metric{prometheus.MustNewConstMetric(d, prometheus.GaugeValue, snap.Speed.CurrentUp)}
				},
			},
			{
				description: prometheus.NewDesc(
					"xnet_snippets_captured_total", "Total packet snippets captured by the sniffer since start.", nil, nil,
				),
				supplier: func(d *prometheus.Desc, _ *model.Snapshot, eng *engine.Engine) []prometheus.Metric {
					return []prometheus.Metric{prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(eng.Sniffer.TotalCaptured()))}
				},
			},
		},
	}
}

// Update replaces the snapshot Collect reads from. Called once per tick.
func (c *Collector) Update(snap *model.Snapshot) {
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.description
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	snap := c.snap
	c.mu.Unlock()
	if snap == nil {
		return
	}
	for _, m := range c.metrics {
		for _, sample := range m.supplier(m.description, snap, c.eng) {
			ch <- sample
		}
	}
}

func connectionsByState(d *prometheus.Desc, snap *model.Snapshot, _ *engine.Engine) []prometheus.Metric {
	counts := make(map[[2]string]int)
	for _, c := range snap.Connections {
		state := c.State.String()
		if state == "" {
			state = "NONE"
		}
		counts[[2]string{c.Protocol.String(), state}]++
	}

	out := make([]prometheus.Metric, 0, len(counts))
	for key, n := range counts {
		out = append(out, prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(n), key[0], key[1]))
	}
	return out
}
