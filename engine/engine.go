package engine

import (
	"sync"
	"time"

	"github.com/ftahirops/xnet/collector"
	"github.com/ftahirops/xnet/model"
)

// Engine orchestrates one tick of collection, DNS attachment, and traffic
// diffing. It owns every piece of state the main tick loop touches except
// the sniffer's shared ring, which is safe for concurrent access on its
// own.
type Engine struct {
	socket *collector.SocketCollector
	dns    *collector.DnsCollector
	speed  *SpeedSampler
	tracker *TrafficTracker

	PidCache *model.PidCache
	DnsCache *model.DnsCache
	Sniffer  *PacketSniffer

	tickMu sync.Mutex // serializes Tick() calls
}

// NewEngine builds an engine sized per config: historyPoints controls the
// speed sampler's rolling window, maxLogSize bounds the traffic log, and
// maxSnippets bounds the sniffer's ring.
func NewEngine(historyPoints, maxLogSize, maxSnippets int) *Engine {
	pidCache := model.NewPidCache()
	dnsCache := model.NewDnsCache()
	sniffer := NewPacketSniffer(maxSnippets)
	sniffer.Start()

	return &Engine{
		socket:   collector.NewSocketCollector(pidCache),
		dns:      collector.NewDnsCollector(),
		speed:    NewSpeedSampler(historyPoints),
		tracker:  NewTrafficTracker(maxLogSize),
		PidCache: pidCache,
		DnsCache: dnsCache,
		Sniffer:  sniffer,
	}
}

// Tick performs one collection + diff cycle and returns the resulting
// snapshot. Serialized via tickMu so overlapping callers never collect
// concurrently.
func (e *Engine) Tick() (*model.Snapshot, error) {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	now := time.Now()
	snap := &model.Snapshot{Timestamp: now}

	if err := e.socket.Collect(snap); err != nil {
		snap.Errors = append(snap.Errors, err.Error())
	}

	e.dns.Refresh(e.DnsCache)
	attachHostnames(snap.Connections, e.DnsCache)

	snap.Speed = e.speed.Sample(now, snap)

	e.tracker.Update(snap.Connections)

	return snap, nil
}

// Tracker exposes the traffic tracker for the UI/app layer.
func (e *Engine) Tracker() *TrafficTracker { return e.tracker }

// Close stops the background sniffer goroutine. Called on shutdown.
func (e *Engine) Close() {
	e.Sniffer.Stop()
}

// attachHostnames applies the hostname-attachment policy: no remote
// endpoint means no hostname; loopback always resolves to "localhost"
// regardless of cache contents; otherwise consult the DNS cache.
func attachHostnames(conns []model.Connection, cache *model.DnsCache) {
	for i := range conns {
		if !conns[i].HasRemote() {
			continue
		}
		if model.IsLoopback(conns[i].Remote.Addr) {
			conns[i].Hostname = "localhost"
			continue
		}
		if name, ok := cache.Lookup(conns[i].Remote.Addr); ok {
			conns[i].Hostname = name
		}
	}
}
