package engine

import (
	"strconv"
	"strings"
	"time"

	"github.com/ftahirops/xnet/model"
)

// connInfo is the slice of a Connection the tracker needs to remember
// across ticks in order to diff it against the next snapshot.
type connInfo struct {
	state       model.TcpState
	processName string
	protocol    model.Protocol
	outbound    bool
	hostname    string
}

// TrafficTracker diffs consecutive connection snapshots into a bounded,
// append-only log of lifecycle events.
type TrafficTracker struct {
	prev map[model.ConnKey]connInfo
	log  []model.TrafficEntry

	paused        bool
	autoScroll    bool
	scrollOffset  int
	filterText    string
	hideLocalhost bool
	maxLogSize    int
}

func NewTrafficTracker(maxLogSize int) *TrafficTracker {
	return &TrafficTracker{
		prev:       make(map[model.ConnKey]connInfo),
		autoScroll: true,
		maxLogSize: maxLogSize,
	}
}

// SetPaused toggles whether Update is a no-op.
func (t *TrafficTracker) SetPaused(paused bool) { t.paused = paused }
func (t *TrafficTracker) Paused() bool          { return t.paused }

func (t *TrafficTracker) Log() []model.TrafficEntry { return t.log }

// Update diffs connections against the previous tick's set and appends any
// lifecycle events observed. While paused it returns immediately without
// touching prev or the log.
func (t *TrafficTracker) Update(connections []model.Connection) {
	if t.paused {
		return
	}

	now := time.Now()
	current := make(map[model.ConnKey]connInfo, len(connections))

	for _, c := range connections {
		if shouldExcludeFromDiff(c) {
			continue
		}
		key := c.Key()
		info := connInfo{
			state:       c.State,
			processName: c.ProcessName,
			protocol:    c.Protocol,
			outbound:    c.IsOutbound(),
			hostname:    c.Hostname,
		}
		current[key] = info

		prevInfo, existed := t.prev[key]
		if !existed {
			t.append(model.TrafficEntry{
				Time:        now,
				Kind:        model.NewConnectionEvent(),
				Protocol:    c.Protocol,
				Local:       c.Local,
				Remote:      c.Remote,
				ProcessName: c.ProcessName,
				Outbound:    info.outbound,
				StateLabel:  c.State.String(),
				Hostname:    c.Hostname,
			})
			continue
		}
		if prevInfo.state.HasState() && info.state.HasState() && prevInfo.state != info.state {
			t.append(model.TrafficEntry{
				Time:        now,
				Kind:        model.StateChangeEvent(prevInfo.state, info.state),
				Protocol:    c.Protocol,
				Local:       c.Local,
				Remote:      c.Remote,
				ProcessName: c.ProcessName,
				Outbound:    info.outbound,
				StateLabel:  info.state.String(),
				Hostname:    c.Hostname,
			})
		}
	}

	for key, prevInfo := range t.prev {
		if _, stillPresent := current[key]; stillPresent {
			continue
		}
		label := prevInfo.state.String()
		if label == "" {
			label = "CLOSED"
		}
		remote := model.Endpoint{}
		if key.RemoteAddr != "" {
			remote = model.Endpoint{Addr: key.RemoteAddr, Port: key.RemotePort}
		}
		t.append(model.TrafficEntry{
			Time:        now,
			Kind:        model.ConnectionClosedEvent(),
			Protocol:    key.Protocol,
			Local:       model.Endpoint{Addr: key.LocalAddr, Port: key.LocalPort},
			Remote:      remote,
			ProcessName: prevInfo.processName,
			Outbound:    prevInfo.outbound,
			StateLabel:  label,
			Hostname:    prevInfo.hostname,
		})
	}

	t.prev = current
}

// append enforces the bounded-log invariant, trimming from the head.
func (t *TrafficTracker) append(e model.TrafficEntry) {
	t.log = append(t.log, e)
	if len(t.log) > t.maxLogSize {
		t.log = t.log[len(t.log)-t.maxLogSize:]
	}
	if t.autoScroll {
		t.scrollOffset = len(t.log)
	}
}

// shouldExcludeFromDiff filters records that never participate in the diff,
// though they remain visible in the connection snapshot itself.
func shouldExcludeFromDiff(c model.Connection) bool {
	if c.Protocol == model.TCP && c.State == model.StateListen {
		return true
	}
	if c.Protocol == model.UDP && !c.HasRemote() {
		return true
	}
	return false
}

// FilteredLog returns the log entries matching filterText (case-insensitive
// substring over process/local/remote/state/protocol/hostname), further
// restricted by hideLocalhost when set.
func (t *TrafficTracker) FilteredLog(filterText string, hideLocalhost bool) []model.TrafficEntry {
	if filterText == "" && !hideLocalhost {
		return t.log
	}
	out := make([]model.TrafficEntry, 0, len(t.log))
	for _, e := range t.log {
		if hideLocalhost && model.IsLoopback(e.Local.Addr) && model.IsLoopback(e.Remote.Addr) {
			continue
		}
		if filterText != "" && !entryMatchesFilter(e, filterText) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func entryMatchesFilter(e model.TrafficEntry, filter string) bool {
	filter = strings.ToLower(filter)
	fields := []string{
		e.ProcessName,
		e.Local.Addr, strconv.Itoa(int(e.Local.Port)),
		e.Remote.Addr, strconv.Itoa(int(e.Remote.Port)),
		e.StateLabel,
		e.Protocol.String(),
		e.Hostname,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), filter) {
			return true
		}
	}
	return false
}
