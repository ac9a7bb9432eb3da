package engine

import (
	"testing"

	"github.com/ftahirops/xnet/model"
)

func conn(proto model.Protocol, localPort, remotePort uint16, state model.TcpState) model.Connection {
	c := model.Connection{
		Protocol:    proto,
		Local:       model.Endpoint{Addr: "10.0.0.5", Port: localPort},
		State:       state,
		PID:         100,
		ProcessName: "app.exe",
	}
	if remotePort != 0 {
		c.Remote = model.Endpoint{Addr: "1.2.3.4", Port: remotePort}
	}
	return c
}

func TestTrafficTrackerEmitsNewConnection(t *testing.T) {
	tr := NewTrafficTracker(100)
	tr.Update([]model.Connection{conn(model.TCP, 51000, 443, model.StateEstablished)})

	log := tr.Log()
	if len(log) != 1 {
		t.Fatalf("len(Log()) = %d, want 1", len(log))
	}
	if !log[0].Kind.IsNewConnection() {
		t.Errorf("Kind = %v, want NewConnection", log[0].Kind)
	}
}

func TestTrafficTrackerEmitsStateChange(t *testing.T) {
	tr := NewTrafficTracker(100)
	tr.Update([]model.Connection{conn(model.TCP, 51000, 443, model.StateSynSent)})
	tr.Update([]model.Connection{conn(model.TCP, 51000, 443, model.StateEstablished)})

	log := tr.Log()
	if len(log) != 2 {
		t.Fatalf("len(Log()) = %d, want 2 (new + state change)", len(log))
	}
	if !log[1].Kind.IsStateChange() {
		t.Errorf("second event Kind = %v, want StateChange", log[1].Kind)
	}
}

func TestTrafficTrackerEmitsConnectionClosed(t *testing.T) {
	tr := NewTrafficTracker(100)
	tr.Update([]model.Connection{conn(model.TCP, 51000, 443, model.StateEstablished)})
	tr.Update([]model.Connection{}) // connection vanished

	log := tr.Log()
	if len(log) != 2 {
		t.Fatalf("len(Log()) = %d, want 2 (new + closed)", len(log))
	}
	if !log[1].Kind.IsConnectionClosed() {
		t.Errorf("second event Kind = %v, want ConnectionClosed", log[1].Kind)
	}
}

func TestTrafficTrackerExcludesListenAndStatelessUDP(t *testing.T) {
	tr := NewTrafficTracker(100)
	tr.Update([]model.Connection{
		conn(model.TCP, 8080, 0, model.StateListen),
		conn(model.UDP, 53, 0, model.TcpState{}),
	})
	if len(tr.Log()) != 0 {
		t.Errorf("len(Log()) = %d, want 0 — LISTEN and remote-less UDP never participate in the diff", len(tr.Log()))
	}
}

func TestTrafficTrackerPausedSkipsUpdates(t *testing.T) {
	tr := NewTrafficTracker(100)
	tr.SetPaused(true)
	tr.Update([]model.Connection{conn(model.TCP, 51000, 443, model.StateEstablished)})
	if len(tr.Log()) != 0 {
		t.Errorf("len(Log()) = %d, want 0 while paused", len(tr.Log()))
	}
	if !tr.Paused() {
		t.Error("Paused() = false, want true")
	}
}

func TestTrafficTrackerLogIsBounded(t *testing.T) {
	tr := NewTrafficTracker(3)
	for i := uint16(0); i < 5; i++ {
		tr.Update([]model.Connection{conn(model.TCP, 50000+i, 443, model.StateEstablished)})
	}
	if len(tr.Log()) != 3 {
		t.Fatalf("len(Log()) = %d, want 3 (bounded at maxLogSize)", len(tr.Log()))
	}
}

func TestFilteredLogMatchesProcessName(t *testing.T) {
	tr := NewTrafficTracker(100)
	tr.Update([]model.Connection{conn(model.TCP, 51000, 443, model.StateEstablished)})

	matches := tr.FilteredLog("app", false)
	if len(matches) != 1 {
		t.Fatalf("FilteredLog(\"app\", false) len = %d, want 1", len(matches))
	}
	none := tr.FilteredLog("nonexistent", false)
	if len(none) != 0 {
		t.Fatalf("FilteredLog(\"nonexistent\", false) len = %d, want 0", len(none))
	}
}

func TestFilteredLogHidesLocalhostPairs(t *testing.T) {
	tr := NewTrafficTracker(100)
	c := conn(model.TCP, 51000, 443, model.StateEstablished)
	c.Local.Addr = "127.0.0.1"
	c.Remote.Addr = "127.0.0.1"
	tr.Update([]model.Connection{c})

	if got := tr.FilteredLog("", true); len(got) != 0 {
		t.Errorf("FilteredLog(\"\", true) len = %d, want 0 for a loopback-to-loopback entry", len(got))
	}
	if got := tr.FilteredLog("", false); len(got) != 1 {
		t.Errorf("FilteredLog(\"\", false) len = %d, want 1", len(got))
	}
}
