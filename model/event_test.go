package model

import "testing"

func TestTrafficEventKindPredicatesAreExclusive(t *testing.T) {
	tests := []struct {
		name string
		kind TrafficEventKind
		want string
	}{
		{"new connection", NewConnectionEvent(), "NEW"},
		{"connection closed", ConnectionClosedEvent(), "CLOSED"},
		{"state change", StateChangeEvent(StateSynSent, StateEstablished), "STATE SYN_SENT->ESTABLISHED"},
		{"data activity", DataActivityEvent(1024, true), "DATA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}

	if !NewConnectionEvent().IsNewConnection() {
		t.Error("NewConnectionEvent().IsNewConnection() = false")
	}
	if !ConnectionClosedEvent().IsConnectionClosed() {
		t.Error("ConnectionClosedEvent().IsConnectionClosed() = false")
	}
	if !StateChangeEvent(StateSynSent, StateEstablished).IsStateChange() {
		t.Error("StateChangeEvent(...).IsStateChange() = false")
	}
	if !DataActivityEvent(0, false).IsDataActivity() {
		t.Error("DataActivityEvent(...).IsDataActivity() = false")
	}
	if NewConnectionEvent().IsStateChange() {
		t.Error("a NewConnection event must not also report IsStateChange")
	}
}
