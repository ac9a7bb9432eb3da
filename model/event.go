package model

import "time"

// TrafficEventKind is the closed sum of lifecycle events the traffic tracker
// can emit for a connection. DataActivity is reserved: the diff engine never
// emits it because no component in this design counts per-connection bytes.
type TrafficEventKind struct {
	kind byte
	From TcpState
	To   TcpState
	// DataActivity payload, unused by any emitter today but preserved for
	// forward compatibility per the design notes.
	Bytes    uint64
	Inbound  bool
}

const (
	kindNewConnection = iota + 1
	kindConnectionClosed
	kindStateChange
	kindDataActivity
)

func NewConnectionEvent() TrafficEventKind    { return TrafficEventKind{kind: kindNewConnection} }
func ConnectionClosedEvent() TrafficEventKind { return TrafficEventKind{kind: kindConnectionClosed} }

func StateChangeEvent(from, to TcpState) TrafficEventKind {
	return TrafficEventKind{kind: kindStateChange, From: from, To: to}
}

func DataActivityEvent(bytes uint64, inbound bool) TrafficEventKind {
	return TrafficEventKind{kind: kindDataActivity, Bytes: bytes, Inbound: inbound}
}

func (k TrafficEventKind) IsNewConnection() bool    { return k.kind == kindNewConnection }
func (k TrafficEventKind) IsConnectionClosed() bool { return k.kind == kindConnectionClosed }
func (k TrafficEventKind) IsStateChange() bool      { return k.kind == kindStateChange }
func (k TrafficEventKind) IsDataActivity() bool     { return k.kind == kindDataActivity }

func (k TrafficEventKind) String() string {
	switch k.kind {
	case kindNewConnection:
		return "NEW"
	case kindConnectionClosed:
		return "CLOSED"
	case kindStateChange:
		return "STATE " + k.From.String() + "->" + k.To.String()
	case kindDataActivity:
		return "DATA"
	default:
		return "?"
	}
}

// TrafficEntry is an immutable record of one lifecycle event, appended to
// the traffic tracker's bounded log.
type TrafficEntry struct {
	Time        time.Time
	Kind        TrafficEventKind
	Protocol    Protocol
	Local       Endpoint
	Remote      Endpoint
	ProcessName string
	Outbound    bool
	StateLabel  string // textual state at the time of the event
	Hostname    string // optional
	DataSize    *uint64 // optional byte-size estimate; always nil today, see DESIGN.md
}
