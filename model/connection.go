package model

// Protocol is the transport protocol of a socket.
type Protocol int

const (
	TCP Protocol = iota
	UDP
)

func (p Protocol) String() string {
	if p == UDP {
		return "UDP"
	}
	return "TCP"
}

// TcpState is the closed sum of the standard TCP states plus an Unknown(raw)
// variant for any value the kernel reports that we don't recognize.
type TcpState struct {
	code int // 0 means "no state" (zero value); valid codes are 1..12, anything else is Unknown
	raw  int
}

const (
	tcpStateNone = 0
)

var (
	StateClosed      = TcpState{code: 1}
	StateListen      = TcpState{code: 2}
	StateSynSent     = TcpState{code: 3}
	StateSynReceived = TcpState{code: 4}
	StateEstablished = TcpState{code: 5}
	StateFinWait1    = TcpState{code: 6}
	StateFinWait2    = TcpState{code: 7}
	StateCloseWait   = TcpState{code: 8}
	StateClosing     = TcpState{code: 9}
	StateLastAck     = TcpState{code: 10}
	StateTimeWait    = TcpState{code: 11}
	StateDeleteTCB   = TcpState{code: 12}
)

// UnknownTcpState wraps a raw kernel state value we don't recognize.
func UnknownTcpState(raw int) TcpState {
	return TcpState{code: 13, raw: raw}
}

// TcpStateFromRaw maps the kernel's MIB_TCP_STATE numbering (1..12) onto the
// canonical variants above; anything else is preserved as Unknown(raw).
func TcpStateFromRaw(raw int) TcpState {
	switch raw {
	case 1:
		return StateClosed
	case 2:
		return StateListen
	case 3:
		return StateSynSent
	case 4:
		return StateSynReceived
	case 5:
		return StateEstablished
	case 6:
		return StateFinWait1
	case 7:
		return StateFinWait2
	case 8:
		return StateCloseWait
	case 9:
		return StateClosing
	case 10:
		return StateLastAck
	case 11:
		return StateTimeWait
	case 12:
		return StateDeleteTCB
	default:
		return UnknownTcpState(raw)
	}
}

func (s TcpState) IsUnknown() bool { return s.code == 13 }

// Raw returns the original kernel value for an Unknown state (0 otherwise).
func (s TcpState) Raw() int { return s.raw }

func (s TcpState) String() string {
	switch s.code {
	case 1:
		return "CLOSED"
	case 2:
		return "LISTEN"
	case 3:
		return "SYN_SENT"
	case 4:
		return "SYN_RECEIVED"
	case 5:
		return "ESTABLISHED"
	case 6:
		return "FIN_WAIT1"
	case 7:
		return "FIN_WAIT2"
	case 8:
		return "CLOSE_WAIT"
	case 9:
		return "CLOSING"
	case 10:
		return "LAST_ACK"
	case 11:
		return "TIME_WAIT"
	case 12:
		return "DELETE_TCB"
	case 13:
		return "UNKNOWN"
	default:
		return ""
	}
}

// SortRank orders states for the connection table's state column, per the
// fixed tie-break order: Established first, then the rest of the connection
// lifecycle, LISTEN and CLOSED near the bottom, UDP (no state) last.
func (s TcpState) SortRank() int {
	switch s.code {
	case 5: // Established
		return 0
	case 3: // SynSent
		return 1
	case 4: // SynReceived
		return 2
	case 8: // CloseWait
		return 3
	case 6: // FinWait1
		return 4
	case 7: // FinWait2
		return 5
	case 9: // Closing
		return 6
	case 10: // LastAck
		return 7
	case 11: // TimeWait
		return 8
	case 2: // Listen
		return 9
	case 1: // Closed
		return 10
	case 12: // DeleteTcb
		return 11
	case 13: // Unknown
		return 12
	default: // no state (UDP)
		return 13
	}
}

// HasState reports whether this is a real TCP state (as opposed to the zero
// value used for UDP sockets, which carry no state at all).
func (s TcpState) HasState() bool { return s.code != tcpStateNone }

// Endpoint is an IP address plus port. An empty Addr denotes "no endpoint".
type Endpoint struct {
	Addr string
	Port uint16
}

func (e Endpoint) IsZero() bool { return e.Addr == "" }

// ConnKey identifies a kernel socket across ticks. Two Connection records
// observed in consecutive ticks with the same key refer to the same socket.
type ConnKey struct {
	Protocol   Protocol
	LocalAddr  string
	LocalPort  uint16
	RemoteAddr string
	RemotePort uint16
}

// Connection is a point-in-time socket record.
type Connection struct {
	Protocol    Protocol
	Local       Endpoint
	Remote      Endpoint // zero value if the socket has no remote endpoint
	State       TcpState // zero value (HasState()==false) for UDP
	PID         int
	ProcessName string
	Hostname    string // resolved remote hostname, empty if unknown
}

// HasRemote reports whether the connection has a remote endpoint at all.
func (c Connection) HasRemote() bool { return !c.Remote.IsZero() }

// Key returns the ConnKey identity used for cross-tick diffing.
func (c Connection) Key() ConnKey {
	return ConnKey{
		Protocol:   c.Protocol,
		LocalAddr:  c.Local.Addr,
		LocalPort:  c.Local.Port,
		RemoteAddr: c.Remote.Addr,
		RemotePort: c.Remote.Port,
	}
}

// wellKnownOutboundPorts is consulted by the outbound heuristic below.
var wellKnownOutboundPorts = map[uint16]bool{
	80: true, 443: true, 22: true, 21: true, 25: true, 53: true,
	110: true, 143: true, 993: true, 995: true, 587: true, 465: true,
	8080: true, 8443: true, 3306: true, 5432: true, 6379: true, 27017: true,
}

// IsOutbound applies the outbound-connection heuristic: a well-known remote
// port, or a local ephemeral port talking to a low remote port, or a local
// port deep in the ephemeral range, counts as outbound traffic initiated by
// this host. Absence of a remote port is never outbound.
func (c Connection) IsOutbound() bool {
	if c.Remote.IsZero() {
		return false
	}
	rp := c.Remote.Port
	lp := c.Local.Port
	if wellKnownOutboundPorts[rp] {
		return true
	}
	if lp > 1024 && rp <= 1024 {
		return true
	}
	if lp > 49152 {
		return true
	}
	return false
}

// IsLoopback reports whether an address string is a loopback address.
func IsLoopback(addr string) bool {
	return addr == "127.0.0.1" || addr == "::1" || addr == "localhost"
}

// IsLoopbackToLoopback reports whether both endpoints of the connection are
// loopback addresses.
func (c Connection) IsLoopbackToLoopback() bool {
	return IsLoopback(c.Local.Addr) && IsLoopback(c.Remote.Addr)
}
