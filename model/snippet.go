package model

import "time"

// PacketDirection is relative to the bound local interface.
type PacketDirection int

const (
	Inbound PacketDirection = iota
	Outbound
)

func (d PacketDirection) String() string {
	if d == Outbound {
		return "OUT"
	}
	return "IN"
}

// PacketSnippet is a parsed, human-readable fragment extracted from the
// application-layer payload of a captured IPv4 packet.
type PacketSnippet struct {
	Time        time.Time
	Direction   PacketDirection
	SrcAddr     string
	SrcPort     uint16
	DstAddr     string
	DstPort     uint16
	Protocol    Protocol
	Snippet     string // printable text, <= 200 chars
	PayloadSize int    // total payload size in bytes
}
