package model

import (
	"fmt"
	"net"
	"time"
)

// Protocol tags which transport variant an Identity was derived from.
type Protocol uint8

const (
	ProtocolTCP Protocol = iota + 1
	ProtocolICMP
)

func (p Protocol) String() string {
	switch p {
	case ProtocolTCP:
		return "tcp"
	case ProtocolICMP:
		return "icmp"
	default:
		return "unknown"
	}
}

// Identity is the correlation key derived from a packet's headers. It is a
// flat comparable struct rather than an interface hierarchy so it can be used
// directly as a map key; the Proto tag discriminates the variants, and fields
// that do not belong to a variant are left zero by the constructors. Two
// identities of different variants never compare equal because their tags
// differ.
type Identity struct {
	Proto Protocol
	SrcIP [4]byte
	DstIP [4]byte

	// TCP variant
	SrcPort uint16
	DstPort uint16
	Seq     uint32
	Ack     uint32

	// ICMP variant
	Checksum uint16
}

// NewTCPIdentity builds the identity of a TCP packet from its IPv4 and TCP
// header fields.
func NewTCPIdentity(srcIP, dstIP [4]byte, srcPort, dstPort uint16, seq, ack uint32) Identity {
	return Identity{
		Proto:   ProtocolTCP,
		SrcIP:   srcIP,
		DstIP:   dstIP,
		SrcPort: srcPort,
		DstPort: dstPort,
		Seq:     seq,
		Ack:     ack,
	}
}

// NewICMPIdentity builds the identity of an ICMP packet from its IPv4
// addresses and the ICMP checksum field.
func NewICMPIdentity(srcIP, dstIP [4]byte, checksum uint16) Identity {
	return Identity{
		Proto:    ProtocolICMP,
		SrcIP:    srcIP,
		DstIP:    dstIP,
		Checksum: checksum,
	}
}

// String renders the identity for logs and sinks.
func (id Identity) String() string {
	src := net.IP(id.SrcIP[:])
	dst := net.IP(id.DstIP[:])
	switch id.Proto {
	case ProtocolTCP:
		return fmt.Sprintf("tcp %s:%d->%s:%d seq=%d ack=%d", src, id.SrcPort, dst, id.DstPort, id.Seq, id.Ack)
	case ProtocolICMP:
		return fmt.Sprintf("icmp %s->%s csum=%d", src, dst, id.Checksum)
	default:
		return fmt.Sprintf("unknown %s->%s", src, dst)
	}
}

// Sample is the result for a single recognized inbound packet: either a
// matched latency measurement or a miss.
type Sample struct {
	Identity    Identity
	InboundTime time.Time
	Matched     bool
	// LatencyUsec is the outbound timestamp minus the inbound timestamp in
	// microseconds. Zero when Matched is false.
	LatencyUsec int64
}

// Summary holds the derived statistics for one correlation run.
type Summary struct {
	AverageLatencyUsec int64
	JitterUsec         int64
	PacketCount        uint64
	HitCount           uint64
	MissCount          uint64
	MissPercentage     float64
	// UnmatchedOutbound is the number of outbound packets never observed on
	// the inbound capture.
	UnmatchedOutbound int
}

// Sink receives per-packet samples and, once the inbound stream is exhausted,
// the final summary. Implementations decide where the data goes (console,
// ClickHouse, NATS, ...).
type Sink interface {
	WriteSample(s Sample) error

	WriteSummary(sum Summary) error

	// Close flushes and releases any resources held by the sink.
	Close() error
}
