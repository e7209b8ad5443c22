package nats

import (
	"PcapDelta/internal/config"
	"PcapDelta/internal/core/model"
	"encoding/json"
	"fmt"
	"log"
	"net"

	"github.com/nats-io/nats.go"
)

// Sink publishes per-packet samples to a NATS subject and the final summary
// to "<subject>.summary", JSON encoded.
type Sink struct {
	nc      *nats.Conn
	subject string
}

// sampleMessage is the wire form of a latency sample.
type sampleMessage struct {
	Protocol    string `json:"protocol"`
	SrcIP       string `json:"src_ip"`
	DstIP       string `json:"dst_ip"`
	SrcPort     uint16 `json:"src_port,omitempty"`
	DstPort     uint16 `json:"dst_port,omitempty"`
	InboundTime int64  `json:"inbound_time_unix_us"`
	Matched     bool   `json:"matched"`
	LatencyUsec int64  `json:"latency_usec"`
}

// summaryMessage is the wire form of the run summary.
type summaryMessage struct {
	AverageLatencyUsec int64   `json:"average_latency_usec"`
	JitterUsec         int64   `json:"jitter_usec"`
	PacketCount        uint64  `json:"packet_count"`
	HitCount           uint64  `json:"hit_count"`
	MissCount          uint64  `json:"miss_count"`
	MissPercentage     float64 `json:"miss_percentage"`
	UnmatchedOutbound  int     `json:"unmatched_outbound"`
}

// New creates a NATS sink connected to the configured server.
func New(cfg config.NATSConfig) (*Sink, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &Sink{nc: nc, subject: cfg.Subject}, nil
}

// WriteSample serializes a sample to JSON and publishes it.
func (s *Sink) WriteSample(sample model.Sample) error {
	msg := sampleMessage{
		Protocol:    sample.Identity.Proto.String(),
		SrcIP:       net.IP(sample.Identity.SrcIP[:]).String(),
		DstIP:       net.IP(sample.Identity.DstIP[:]).String(),
		SrcPort:     sample.Identity.SrcPort,
		DstPort:     sample.Identity.DstPort,
		InboundTime: sample.InboundTime.UnixMicro(),
		Matched:     sample.Matched,
		LatencyUsec: sample.LatencyUsec,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.nc.Publish(s.subject, data)
}

// WriteSummary publishes the run summary to the summary subject.
func (s *Sink) WriteSummary(sum model.Summary) error {
	msg := summaryMessage{
		AverageLatencyUsec: sum.AverageLatencyUsec,
		JitterUsec:         sum.JitterUsec,
		PacketCount:        sum.PacketCount,
		HitCount:           sum.HitCount,
		MissCount:          sum.MissCount,
		MissPercentage:     sum.MissPercentage,
		UnmatchedOutbound:  sum.UnmatchedOutbound,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.nc.Publish(fmt.Sprintf("%s.summary", s.subject), data)
}

// Close drains and closes the NATS connection.
func (s *Sink) Close() error {
	if s.nc != nil {
		s.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
	return nil
}
