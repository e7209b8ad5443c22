package console

import (
	"PcapDelta/internal/core/model"
	"fmt"
	"io"
	"os"
)

// Sink prints per-packet results and the final summary line to a writer,
// normally stdout. Per-packet printing can be disabled; the summary is always
// printed.
type Sink struct {
	w         io.Writer
	perPacket bool
}

// New creates a console sink writing to stdout.
func New(perPacket bool) *Sink {
	return NewWithWriter(os.Stdout, perPacket)
}

// NewWithWriter creates a console sink writing to the given writer.
func NewWithWriter(w io.Writer, perPacket bool) *Sink {
	return &Sink{w: w, perPacket: perPacket}
}

// WriteSample prints the signed latency in microseconds for a match, or
// "miss" when the packet had no outbound counterpart.
func (s *Sink) WriteSample(sample model.Sample) error {
	if !s.perPacket {
		return nil
	}
	if sample.Matched {
		_, err := fmt.Fprintln(s.w, sample.LatencyUsec)
		return err
	}
	_, err := fmt.Fprintln(s.w, "miss")
	return err
}

// WriteSummary prints the final one-line summary.
func (s *Sink) WriteSummary(sum model.Summary) error {
	_, err := fmt.Fprintf(s.w,
		"Average latency (usec): %d. Jitter (usec): %d. Packets count: %d. Misses count: %d (%.2f%%)\n",
		sum.AverageLatencyUsec, sum.JitterUsec, sum.PacketCount, sum.MissCount, sum.MissPercentage)
	return err
}

// Close is a no-op for the console sink.
func (s *Sink) Close() error {
	return nil
}
