package console

import (
	"PcapDelta/internal/core/model"
	"bytes"
	"strings"
	"testing"
)

func TestSink_WriteSample(t *testing.T) {
	var buf bytes.Buffer
	s := NewWithWriter(&buf, true)

	s.WriteSample(model.Sample{Matched: true, LatencyUsec: -50})
	s.WriteSample(model.Sample{Matched: false})

	want := "-50\nmiss\n"
	if buf.String() != want {
		t.Errorf("Output = %q, want %q", buf.String(), want)
	}
}

func TestSink_PerPacketDisabled(t *testing.T) {
	var buf bytes.Buffer
	s := NewWithWriter(&buf, false)

	s.WriteSample(model.Sample{Matched: true, LatencyUsec: 100})
	if buf.Len() != 0 {
		t.Errorf("Expected no per-packet output, got %q", buf.String())
	}

	// The summary is printed regardless of the per-packet setting.
	s.WriteSummary(model.Summary{AverageLatencyUsec: 100, PacketCount: 1})
	if buf.Len() == 0 {
		t.Error("Summary must be printed even with per-packet output disabled")
	}
}

func TestSink_WriteSummary(t *testing.T) {
	var buf bytes.Buffer
	s := NewWithWriter(&buf, true)

	s.WriteSummary(model.Summary{
		AverageLatencyUsec: 50,
		JitterUsec:         0,
		PacketCount:        2,
		MissCount:          1,
		MissPercentage:     50.0,
	})

	got := buf.String()
	want := "Average latency (usec): 50. Jitter (usec): 0. Packets count: 2. Misses count: 1 (50.00%)\n"
	if got != want {
		t.Errorf("Summary line = %q, want %q", got, want)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Error("Summary line must end with a newline")
	}
}
