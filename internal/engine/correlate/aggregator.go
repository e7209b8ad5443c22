package correlate

import (
	"PcapDelta/internal/core/model"
	"errors"
	"math"
)

// ErrNoMatches is returned by Summarize when not a single inbound packet
// matched the outbound capture, in which case an average latency does not
// exist.
var ErrNoMatches = errors.New("no inbound packet matched the outbound capture")

// Aggregator accumulates running latency statistics over the inbound stream.
// It is plain single-run mutable state, created at the start of a run and
// finalized exactly once.
//
// Min and max track the signed latency: min is the most negative sample, max
// the most positive, and jitter is their spread. The average is taken over
// absolute latencies.
type Aggregator struct {
	sumAbs  int64
	min     int64
	max     int64
	hits    uint64
	misses  uint64
	total   uint64
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{min: math.MaxInt64, max: math.MinInt64}
}

// RecordHit records one matched inbound packet with its signed latency in
// microseconds.
func (a *Aggregator) RecordHit(latencyUsec int64) {
	a.total++
	a.hits++
	if latencyUsec < 0 {
		a.sumAbs -= latencyUsec
	} else {
		a.sumAbs += latencyUsec
	}
	if latencyUsec < a.min {
		a.min = latencyUsec
	}
	if latencyUsec > a.max {
		a.max = latencyUsec
	}
}

// RecordMiss records one inbound packet with no outbound counterpart.
func (a *Aggregator) RecordMiss() {
	a.total++
	a.misses++
}

// Hits returns the number of matched inbound packets so far.
func (a *Aggregator) Hits() uint64 {
	return a.hits
}

// Summarize derives the final statistics. unmatchedOutbound is the number of
// outbound entries left unconsumed in the correlation table. It returns
// ErrNoMatches when no hit was ever recorded.
func (a *Aggregator) Summarize(unmatchedOutbound int) (model.Summary, error) {
	if a.hits == 0 {
		return model.Summary{}, ErrNoMatches
	}

	missPct := 0.0
	if a.total > 0 {
		missPct = float64(a.misses) / float64(a.total) * 100
	}

	return model.Summary{
		AverageLatencyUsec: a.sumAbs / int64(a.hits),
		JitterUsec:         a.max - a.min,
		PacketCount:        a.total,
		HitCount:           a.hits,
		MissCount:          a.misses,
		MissPercentage:     missPct,
		UnmatchedOutbound:  unmatchedOutbound,
	}, nil
}
