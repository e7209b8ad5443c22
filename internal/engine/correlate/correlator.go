package correlate

import (
	"PcapDelta/internal/core/model"
	"PcapDelta/internal/engine/filter"
	"PcapDelta/internal/engine/identity"
	"errors"
	"fmt"
	"io"
	"log"
	"time"
)

// RecordSource is a lazy, finite stream of raw frames with capture
// timestamps. Next returns io.EOF on clean exhaustion; any other error aborts
// the run.
type RecordSource interface {
	Next() ([]byte, time.Time, error)
	Path() string
}

// Correlator pairs packets across two captures of the same traffic. The
// outbound capture is fully materialized into a correlation table first, then
// the inbound capture is matched against it, one record at a time. Memory is
// therefore bounded by the outbound capture size; that is intrinsic to the
// two-pass design.
type Correlator struct {
	filter *filter.ByteFilter
	table  *Table
	agg    *Aggregator
	sinks  []model.Sink
}

// New creates a correlator with the given byte-filter constraints and result
// sinks.
func New(constraints []filter.Constraint, sinks ...model.Sink) *Correlator {
	return &Correlator{
		filter: filter.New(constraints),
		table:  NewTable(),
		agg:    NewAggregator(),
		sinks:  sinks,
	}
}

// LoadOutbound drains the outbound capture and materializes every recognized
// packet identity into the correlation table. Frames rejected by the filter
// or outside the supported protocol set are skipped.
func (c *Correlator) LoadOutbound(src RecordSource) error {
	inserted, err := c.drain(src, func(id model.Identity, ts time.Time) error {
		c.table.Insert(id, ts)
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("Materialized %d identities from outbound capture '%s'", inserted, src.Path())
	return nil
}

// MatchInbound drains the inbound capture against the table built by
// LoadOutbound, emits one sample per recognized packet to every sink, and
// finalizes the summary. Matching is at-most-once: a taken entry is gone, so
// duplicate inbound identities count as misses.
func (c *Correlator) MatchInbound(src RecordSource) (model.Summary, error) {
	_, err := c.drain(src, func(id model.Identity, ts time.Time) error {
		sample := model.Sample{Identity: id, InboundTime: ts}
		if outTS, ok := c.table.Take(id); ok {
			sample.Matched = true
			sample.LatencyUsec = outTS.Sub(ts).Microseconds()
			c.agg.RecordHit(sample.LatencyUsec)
		} else {
			c.agg.RecordMiss()
		}
		return c.emitSample(sample)
	})
	if err != nil {
		return model.Summary{}, err
	}

	summary, err := c.agg.Summarize(c.table.Len())
	if err != nil {
		return model.Summary{}, err
	}
	for _, sink := range c.sinks {
		if err := sink.WriteSummary(summary); err != nil {
			return model.Summary{}, fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return summary, nil
}

// drain pulls records from a source until io.EOF, applying the byte filter
// and identity extraction, and hands every recognized (identity, timestamp)
// pair to fn. It returns the number of pairs handed over.
func (c *Correlator) drain(src RecordSource, fn func(model.Identity, time.Time) error) (int, error) {
	count := 0
	for {
		data, ts, err := src.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, fmt.Errorf("failed to read capture '%s': %w", src.Path(), err)
		}

		if !c.filter.Match(data) {
			continue
		}
		id, err := identity.Extract(data)
		if errors.Is(err, identity.ErrUnsupported) {
			continue
		}
		if err != nil {
			return count, fmt.Errorf("corrupt frame in capture '%s': %w", src.Path(), err)
		}

		if err := fn(id, ts); err != nil {
			return count, err
		}
		count++
	}
}

func (c *Correlator) emitSample(sample model.Sample) error {
	for _, sink := range c.sinks {
		if err := sink.WriteSample(sample); err != nil {
			return fmt.Errorf("failed to write sample: %w", err)
		}
	}
	return nil
}
