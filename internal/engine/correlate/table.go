package correlate

import (
	"PcapDelta/internal/core/model"
	"time"
)

// Table maps packet identities to the timestamp at which they were observed
// on the outbound capture. It is built once from the outbound stream and then
// drained by Take calls from the inbound stream; the two phases never
// overlap, so no locking is needed.
type Table struct {
	entries map[model.Identity]time.Time
}

// NewTable creates an empty correlation table.
func NewTable() *Table {
	return &Table{entries: make(map[model.Identity]time.Time)}
}

// Insert records the outbound timestamp for an identity. A duplicate identity
// silently overwrites the previous entry; collisions are possible with
// small-field keys like ICMP checksums and last write wins.
func (t *Table) Insert(id model.Identity, ts time.Time) {
	t.entries[id] = ts
}

// Take looks up an identity and removes its entry, so each outbound packet
// can match at most one inbound packet. A second inbound packet carrying the
// same identity finds the entry gone and counts as a miss.
func (t *Table) Take(id model.Identity) (time.Time, bool) {
	ts, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
	}
	return ts, ok
}

// Len returns the number of unconsumed entries: outbound packets not (yet)
// observed inbound.
func (t *Table) Len() int {
	return len(t.entries)
}
