package correlate

import (
	"PcapDelta/internal/core/model"
	"testing"
	"time"
)

func TestTable_TakeRemovesEntry(t *testing.T) {
	table := NewTable()
	id := model.NewTCPIdentity([4]byte{1, 2, 3, 4}, [4]byte{5, 6, 7, 8}, 1000, 80, 42, 43)
	ts := time.Unix(10, 0)

	table.Insert(id, ts)
	if table.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", table.Len())
	}

	got, ok := table.Take(id)
	if !ok {
		t.Fatal("Take should find the inserted identity")
	}
	if !got.Equal(ts) {
		t.Errorf("Take returned %v, want %v", got, ts)
	}

	// At-most-once: the entry is gone now.
	if _, ok := table.Take(id); ok {
		t.Error("Second Take for the same identity should miss")
	}
	if table.Len() != 0 {
		t.Errorf("Len() = %d after take, want 0", table.Len())
	}
}

func TestTable_TakeUnknownIdentity(t *testing.T) {
	table := NewTable()
	id := model.NewICMPIdentity([4]byte{1, 2, 3, 4}, [4]byte{5, 6, 7, 8}, 999)

	if _, ok := table.Take(id); ok {
		t.Error("Take on an empty table should miss")
	}
}

func TestTable_LastWriteWins(t *testing.T) {
	table := NewTable()
	id := model.NewICMPIdentity([4]byte{1, 2, 3, 4}, [4]byte{5, 6, 7, 8}, 999)
	first := time.Unix(10, 0)
	second := time.Unix(20, 0)

	table.Insert(id, first)
	table.Insert(id, second)
	if table.Len() != 1 {
		t.Fatalf("Len() = %d after duplicate insert, want 1", table.Len())
	}

	got, ok := table.Take(id)
	if !ok {
		t.Fatal("Take should find the identity")
	}
	if !got.Equal(second) {
		t.Errorf("Take returned %v, want the later timestamp %v", got, second)
	}
}

func TestTable_VariantsDoNotCollide(t *testing.T) {
	table := NewTable()
	tcpID := model.NewTCPIdentity([4]byte{1, 2, 3, 4}, [4]byte{5, 6, 7, 8}, 0, 0, 0, 0)
	icmpID := model.NewICMPIdentity([4]byte{1, 2, 3, 4}, [4]byte{5, 6, 7, 8}, 0)

	table.Insert(tcpID, time.Unix(1, 0))
	table.Insert(icmpID, time.Unix(2, 0))
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2: TCP and ICMP identities must hash separately", table.Len())
	}
}
