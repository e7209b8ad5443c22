package pcap

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

func writeTestPcap(t *testing.T, frames [][]byte, timestamps []time.Time) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.pcap")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create pcap file: %v", err)
	}
	defer f.Close()

	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		t.Fatalf("Failed to write pcap header: %v", err)
	}
	for i, frame := range frames {
		ci := gopacket.CaptureInfo{
			Timestamp:     timestamps[i],
			CaptureLength: len(frame),
			Length:        len(frame),
		}
		if err := w.WritePacket(ci, frame); err != nil {
			t.Fatalf("Failed to write packet: %v", err)
		}
	}
	return path
}

func TestReader_Next(t *testing.T) {
	frames := [][]byte{
		bytes.Repeat([]byte{0xAA}, 60),
		bytes.Repeat([]byte{0xBB}, 120),
	}
	// pcap timestamps have microsecond resolution.
	timestamps := []time.Time{
		time.Unix(1700000000, 123000),
		time.Unix(1700000001, 456000),
	}
	path := writeTestPcap(t, frames, timestamps)

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	defer r.Close()

	for i := range frames {
		data, ts, err := r.Next()
		if err != nil {
			t.Fatalf("Next failed on record %d: %v", i, err)
		}
		if !bytes.Equal(data, frames[i]) {
			t.Errorf("Record %d: frame bytes differ from what was written", i)
		}
		if !ts.Equal(timestamps[i]) {
			t.Errorf("Record %d: timestamp = %v, want %v", i, ts, timestamps[i])
		}
	}

	// The sequence terminates cleanly with io.EOF, not an error condition.
	if _, _, err := r.Next(); err != io.EOF {
		t.Errorf("Next after last record returned %v, want io.EOF", err)
	}
}

func TestReader_EmptyCapture(t *testing.T) {
	path := writeTestPcap(t, nil, nil)

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	defer r.Close()

	// The file header must be consumed internally, never surfaced as data.
	if _, _, err := r.Next(); err != io.EOF {
		t.Errorf("Next on an empty capture returned %v, want io.EOF", err)
	}
}

func TestReader_MissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "does-not-exist.pcap")); err == nil {
		t.Fatal("NewReader should fail on a missing file")
	}
}

func TestReader_CorruptHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pcap")
	if err := os.WriteFile(path, []byte("this is not a capture file"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if _, err := NewReader(path); err == nil {
		t.Fatal("NewReader should fail on a corrupt file header")
	}
}
