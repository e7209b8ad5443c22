package pcap

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/google/gopacket/pcapgo"
)

// windowSize is the read buffer held in front of the capture file. Short
// reads inside a record are refilled from this window transparently.
const windowSize = 1 << 20

// Reader reads raw frames and capture timestamps from a legacy pcap file.
// The sequence is lazy, finite and non-restartable; the pcap file header is
// consumed during construction and never surfaced as a record.
type Reader struct {
	path string
	file *os.File
	r    *pcapgo.Reader
}

// NewReader opens the pcap file at the given path.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}

	r, err := pcapgo.NewReader(bufio.NewReaderSize(file, windowSize))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read pcap header of '%s': %w", path, err)
	}

	return &Reader{path: path, file: file, r: r}, nil
}

// Next returns the next raw frame and its capture timestamp. It returns
// io.EOF when the capture is exhausted; any other error means the capture is
// corrupt or unreadable and the run should abort.
func (r *Reader) Next() ([]byte, time.Time, error) {
	data, ci, err := r.r.ReadPacketData()
	if err != nil {
		return nil, time.Time{}, err
	}
	return data, ci.Timestamp, nil
}

// Path returns the path of the underlying capture file, for diagnostics.
func (r *Reader) Path() string {
	return r.path
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
