package clickhouse

import (
	"PcapDelta/internal/config"
	"PcapDelta/internal/core/model"
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const createSamplesTableStatement = `
CREATE TABLE IF NOT EXISTS latency_samples (
    Run         String,
    InboundTime DateTime64(6),
    Protocol    String,
    SrcIP       String,
    DstIP       String,
    SrcPort     UInt16,
    DstPort     UInt16,
    Matched     UInt8,
    LatencyUsec Int64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(InboundTime)
ORDER BY (Run, InboundTime);
`

const createRunsTableStatement = `
CREATE TABLE IF NOT EXISTS latency_runs (
    Run                String,
    FinishedAt         DateTime,
    AverageLatencyUsec Int64,
    JitterUsec         Int64,
    PacketCount        UInt64,
    HitCount           UInt64,
    MissCount          UInt64,
    MissPercentage     Float64,
    UnmatchedOutbound  UInt64
) ENGINE = MergeTree()
ORDER BY (Run, FinishedAt);
`

// Sink buffers latency samples and writes them to ClickHouse in one batch
// together with a single run-summary row when the summary arrives.
type Sink struct {
	conn    driver.Conn
	run     string
	samples []model.Sample
}

// New connects to ClickHouse and ensures the result tables exist.
func New(cfg config.ClickHouseConfig) (*Sink, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	ctx := context.Background()
	if err := conn.Exec(ctx, createSamplesTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create latency_samples table: %w", err)
	}
	if err := conn.Exec(ctx, createRunsTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create latency_runs table: %w", err)
	}
	log.Println("Successfully connected to ClickHouse and ensured tables exist.")

	run := cfg.Run
	if run == "" {
		run = time.Now().Format("2006-01-02_15-04-05")
	}
	return &Sink{conn: conn, run: run}, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: false,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})

	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// WriteSample buffers a sample; nothing is sent until the summary arrives.
func (s *Sink) WriteSample(sample model.Sample) error {
	s.samples = append(s.samples, sample)
	return nil
}

// WriteSummary sends the buffered samples as one batch and inserts the run
// summary row.
func (s *Sink) WriteSummary(sum model.Summary) error {
	ctx := context.Background()

	if len(s.samples) > 0 {
		batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO latency_samples")
		if err != nil {
			return fmt.Errorf("failed to prepare batch: %w", err)
		}
		for _, sample := range s.samples {
			matched := uint8(0)
			if sample.Matched {
				matched = 1
			}
			err = batch.Append(
				s.run,
				sample.InboundTime,
				sample.Identity.Proto.String(),
				net.IP(sample.Identity.SrcIP[:]).String(),
				net.IP(sample.Identity.DstIP[:]).String(),
				sample.Identity.SrcPort,
				sample.Identity.DstPort,
				matched,
				sample.LatencyUsec,
			)
			if err != nil {
				return fmt.Errorf("failed to append sample to batch: %w", err)
			}
		}
		if err := batch.Send(); err != nil {
			return fmt.Errorf("failed to send batch: %w", err)
		}
		log.Printf("Wrote %d latency samples to ClickHouse for run '%s'", len(s.samples), s.run)
		s.samples = nil
	}

	err := s.conn.Exec(ctx,
		"INSERT INTO latency_runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		s.run,
		time.Now(),
		sum.AverageLatencyUsec,
		sum.JitterUsec,
		sum.PacketCount,
		sum.HitCount,
		sum.MissCount,
		sum.MissPercentage,
		uint64(sum.UnmatchedOutbound),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run summary: %w", err)
	}
	return nil
}

// Close closes the ClickHouse connection.
func (s *Sink) Close() error {
	return s.conn.Close()
}
