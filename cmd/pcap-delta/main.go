package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"PcapDelta/internal/config"
	"PcapDelta/internal/core/model"
	"PcapDelta/internal/engine/correlate"
	"PcapDelta/internal/engine/filter"
	"PcapDelta/internal/sink/clickhouse"
	"PcapDelta/internal/sink/console"
	natssink "PcapDelta/internal/sink/nats"
	"PcapDelta/pkg/pcap"
)

// filterFlags collects repeatable -f offset:value constraints.
type filterFlags []filter.Constraint

func (f *filterFlags) String() string {
	return fmt.Sprintf("%v", []filter.Constraint(*f))
}

func (f *filterFlags) Set(s string) error {
	c, err := filter.Parse(s)
	if err != nil {
		return err
	}
	*f = append(*f, c)
	return nil
}

func main() {
	var (
		configPath     = flag.String("c", "", "path to YAML config file (optional)")
		disablePrint   = flag.Bool("p", false, "disable per-packet latency/miss output")
		filterOverride filterFlags
	)
	flag.Var(&filterOverride, "f", "byte filter constraint as offset:value, repeatable")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <inbound.pcap> <outbound.pcap>\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Correlates two captures of the same traffic and measures per-packet latency")
		fmt.Fprintln(os.Stderr, "as outbound timestamp minus inbound timestamp.")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	inboundPath, outboundPath := flag.Arg(0), flag.Arg(1)

	// 1. Load configuration (defaults when no config file is given).
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	constraints := append(cfg.Correlator.Filter, filterOverride...)
	printSamples := cfg.Correlator.PrintSamples && !*disablePrint

	// 2. Build the result sinks.
	sinks := []model.Sink{console.New(printSamples)}
	if cfg.Sinks.ClickHouse.Enabled {
		chSink, err := clickhouse.New(cfg.Sinks.ClickHouse)
		if err != nil {
			log.Fatalf("Failed to create ClickHouse sink: %v", err)
		}
		sinks = append(sinks, chSink)
	}
	if cfg.Sinks.NATS.Enabled {
		nSink, err := natssink.New(cfg.Sinks.NATS)
		if err != nil {
			log.Fatalf("Failed to create NATS sink: %v", err)
		}
		sinks = append(sinks, nSink)
	}
	defer func() {
		for _, s := range sinks {
			if err := s.Close(); err != nil {
				log.Printf("Error closing sink: %v", err)
			}
		}
	}()

	correlator := correlate.New(constraints, sinks...)

	// 3. Materialize the outbound capture into the correlation table.
	outboundReader, err := pcap.NewReader(outboundPath)
	if err != nil {
		log.Fatalf("Failed to open outbound capture: %v", err)
	}
	if err := correlator.LoadOutbound(outboundReader); err != nil {
		outboundReader.Close()
		log.Fatalf("Failed to process outbound capture: %v", err)
	}
	outboundReader.Close()

	// 4. Match the inbound capture against the table and emit results.
	inboundReader, err := pcap.NewReader(inboundPath)
	if err != nil {
		log.Fatalf("Failed to open inbound capture: %v", err)
	}
	defer inboundReader.Close()

	summary, err := correlator.MatchInbound(inboundReader)
	if err != nil {
		log.Fatalf("Failed to process inbound capture: %v", err)
	}
	if summary.UnmatchedOutbound > 0 {
		log.Printf("%d outbound packets were never observed inbound", summary.UnmatchedOutbound)
	}
}
