package main

import (
	"flag"
	"log"
	"math/rand"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Generates a paired outbound/inbound capture of the same synthetic TCP
// traffic with a known per-packet delay, for exercising pcap-delta end to
// end: every inbound packet is the outbound packet shifted by delay+jitter,
// and a configurable fraction of inbound packets has no outbound
// counterpart.
func main() {
	outboundFile := flag.String("out", "outbound.pcap", "Outbound pcap file path")
	inboundFile := flag.String("in", "inbound.pcap", "Inbound pcap file path")
	packetCount := flag.Int("c", 1000, "Number of packets to generate")
	delay := flag.Duration("delay", 500*time.Microsecond, "Base outbound-to-inbound delay")
	jitter := flag.Duration("jitter", 100*time.Microsecond, "Maximum random delay variation")
	lossRatio := flag.Float64("loss", 0.05, "Fraction of inbound packets with no outbound counterpart")
	flag.Parse()

	outW, outF, err := newWriter(*outboundFile)
	if err != nil {
		log.Fatalf("Failed to create outbound file: %v", err)
	}
	defer outF.Close()

	inW, inF, err := newWriter(*inboundFile)
	if err != nil {
		log.Fatalf("Failed to create inbound file: %v", err)
	}
	defer inF.Close()

	rand.Seed(time.Now().UnixNano())
	base := time.Now()

	log.Printf("Generating %d packet pairs into %s / %s...", *packetCount, *outboundFile, *inboundFile)

	for i := 0; i < *packetCount; i++ {
		data := randomTCPFrame()

		inboundTime := base.Add(time.Duration(i) * time.Millisecond)
		d := *delay
		if *jitter > 0 {
			d += time.Duration(rand.Int63n(int64(*jitter)))
		}
		outboundTime := inboundTime.Add(d)

		if rand.Float64() >= *lossRatio {
			if err := writeFrame(outW, data, outboundTime); err != nil {
				log.Fatalf("Failed to write outbound packet: %v", err)
			}
		}
		if err := writeFrame(inW, data, inboundTime); err != nil {
			log.Fatalf("Failed to write inbound packet: %v", err)
		}
	}

	log.Printf("Done.")
}

func newWriter(path string) (*pcapgo.Writer, *os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		f.Close()
		return nil, nil, err
	}
	return w, f, nil
}

func randomTCPFrame() []byte {
	srcIP := net.IP{10, byte(rand.Intn(256)), byte(rand.Intn(256)), byte(rand.Intn(256))}
	dstIP := net.IP{10, byte(rand.Intn(256)), byte(rand.Intn(256)), byte(rand.Intn(256))}

	ethLayer := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstMAC:       net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ipLayer := &layers.IPv4{
		SrcIP:    srcIP,
		DstIP:    dstIP,
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
	}
	tcpLayer := &layers.TCP{
		SrcPort: layers.TCPPort(rand.Intn(65535-1024) + 1024),
		DstPort: layers.TCPPort(rand.Intn(65535-1024) + 1024),
		Seq:     rand.Uint32(),
		Ack:     rand.Uint32(),
		ACK:     true,
		Window:  14600,
	}
	tcpLayer.SetNetworkLayerForChecksum(ipLayer)

	payload := make([]byte, rand.Intn(1400)+50)
	rand.Read(payload)

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		ComputeChecksums: true,
		FixLengths:       true,
	}
	if err := gopacket.SerializeLayers(buf, opts, ethLayer, ipLayer, tcpLayer, gopacket.Payload(payload)); err != nil {
		log.Fatalf("Failed to serialize layers: %v", err)
	}
	return buf.Bytes()
}

func writeFrame(w *pcapgo.Writer, data []byte, ts time.Time) error {
	ci := gopacket.CaptureInfo{
		Timestamp:     ts,
		CaptureLength: len(data),
		Length:        len(data),
	}
	return w.WritePacket(ci, data)
}
