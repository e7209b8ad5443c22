package identity

import (
	"PcapDelta/internal/core/model"
	"errors"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// ErrUnsupported marks frames outside the Ethernet -> IPv4 -> {TCP, ICMP}
// set: other ethertypes (IPv6, ARP, 802.1Q), other transports, fragments, or
// frames truncated before the transport branch is taken. Callers skip such
// frames and continue.
var ErrUnsupported = errors.New("unsupported or malformed frame")

// Extract decodes a raw frame and derives its correlation identity.
//
// A frame whose IPv4 header declares TCP or ICMP but whose transport header
// fails to decode yields an ordinary (non-ErrUnsupported) error: the capture
// contradicts its own IP layer, which is treated as corruption and aborts the
// run.
func Extract(data []byte) (model.Identity, error) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)

	ethLayer := packet.Layer(layers.LayerTypeEthernet)
	if ethLayer == nil {
		return model.Identity{}, ErrUnsupported
	}
	eth := ethLayer.(*layers.Ethernet)
	if eth.EthernetType != layers.EthernetTypeIPv4 {
		// Rejects IPv6, ARP and VLAN-tagged frames without peeking through
		// the tag.
		return model.Identity{}, ErrUnsupported
	}

	ipLayer := packet.Layer(layers.LayerTypeIPv4)
	if ipLayer == nil {
		return model.Identity{}, ErrUnsupported
	}
	ip := ipLayer.(*layers.IPv4)
	if fragmented(ip) {
		return model.Identity{}, ErrUnsupported
	}

	var srcIP, dstIP [4]byte
	copy(srcIP[:], ip.SrcIP.To4())
	copy(dstIP[:], ip.DstIP.To4())

	switch ip.Protocol {
	case layers.IPProtocolTCP:
		tcpLayer := packet.Layer(layers.LayerTypeTCP)
		if tcpLayer == nil {
			return model.Identity{}, fmt.Errorf("IPv4 header declares TCP but the TCP header failed to decode: %v", decodeFailure(packet))
		}
		tcp := tcpLayer.(*layers.TCP)
		return model.NewTCPIdentity(srcIP, dstIP, uint16(tcp.SrcPort), uint16(tcp.DstPort), tcp.Seq, tcp.Ack), nil

	case layers.IPProtocolICMPv4:
		icmpLayer := packet.Layer(layers.LayerTypeICMPv4)
		if icmpLayer == nil {
			return model.Identity{}, fmt.Errorf("IPv4 header declares ICMP but the ICMP header failed to decode: %v", decodeFailure(packet))
		}
		icmp := icmpLayer.(*layers.ICMPv4)
		return model.NewICMPIdentity(srcIP, dstIP, icmp.Checksum), nil

	default:
		return model.Identity{}, ErrUnsupported
	}
}

// fragmented reports whether the packet is part of a fragmented IPv4 datagram
// (non-zero offset or more-fragments set).
func fragmented(ip *layers.IPv4) bool {
	return ip.FragOffset != 0 || ip.Flags&layers.IPv4MoreFragments != 0
}

func decodeFailure(packet gopacket.Packet) error {
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		return errLayer.Error()
	}
	return errors.New("transport layer missing")
}
