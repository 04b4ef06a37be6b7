package wire

// IPProto represents the IP protocol number carried in an IPv4 header's
// Protocol field or an IPv6 Next Header field.
type IPProto uint8

// Well-known IP protocol numbers. The simulation's capture traces tag their
// synthetic packets with the experimental values 253 and 254 instead.
const (
	IPProtoICMP IPProto = 1  // Internet Control Message [RFC792]
	IPProtoTCP  IPProto = 6  // Transmission Control [RFC793]
	IPProtoUDP  IPProto = 17 // User Datagram [RFC768]
)

func (p IPProto) String() string {
	switch p {
	case IPProtoICMP:
		return "ICMP"
	case IPProtoTCP:
		return "TCP"
	case IPProtoUDP:
		return "UDP"
	default:
		return "IPProto(?)"
	}
}
