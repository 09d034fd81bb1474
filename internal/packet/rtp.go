package packet

// RTP header layout, from RFC 3550 section 5.1:
//
//	 0                   1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|V=2|P|X|  CC   |M|     PT      |       sequence number        |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                           timestamp                          |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|           synchronization source (SSRC) identifier           |
//	+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+=+
//	|            contributing source (CSRC) identifiers            |
//	|                             ....                              |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
const rtpFixedHeaderSize = 12

// Version returns the 2-bit RTP version field (the top two bits of byte 0).
func (v *View) Version() byte {
	return v.buf[0] >> 6
}

// CSRCCount returns the number of 32-bit CSRC identifiers following the
// fixed header.
func (v *View) CSRCCount() int {
	return int(v.buf[0] & 0x0f)
}

// SequenceNumber returns the RTP sequence number field.
func (v *View) SequenceNumber() uint16 {
	return networkOrder.Uint16(v.buf[2:4])
}

// SSRC returns the RTP synchronization source identifier.
func (v *View) SSRC() uint32 {
	return networkOrder.Uint32(v.buf[8:12])
}

// HeaderLength returns the length of the fixed header plus CSRC list, i.e.
// the offset at which the RTP payload begins.
func (v *View) HeaderLength() int {
	return rtpFixedHeaderSize + 4*v.CSRCCount()
}

// PayloadLength returns the number of bytes following the RTP header.
func (v *View) PayloadLength() int {
	return len(v.buf) - v.HeaderLength()
}

// rtcpFixedHeaderSize is the length of the leading V/P/RC/PT/length/SSRC
// header every RTCP packet type shares (RFC 3550 section 6.1); SRTCP
// encrypts only what follows it.
const rtcpFixedHeaderSize = 8

// RTCPHeaderLength returns the offset at which the RTCP payload begins.
func (v *View) RTCPHeaderLength() int {
	return rtcpFixedHeaderSize
}

// RTCPSSRC returns the packet sender's SSRC, which (per RFC 3550 section
// 6.1) occupies bytes 4:8 of the common RTCP header.
func (v *View) RTCPSSRC() uint32 {
	return networkOrder.Uint32(v.buf[4:8])
}

// SRTCPIndex reads the 32-bit E-flag+index field that sits tagLen bytes
// before the end of an SRTCP packet, splitting out the high E-flag bit from
// the low 31-bit index.
func (v *View) SRTCPIndex(tagLen int) (index uint32, encrypted bool) {
	off := len(v.buf) - tagLen - 4
	field := networkOrder.Uint32(v.buf[off : off+4])
	return field &^ (1 << 31), field&(1<<31) != 0
}
