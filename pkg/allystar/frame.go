package allystar

import "encoding/binary"

// Allystar HD9310 option C raw frame layout. The receiver emits a
// continuous stream of F1 D9 02 10 framed records, one per satellite
// per epoch. The 02 10 class/ID bytes double as the tail of the sync
// marker and the head of the checksummed body.
const (
	SyncLength    = 4
	BodyLength    = 268
	TrailerLength = 2
	FrameLength   = BodyLength + TrailerLength
	PayloadLength = 252

	ExpectedPayloadLength uint16 = 264
	ExpectedDataLength           = 63

	// Raw satellite IDs are offset from the receiver-facing PRN.
	PRNOffset = 700

	// QZSS PRN block.
	PRNMin = 193
	PRNMax = 211
)

var syncMarker = [SyncLength]byte{0xf1, 0xd9, 0x02, 0x10}

// Body offsets, counted from the 02 10 class/ID bytes.
const (
	offPayloadLength = 2
	offPRN           = 4
	offFreqID        = 6
	offDataLength    = 7
	offWeek          = 8
	offTOW           = 10
	offSNR           = 14
	offFlags         = 15
	offPayload       = 16
)

// Status flag bits.
const (
	flagErrorCorrection = 0x01
	flagWeekInvalid     = 0x02
	flagTimeInvalid     = 0x04
)

// RawFrame is one complete frame as read off the wire, minus the two
// leading F1 D9 marker bytes: 268 checksummed body bytes followed by
// the two trailer checksum bytes.
type RawFrame [FrameLength]byte

func (f *RawFrame) Body() []byte { return f[:BodyLength] }

func (f *RawFrame) Trailer() (byte, byte) { return f[BodyLength], f[BodyLength+1] }

// Frame is a decoded frame plus the validation tags raised against it.
type Frame struct {
	PRN     int
	FreqID  uint8
	Week    uint16
	TOW     uint32
	SNR     uint8
	Tags    Tags
	Payload [PayloadLength]byte
}

func (f *RawFrame) decode() Frame {
	body := f.Body()
	out := Frame{
		PRN:    int(binary.LittleEndian.Uint16(body[offPRN:])) - PRNOffset,
		FreqID: body[offFreqID],
		Week:   binary.BigEndian.Uint16(body[offWeek:]),
		TOW:    binary.BigEndian.Uint32(body[offTOW:]),
		SNR:    body[offSNR],
	}
	copy(out.Payload[:], body[offPayload:offPayload+PayloadLength])
	return out
}
