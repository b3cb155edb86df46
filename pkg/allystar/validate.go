package allystar

import (
	"encoding/binary"
	"strings"
)

// Tags is the set of validation problems raised against a frame. Every
// check runs independently so multiple tags can coexist; a frame with a
// non-zero tag set is reportable but never fatal.
type Tags uint8

const (
	TagChecksum Tags = 1 << iota
	TagPayload
	TagData
	TagErrorCorrection
	TagWeekInvalid
	TagTimeInvalid
)

func (t Tags) Has(other Tags) bool { return t&other != 0 }

func (t Tags) Empty() bool { return t == 0 }

func (t Tags) String() string {
	if t == 0 {
		return ""
	}
	parts := make([]string, 0, 6)
	if t.Has(TagChecksum) {
		parts = append(parts, "CS")
	}
	if t.Has(TagPayload) {
		parts = append(parts, "Payload")
	}
	if t.Has(TagData) {
		parts = append(parts, "Data")
	}
	if t.Has(TagErrorCorrection) {
		parts = append(parts, "RS")
	}
	if t.Has(TagWeekInvalid) {
		parts = append(parts, "Week")
	}
	if t.Has(TagTimeInvalid) {
		parts = append(parts, "TOW")
	}
	return strings.Join(parts, " ")
}

// Validate decodes raw and runs every frame check, accumulating tags
// rather than stopping at the first problem.
func Validate(raw *RawFrame) Frame {
	f := raw.decode()
	body := raw.Body()

	csum1, csum2 := Checksum(body)
	t1, t2 := raw.Trailer()
	if t1 != csum1 || t2 != csum2 {
		f.Tags |= TagChecksum
	}
	if binary.LittleEndian.Uint16(body[offPayloadLength:]) != ExpectedPayloadLength {
		f.Tags |= TagPayload
	}
	if int(body[offDataLength])-2 != ExpectedDataLength {
		f.Tags |= TagData
	}
	flags := body[offFlags]
	if flags&flagErrorCorrection != 0 {
		f.Tags |= TagErrorCorrection
	}
	if flags&flagWeekInvalid != 0 {
		f.Tags |= TagWeekInvalid
	}
	if flags&flagTimeInvalid != 0 {
		f.Tags |= TagTimeInvalid
	}
	return f
}
