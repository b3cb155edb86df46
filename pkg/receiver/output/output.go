// Package output holds the sinks an epoch selection can be written to.
package output

import (
	"encoding/binary"
	"io"

	"github.com/yoronneko/qzsl6tool/pkg/allystar"
)

type Output interface {
	Write(sel allystar.Selection) error
}

// RawOutput writes the bare 252-byte L6 payload, the format the rest
// of the toolchain reads.
type RawOutput struct {
	w io.Writer
}

func NewRaw(w io.Writer) *RawOutput { return &RawOutput{w: w} }

func (o *RawOutput) Write(sel allystar.Selection) error {
	_, err := o.w.Write(sel.Payload[:])
	return err
}

// UBX-RXM-QZSSL6 framing constants.
const (
	ubxSync1         = 0xb5
	ubxSync2         = 0x62
	ubxClassRXM      = 0x02
	ubxIDQZSSL6      = 0x72
	ubxMsgVersion    = 1
	ubxMsgLength     = 264
	ubxPayloadLength = 270
	ubxSVIDOffset    = 192
)

// UBXOutput wraps each selection in a u-blox UBX-RXM-QZSSL6 message,
// checksummed with the same running sum as the Allystar framing.
type UBXOutput struct {
	w io.Writer
}

func NewUBX(w io.Writer) *UBXOutput { return &UBXOutput{w: w} }

func (o *UBXOutput) Write(sel allystar.Selection) error {
	_, err := o.w.Write(encodeUBX(sel))
	return err
}

func encodeUBX(sel allystar.Selection) []byte {
	pld := make([]byte, ubxPayloadLength)
	pld[0] = ubxClassRXM
	pld[1] = ubxIDQZSSL6
	binary.LittleEndian.PutUint16(pld[2:], ubxMsgLength)
	pld[4] = ubxMsgVersion
	binary.LittleEndian.PutUint16(pld[5:], uint16(sel.PRN-ubxSVIDOffset)) // SVID
	binary.LittleEndian.PutUint16(pld[7:], uint16(sel.SNR))               // C/No
	// bytes 9:16 stay zero: local time tag, L6 group delay, corrected
	// bit count, channel info; 16:18 reserved
	copy(pld[18:], sel.Payload[:])

	csum1, csum2 := allystar.Checksum(pld)
	out := make([]byte, 0, 4+ubxPayloadLength)
	out = append(out, ubxSync1, ubxSync2, csum1, csum2)
	return append(out, pld...)
}
