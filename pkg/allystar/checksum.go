package allystar

// Checksum computes the HD9310 two-byte running checksum over buf.
// The same arithmetic is shared by the u-blox UBX framing.
func Checksum(buf []byte) (byte, byte) {
	var csum1, csum2 byte
	for _, b := range buf {
		csum1 += b
		csum2 += csum1
	}
	return csum1, csum2
}
