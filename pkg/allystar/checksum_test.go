package allystar

import "testing"

func TestChecksumKnownValues(t *testing.T) {
	tests := []struct {
		name  string
		in    []byte
		csum1 byte
		csum2 byte
	}{
		{"empty", nil, 0, 0},
		{"single", []byte{0x01}, 1, 1},
		{"small", []byte{0x01, 0x02, 0x03}, 6, 10},
		{"wraps", []byte{0xff, 0xff, 0xff}, 0xfd, 0xfa},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c1, c2 := Checksum(tt.in)
			if c1 != tt.csum1 || c2 != tt.csum2 {
				t.Errorf("Checksum() = (%#x, %#x), want (%#x, %#x)", c1, c2, tt.csum1, tt.csum2)
			}
		})
	}
}

// Any body with its own checksum appended as the trailer must validate
// with no checksum tag.
func TestChecksumRoundTrip(t *testing.T) {
	for seed := 0; seed < 8; seed++ {
		var f RawFrame
		f[0], f[1] = 0x02, 0x10
		for i := 2; i < BodyLength; i++ {
			f[i] = byte(i*7 + seed*13)
		}
		f[BodyLength], f[BodyLength+1] = Checksum(f[:BodyLength])

		if got := Validate(&f); got.Tags.Has(TagChecksum) {
			t.Fatalf("seed %d: round-tripped frame reported checksum tag %q", seed, got.Tags)
		}
	}
}
