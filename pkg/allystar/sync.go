package allystar

import "io"

// Synchronizer scans a byte stream for framed records. It shifts bytes
// one at a time through a 4-byte window until the sync marker lines up,
// then reads the rest of the frame in one contiguous pull. A marker
// that straddles read boundaries is still found, since the window keeps
// its last three bytes after every failed compare.
type Synchronizer struct {
	r io.Reader
}

func NewSynchronizer(r io.Reader) *Synchronizer {
	return &Synchronizer{r: r}
}

// Next returns the next complete frame. io.EOF is the normal end of
// stream: any short read, whether mid-marker, mid-body or mid-trailer,
// terminates the pipeline rather than surfacing as a failure.
func (s *Synchronizer) Next() (*RawFrame, error) {
	var (
		win [SyncLength]byte
		b   [1]byte
	)
	for {
		if _, err := io.ReadFull(s.r, b[:]); err != nil {
			return nil, io.EOF
		}
		win[0], win[1], win[2], win[3] = win[1], win[2], win[3], b[0]
		if win == syncMarker {
			break
		}
	}

	f := new(RawFrame)
	f[0], f[1] = syncMarker[2], syncMarker[3]
	if _, err := io.ReadFull(s.r, f[2:]); err != nil {
		return nil, io.EOF
	}
	return f, nil
}
