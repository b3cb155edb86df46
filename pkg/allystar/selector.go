package allystar

const numSlots = PRNMax - PRNMin + 1

// Selection is the payload chosen for one finished epoch. The zero
// value (PRN 0) means the epoch ended with no qualifying candidate.
type Selection struct {
	PRN     int
	SNR     uint8
	Payload [PayloadLength]byte
}

type slot struct {
	snr      uint8
	occupied bool
	payload  [PayloadLength]byte
}

// StoreEntry reports one buffered satellite for introspection.
type StoreEntry struct {
	PRN int   `json:"prn"`
	SNR uint8 `json:"snr"`
}

// EpochSelector buffers per-satellite payloads until a change in
// time-of-week signals that the previous epoch is complete, then picks
// exactly one satellite for it: the requested PRN if one was given, or
// the strongest signal otherwise. The store holds one slot per PRN in
// the QZSS block; the last frame for a PRN within an epoch wins.
type EpochSelector struct {
	slots   [numSlots]slot
	count   int
	lastTOW int64 // -1 until the first frame is seen
}

func NewEpochSelector() *EpochSelector {
	return &EpochSelector{lastTOW: -1}
}

// Process runs one frame through the selector. It first flushes the
// previous epoch if f opens a new one, then buffers f when its tag set
// is clean. Both can happen in a single call: the flush serves the
// epoch that just ended, the buffer feeds the one that just began.
// flushed reports whether an epoch boundary was crossed; the returned
// Selection is meaningful only then, and may be the zero value when no
// candidate qualified.
func (e *EpochSelector) Process(f Frame, requested int) (sel Selection, flushed bool) {
	if e.lastTOW < 0 {
		e.lastTOW = int64(f.TOW)
	} else if int64(f.TOW) != e.lastTOW && e.count > 0 {
		e.lastTOW = int64(f.TOW)
		sel = e.flush(requested)
		flushed = true
	}
	if f.Tags.Empty() {
		e.buffer(f)
	}
	return sel, flushed
}

func (e *EpochSelector) flush(requested int) Selection {
	var sel Selection
	if requested != 0 {
		if requested >= PRNMin && requested <= PRNMax {
			if s := &e.slots[requested-PRNMin]; s.occupied {
				sel = Selection{PRN: requested, SNR: s.snr, Payload: s.payload}
			}
		}
	} else {
		// Strict > keeps the lowest PRN among equal maxima and never
		// picks an entry with zero strength.
		for prn := PRNMin; prn <= PRNMax; prn++ {
			s := &e.slots[prn-PRNMin]
			if s.occupied && s.snr > sel.SNR {
				sel = Selection{PRN: prn, SNR: s.snr, Payload: s.payload}
			}
		}
	}
	e.slots = [numSlots]slot{}
	e.count = 0
	return sel
}

func (e *EpochSelector) buffer(f Frame) {
	if f.PRN < PRNMin || f.PRN > PRNMax {
		return
	}
	s := &e.slots[f.PRN-PRNMin]
	if !s.occupied {
		e.count++
	}
	s.occupied = true
	s.snr = f.SNR
	s.payload = f.Payload
}

// Entries lists the satellites buffered for the current epoch in
// ascending PRN order.
func (e *EpochSelector) Entries() []StoreEntry {
	out := make([]StoreEntry, 0, e.count)
	for prn := PRNMin; prn <= PRNMax; prn++ {
		if s := &e.slots[prn-PRNMin]; s.occupied {
			out = append(out, StoreEntry{PRN: prn, SNR: s.snr})
		}
	}
	return out
}

// LastTOW returns the time-of-week of the current epoch, or -1 before
// any frame has been seen.
func (e *EpochSelector) LastTOW() int64 { return e.lastTOW }
