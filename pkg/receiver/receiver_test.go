package receiver

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yoronneko/qzsl6tool/pkg/allystar"
	"github.com/yoronneko/qzsl6tool/pkg/receiver/output"
)

type readerSource struct {
	r io.Reader
}

func (s *readerSource) Reader() io.Reader { return s.r }
func (s *readerSource) Close() error      { return nil }

type collectOutput struct {
	sels []allystar.Selection
}

func (c *collectOutput) Write(sel allystar.Selection) error {
	c.sels = append(c.sels, sel)
	return nil
}

// wireFrame encodes one complete on-air frame, sync marker included.
func wireFrame(prn int, tow uint32, snr uint8) []byte {
	body := make([]byte, allystar.BodyLength)
	body[0], body[1] = 0x02, 0x10
	binary.LittleEndian.PutUint16(body[2:], 264)
	binary.LittleEndian.PutUint16(body[4:], uint16(prn+allystar.PRNOffset))
	body[7] = 65
	binary.BigEndian.PutUint16(body[8:], 2238)
	binary.BigEndian.PutUint32(body[10:], tow)
	body[14] = snr
	for i := 0; i < allystar.PayloadLength; i++ {
		body[16+i] = byte(prn + i)
	}
	csum1, csum2 := allystar.Checksum(body)

	out := append([]byte{0xf1, 0xd9}, body...)
	return append(out, csum1, csum2)
}

func newTestReceiver(t *testing.T, stream []byte, requested int, sink output.Output) *Receiver {
	t.Helper()
	var outputs []output.Output
	if sink != nil {
		outputs = append(outputs, sink)
	}
	r, err := New(&readerSource{r: bytes.NewReader(stream)},
		Options{RequestedPRN: requested, Outputs: outputs},
		WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func TestReceiverEndToEnd(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(wireFrame(193, 100, 30))
	stream.Write(wireFrame(194, 100, 50))
	stream.Write(wireFrame(193, 200, 45))

	sink := &collectOutput{}
	r := newTestReceiver(t, stream.Bytes(), 0, sink)

	if err := r.Start(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("Start() = %v, want io.EOF at stream end", err)
	}

	if len(sink.sels) != 1 {
		t.Fatalf("got %d emissions, want 1", len(sink.sels))
	}
	sel := sink.sels[0]
	if sel.PRN != 194 || sel.SNR != 50 {
		t.Fatalf("emitted {PRN %d SNR %d}, want {PRN 194 SNR 50}", sel.PRN, sel.SNR)
	}

	snap := r.Snapshot()
	if snap.FramesReceived != 3 {
		t.Errorf("FramesReceived = %d, want 3", snap.FramesReceived)
	}
	if snap.EpochsFlushed != 1 {
		t.Errorf("EpochsFlushed = %d, want 1", snap.EpochsFlushed)
	}
	if snap.LastTOW != 200 {
		t.Errorf("LastTOW = %d, want 200", snap.LastTOW)
	}
	// The rollover frame starts the new epoch's store.
	if len(snap.Store) != 1 || snap.Store[0].PRN != 193 || snap.Store[0].SNR != 45 {
		t.Errorf("Store = %v, want PRN 193 at SNR 45", snap.Store)
	}
	if snap.LastSelection == nil || snap.LastSelection.PRN != 194 {
		t.Errorf("LastSelection = %+v, want PRN 194", snap.LastSelection)
	}
}

func TestReceiverRequestedPRNAbsent(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(wireFrame(193, 100, 30))
	stream.Write(wireFrame(194, 100, 50))
	stream.Write(wireFrame(193, 200, 45))

	sink := &collectOutput{}
	r := newTestReceiver(t, stream.Bytes(), 201, sink)

	if err := r.Start(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("Start() = %v, want io.EOF", err)
	}
	if len(sink.sels) != 0 {
		t.Fatalf("got %d emissions, want none for absent requested PRN", len(sink.sels))
	}
	if snap := r.Snapshot(); snap.EpochsFlushed != 1 {
		t.Errorf("EpochsFlushed = %d, want 1 (empty flush still counts)", snap.EpochsFlushed)
	}
}

func TestReceiverOutOfRangeRequestFallsBack(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(wireFrame(194, 100, 50))
	stream.Write(wireFrame(194, 200, 45))

	sink := &collectOutput{}
	r := newTestReceiver(t, stream.Bytes(), 500, sink)

	if r.opts.RequestedPRN != 0 {
		t.Fatalf("RequestedPRN = %d, want 0 after boundary validation", r.opts.RequestedPRN)
	}
	if err := r.Start(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("Start() = %v, want io.EOF", err)
	}
	if len(sink.sels) != 1 || sink.sels[0].PRN != 194 {
		t.Fatalf("emissions = %v, want automatic selection of 194", sink.sels)
	}
}

func TestReceiverGarbageBetweenFrames(t *testing.T) {
	var stream bytes.Buffer
	stream.Write([]byte{0x00, 0xf1, 0xd9, 0x55})
	stream.Write(wireFrame(195, 100, 20))
	stream.Write([]byte{0xab, 0xcd})
	stream.Write(wireFrame(195, 200, 25))

	sink := &collectOutput{}
	r := newTestReceiver(t, stream.Bytes(), 0, sink)

	if err := r.Start(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("Start() = %v, want io.EOF", err)
	}
	if len(sink.sels) != 1 || sink.sels[0].SNR != 20 {
		t.Fatalf("emissions = %v, want the tow=100 epoch's PRN 195 at SNR 20", sink.sels)
	}
}
