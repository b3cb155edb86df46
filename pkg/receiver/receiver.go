// Package receiver wires the decode pipeline together: a byte source
// feeds the frame synchronizer, every frame is validated and handed to
// the epoch selector, and each finished epoch's selection goes to the
// configured outputs.
package receiver

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/yoronneko/qzsl6tool/pkg/allystar"
	"github.com/yoronneko/qzsl6tool/pkg/gnsstime"
	"github.com/yoronneko/qzsl6tool/pkg/receiver/output"
	"github.com/yoronneko/qzsl6tool/pkg/receiver/source"
	"github.com/yoronneko/qzsl6tool/pkg/receiver/status"
	"github.com/yoronneko/qzsl6tool/pkg/util"
)

type Options struct {
	// RequestedPRN pins the emitted satellite; 0 selects the strongest
	// signal each epoch.
	RequestedPRN int
	// ShowMessages logs one event per received frame.
	ShowMessages bool
	Outputs      []output.Output
}

type Receiver struct {
	src       source.Source
	opts      Options
	selector  *allystar.EpochSelector
	writeAPI  api.WriteAPI
	statusSrv *status.Server
	logger    zerolog.Logger

	mu   sync.RWMutex
	snap status.Snapshot

	cancel context.CancelFunc
	ctx    context.Context
}

type ReceiverOption func(r *Receiver) error

func WithInfluxDB(writeAPI api.WriteAPI) ReceiverOption {
	return func(r *Receiver) error {
		r.writeAPI = writeAPI
		return nil
	}
}

func WithLogger(logger zerolog.Logger) ReceiverOption {
	return func(r *Receiver) error {
		r.logger = logger
		return nil
	}
}

func WithStatusServer(srv *status.Server) ReceiverOption {
	return func(r *Receiver) error {
		r.statusSrv = srv
		return nil
	}
}

func New(src source.Source, options Options, opts ...ReceiverOption) (*Receiver, error) {
	r := &Receiver{
		src:      src,
		opts:     options,
		selector: allystar.NewEpochSelector(),
		writeAPI: &util.MockWriteAPI{}, // overwritten with option
		logger:   log.Logger,
	}
	r.snap.LastTOW = -1

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if p := r.opts.RequestedPRN; p != 0 && (p < allystar.PRNMin || p > allystar.PRNMax) {
		r.logger.Warn().Int("prn", p).
			Msg("requested PRN is outside 193-211, selecting automatically")
		r.opts.RequestedPRN = 0
	}

	return r, nil
}

func (r *Receiver) Stop() error {
	if r.cancel != nil {
		r.cancel()
	}
	return r.src.Close()
}

// Start runs the pipeline until the byte source is exhausted or the
// context is cancelled. It returns io.EOF on a clean end of stream.
func (r *Receiver) Start(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	r.ctx, r.cancel = context.WithCancel(ctx)

	if r.statusSrv != nil {
		r.statusSrv.SetSource(r.Snapshot)
		eg.Go(func() error {
			return r.statusSrv.Run(r.ctx)
		})
	}

	eg.Go(r.run)

	return eg.Wait()
}

func (r *Receiver) run() error {
	sync := allystar.NewSynchronizer(bufio.NewReader(r.src.Reader()))
	for {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		raw, err := sync.Next()
		if err != nil {
			r.logger.Info().Msg("end of stream")
			return io.EOF
		}
		if err := r.handleFrame(allystar.Validate(raw)); err != nil {
			return err
		}
	}
}

func (r *Receiver) handleFrame(frame allystar.Frame) error {
	sel, flushed := r.selector.Process(frame, r.opts.RequestedPRN)
	if flushed {
		if err := r.handleFlush(sel); err != nil {
			return err
		}
	}

	if r.opts.ShowMessages {
		ev := r.logger.Info().
			Int("prn", frame.PRN).
			Str("time", gnsstime.Format(frame.Week, frame.TOW)).
			Uint8("snr", frame.SNR)
		if !frame.Tags.Empty() {
			ev = ev.Str("err", frame.Tags.String())
		}
		ev.Msg("frame")
	}

	go r.writeAPI.WritePoint(influxdb2.NewPoint("allystar.frame.received",
		map[string]string{
			"prn": strconv.Itoa(frame.PRN),
		},
		map[string]interface{}{
			"snr":     int(frame.SNR),
			"invalid": boolToInt(!frame.Tags.Empty()),
		}, time.Now()))

	r.mu.Lock()
	r.snap.FramesReceived++
	if !frame.Tags.Empty() {
		r.snap.FramesInvalid++
	}
	r.snap.LastTOW = r.selector.LastTOW()
	r.snap.Store = r.selector.Entries()
	r.mu.Unlock()

	return nil
}

// handleFlush reports the selection for a finished epoch. A zero PRN
// means the epoch had no qualifying candidate; it is counted but
// nothing is written to the outputs.
func (r *Receiver) handleFlush(sel allystar.Selection) error {
	if sel.PRN != 0 {
		r.logger.Info().
			Int("prn", sel.PRN).
			Uint8("snr", sel.SNR).
			Msg("selected satellite")
		for _, out := range r.opts.Outputs {
			if err := out.Write(sel); err != nil {
				return err
			}
		}
	} else {
		r.logger.Debug().Msg("epoch ended with no candidate")
	}

	go r.writeAPI.WritePoint(influxdb2.NewPoint("allystar.epoch.selected",
		map[string]string{
			"prn": strconv.Itoa(sel.PRN),
		},
		map[string]interface{}{
			"snr":   int(sel.SNR),
			"empty": boolToInt(sel.PRN == 0),
		}, time.Now()))

	r.mu.Lock()
	r.snap.EpochsFlushed++
	if sel.PRN != 0 {
		r.snap.LastSelection = &status.SelectionInfo{PRN: sel.PRN, SNR: sel.SNR}
	}
	r.mu.Unlock()

	return nil
}

// Snapshot returns a copy of the receiver's current state for the
// status endpoint.
func (r *Receiver) Snapshot() status.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := r.snap
	snap.Store = append([]allystar.StoreEntry(nil), r.snap.Store...)
	if r.snap.LastSelection != nil {
		last := *r.snap.LastSelection
		snap.LastSelection = &last
	}
	return snap
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
