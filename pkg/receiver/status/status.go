// Package status serves a JSON snapshot of the running receiver over
// HTTP for quick inspection of what the decoder is seeing.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/yoronneko/qzsl6tool/pkg/allystar"
)

type Snapshot struct {
	FramesReceived uint64                `json:"frames_received"`
	FramesInvalid  uint64                `json:"frames_invalid"`
	EpochsFlushed  uint64                `json:"epochs_flushed"`
	LastTOW        int64                 `json:"last_tow"`
	Store          []allystar.StoreEntry `json:"store"`
	LastSelection  *SelectionInfo        `json:"last_selection,omitempty"`
}

type SelectionInfo struct {
	PRN int   `json:"prn"`
	SNR uint8 `json:"snr"`
}

type Server struct {
	port int

	mu     sync.RWMutex
	source func() Snapshot
}

func NewServer(port int) *Server {
	return &Server{port: port}
}

// SetSource registers the snapshot provider. Until one is set the
// endpoint serves an empty snapshot.
func (s *Server) SetSource(fn func() Snapshot) {
	s.mu.Lock()
	s.source = fn
	s.mu.Unlock()
}

func (s *Server) snapshot() Snapshot {
	s.mu.RLock()
	fn := s.source
	s.mu.RUnlock()
	if fn == nil {
		return Snapshot{LastTOW: -1}
	}
	return fn()
}

func (s *Server) routes() http.Handler {
	handler := httprouter.New()
	handler.GET("/status", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.snapshot()); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	return handler
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
