// Package source supplies the raw byte streams the receiver decodes:
// live input on stdin, or recorded captures replayed from a file.
package source

import (
	"io"
	"os"
	"time"
)

type Source interface {
	Reader() io.Reader
	Close() error
}

type StdinSource struct{}

func NewStdin() *StdinSource { return &StdinSource{} }

func (s *StdinSource) Reader() io.Reader { return os.Stdin }

func (s *StdinSource) Close() error { return nil }

// FileSource replays a recorded capture. Reads are capped at readSize
// and spaced by delay so a dump plays back at roughly the rate the
// receiver produced it instead of being consumed in one burst.
type FileSource struct {
	f        *os.File
	readSize int
	delay    time.Duration
}

func NewFile(path string, readSize int, delay time.Duration) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &FileSource{f: f, readSize: readSize, delay: delay}, nil
}

func (s *FileSource) Reader() io.Reader {
	return &pacedReader{r: s.f, readSize: s.readSize, delay: s.delay}
}

func (s *FileSource) Close() error { return s.f.Close() }

type pacedReader struct {
	r        io.Reader
	readSize int
	delay    time.Duration
}

func (p *pacedReader) Read(b []byte) (int, error) {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.readSize > 0 && len(b) > p.readSize {
		b = b[:p.readSize]
	}
	return p.r.Read(b)
}
