package transport

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"
)

// ErrPipeClosed is returned when writing to a pipe whose reader or writer
// side has been closed.
var ErrPipeClosed = errors.New("pipe closed")

// Pipe returns an in-memory chunk conduit connecting an encoding task to a
// decoding task. Writes block until the reader pulls the chunk, so the
// encoder does no work ahead of the decoder.
func Pipe() (*PipeSource, *PipeSink) {
	p := &pipe{
		chunks: make(chan []byte),
		closed: make(chan struct{}),
	}
	return &PipeSource{p: p}, &PipeSink{p: p}
}

type pipe struct {
	chunks chan []byte
	closed chan struct{}

	once sync.Once
	done sync.Once
}

// PipeSink is the writing half of a Pipe.
type PipeSink struct {
	p *pipe
}

func (s *PipeSink) WriteChunk(ctx context.Context, chunk []byte) error {
	// the writer may reuse the chunk after WriteChunk returns
	owned := make([]byte, len(chunk))
	copy(owned, chunk)

	select {
	case s.p.chunks <- owned:
		return nil
	case <-s.p.closed:
		return errors.WithStack(ErrPipeClosed)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close marks the end of the stream; the reader observes io.EOF after
// draining any chunk already in flight.
func (s *PipeSink) Close() error {
	s.p.done.Do(func() {
		close(s.p.chunks)
	})
	return nil
}

// PipeSource is the reading half of a Pipe.
type PipeSource struct {
	p *pipe
}

func (s *PipeSource) ReadChunk(ctx context.Context) ([]byte, error) {
	select {
	case chunk, ok := <-s.p.chunks:
		if !ok {
			return nil, io.EOF
		}
		return chunk, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close abandons the pipe, unblocking any pending write.
func (s *PipeSource) Close() error {
	s.p.once.Do(func() {
		close(s.p.closed)
	})
	return nil
}
