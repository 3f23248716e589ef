package tbon

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"
)

// ErrStreamClosed is returned by the encoder when its ChunkStream is closed
// before the value has been fully produced.
var ErrStreamClosed = errors.New("chunk stream closed")

// ChunkStream is a lazy, finite sequence of byte chunks representing one
// encoded value. Chunk boundaries carry no semantic meaning; consumers must
// treat the sequence as a flat byte stream.
//
// The stream is pull-based: no encoding work happens ahead of what the
// consumer has requested, so writing to a slow sink never buffers
// unboundedly. A ChunkStream may be consumed once; re-encoding requires
// calling Encode again.
type ChunkStream struct {
	value interface{}

	start  sync.Once
	chunks chan []byte
	errs   chan error
	cancel chan struct{}
	closer sync.Once

	done bool
	err  error
}

// Encode walks the given value depth-first and returns its wire-format bytes
// as a lazy ChunkStream. No work is performed until the first call to Next.
//
// Standard Go values (booleans, fixed-width integers, floats, strings, byte
// slices, uuid.UUID, Tuple, Map, slices, arrays, maps and pointers) encode
// directly; any other type must implement Encodable.
func Encode(value interface{}) *ChunkStream {
	return &ChunkStream{
		value:  value,
		chunks: make(chan []byte),
		errs:   make(chan error, 1),
		cancel: make(chan struct{}),
	}
}

// Next returns the next chunk of the encoded value, or io.EOF once the value
// has been fully produced. An encoding failure terminates the stream and is
// returned in place of a chunk. The returned slice is owned by the caller.
func (s *ChunkStream) Next(ctx context.Context) ([]byte, error) {
	s.start.Do(func() {
		go s.run()
	})

	if s.done {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}

	select {
	case chunk, ok := <-s.chunks:
		if ok {
			return chunk, nil
		}
		s.done = true
		s.err = <-s.errs
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close abandons the stream. Abandoning mid-value is always safe from the
// encoder's perspective; the bytes already produced are simply incomplete.
func (s *ChunkStream) Close() error {
	s.closer.Do(func() {
		close(s.cancel)
	})
	return nil
}

func (s *ChunkStream) run() {
	enc := &Encoder{stream: s}
	err := enc.EncodeValue(s.value)
	if errors.Is(err, ErrStreamClosed) {
		err = nil
	}
	s.errs <- err
	close(s.chunks)
}

func (s *ChunkStream) emit(chunk []byte) error {
	select {
	case s.chunks <- chunk:
		return nil
	case <-s.cancel:
		return errors.WithStack(ErrStreamClosed)
	}
}

// EncodeTo encodes the given value and writes its chunks to w in order.
func EncodeTo(ctx context.Context, w io.Writer, value interface{}) error {
	stream := Encode(value)
	defer stream.Close()

	for {
		chunk, err := stream.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := w.Write(chunk); err != nil {
			return errors.Wrap(err, "error writing encoded chunk")
		}
	}
}
