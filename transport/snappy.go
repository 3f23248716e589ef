package transport

import (
	"context"
	"io"

	"github.com/klauspost/compress/snappy"
	"github.com/pkg/errors"

	"github.com/haydnv/tbon"
)

// SnappySource reads a snappy-framed stream from r and exposes the
// decompressed bytes as a ByteSource.
func SnappySource(r io.Reader) tbon.ByteSource {
	return tbon.SourceFromReader(snappy.NewReader(r))
}

// SnappySink compresses chunks into a snappy-framed stream on w. Close must
// be called to flush the final frame.
type SnappySink struct {
	w *snappy.Writer
}

func NewSnappySink(w io.Writer) *SnappySink {
	return &SnappySink{w: snappy.NewBufferedWriter(w)}
}

func (s *SnappySink) WriteChunk(ctx context.Context, chunk []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.w.Write(chunk); err != nil {
		return errors.Wrap(err, "error writing snappy frame")
	}
	return nil
}

// Flush writes any buffered data as a complete frame.
func (s *SnappySink) Flush() error {
	return errors.Wrap(s.w.Flush(), "error flushing snappy frames")
}

func (s *SnappySink) Close() error {
	return errors.Wrap(s.w.Close(), "error closing snappy writer")
}
