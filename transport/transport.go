// Package transport provides byte-source and sink adapters for moving
// encoded tbon values over readers, writers, in-memory pipes and
// snappy-framed channels. The core codec depends only on the narrow
// ByteSource/Sink capabilities; everything here is glue.
package transport

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/haydnv/tbon"
)

// Sink accepts encoded chunks in order.
type Sink interface {
	WriteChunk(ctx context.Context, chunk []byte) error
}

// WriterSink adapts a blocking io.Writer to a Sink.
func WriterSink(w io.Writer) Sink {
	return &writerSink{w: w}
}

type writerSink struct {
	w io.Writer
}

func (s *writerSink) WriteChunk(ctx context.Context, chunk []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.w.Write(chunk); err != nil {
		return errors.Wrap(err, "error writing chunk")
	}
	return nil
}

// Copy drains the stream into the sink in order, closing the stream when
// done. Since the stream is pull-based, no chunk is produced before the sink
// has accepted the previous one.
func Copy(ctx context.Context, dst Sink, src *tbon.ChunkStream) error {
	defer src.Close()

	for {
		chunk, err := src.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := dst.WriteChunk(ctx, chunk); err != nil {
			return err
		}
	}
}
