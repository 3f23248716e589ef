package tbon

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// ByteSource is an asynchronous provider of bytes: a reliable, ordered
// stream delivered in chunks of arbitrary, meaningless size.
type ByteSource interface {
	// ReadChunk returns the next chunk of at least one byte, or io.EOF once
	// the stream is exhausted. The returned slice is only valid until the
	// next call to ReadChunk.
	ReadChunk(ctx context.Context) ([]byte, error)
}

// SourceFromChunks returns a ByteSource that replays the given chunks in
// order. Useful for tests and for buffers already in memory.
func SourceFromChunks(chunks ...[]byte) ByteSource {
	return &chunkSource{chunks: chunks}
}

type chunkSource struct {
	chunks [][]byte
}

func (s *chunkSource) ReadChunk(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for len(s.chunks) > 0 {
		chunk := s.chunks[0]
		s.chunks = s.chunks[1:]
		if len(chunk) > 0 {
			return chunk, nil
		}
	}
	return nil, io.EOF
}

// SourceFromReader adapts a blocking io.Reader to a ByteSource.
func SourceFromReader(r io.Reader) ByteSource {
	return &readerSource{r: r, buf: make([]byte, 4096)}
}

type readerSource struct {
	r   io.Reader
	buf []byte
}

func (s *readerSource) ReadChunk(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for {
		n, err := s.r.Read(s.buf)
		if n > 0 {
			return s.buf[:n], nil
		}
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, errors.Wrap(err, "error reading from source")
		}
	}
}

// SourceFromStream adapts an encoder's ChunkStream to a ByteSource, so a
// value can be decoded directly from its own encoding.
func SourceFromStream(stream *ChunkStream) ByteSource {
	return &streamSource{stream: stream}
}

type streamSource struct {
	stream *ChunkStream
}

func (s *streamSource) ReadChunk(ctx context.Context) ([]byte, error) {
	return s.stream.Next(ctx)
}
