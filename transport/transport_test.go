package transport

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/haydnv/tbon"
)

func TestPipe_EncodeToDecode(t *testing.T) {
	ctx := context.Background()

	value := tbon.Map{
		{Key: "name", Value: "pipe"},
		{Key: "sizes", Value: []interface{}{int64(1), int64(2), int64(3)}},
	}

	source, sink := Pipe()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer sink.Close()
		return Copy(ctx, sink, tbon.Encode(value))
	})

	var decoded interface{}
	g.Go(func() error {
		var err error
		decoded, err = tbon.DecodeValue(ctx, source)
		return err
	})

	require.NoError(t, g.Wait())
	require.Equal(t, value, decoded)
}

func TestPipe_ReaderCloseUnblocksWriter(t *testing.T) {
	ctx := context.Background()

	source, sink := Pipe()
	require.NoError(t, source.Close())

	err := sink.WriteChunk(ctx, []byte{0x01})
	require.ErrorIs(t, err, ErrPipeClosed)
}

func TestPipe_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source, sink := Pipe()

	require.ErrorIs(t, sink.WriteChunk(ctx, []byte{0x01}), context.Canceled)

	_, err := source.ReadChunk(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSnappy_RoundTrip(t *testing.T) {
	ctx := context.Background()

	value := tbon.Map{
		{Key: "payload", Value: bytes.Repeat([]byte{0xab}, 4096)},
		{Key: "label", Value: "compressible"},
	}

	var buf bytes.Buffer
	sink := NewSnappySink(&buf)
	require.NoError(t, Copy(ctx, sink, tbon.Encode(value)))
	require.NoError(t, sink.Close())

	// the payload is repetitive, so the frames must come out smaller
	require.Less(t, buf.Len(), 4096)

	decoded, err := tbon.DecodeValue(ctx, SnappySource(&buf))
	require.NoError(t, err)
	require.Equal(t, value, decoded)
}

func TestWriterSink_Copy(t *testing.T) {
	ctx := context.Background()

	var direct bytes.Buffer
	require.NoError(t, tbon.EncodeTo(ctx, &direct, "hello"))

	var copied bytes.Buffer
	require.NoError(t, Copy(ctx, WriterSink(&copied), tbon.Encode("hello")))

	require.Equal(t, direct.Bytes(), copied.Bytes())
}

func TestCountingSource(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, tbon.EncodeTo(ctx, &buf, []int64{1, 2, 3}))
	encodedLen := uint64(buf.Len())

	counting := NewCountingSource(tbon.SourceFromReader(&buf))

	decoded, err := tbon.DecodeValue(ctx, counting)
	require.NoError(t, err)
	require.Equal(t, []interface{}{int64(1), int64(2), int64(3)}, decoded)
	require.Equal(t, encodedLen, counting.Count())

	counting.Reset()
	require.Zero(t, counting.Count())
}
