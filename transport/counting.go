package transport

import (
	"context"
	"sync/atomic"

	"github.com/haydnv/tbon"
)

// CountingSource wraps a ByteSource and counts the bytes consumed from it.
type CountingSource struct {
	src   tbon.ByteSource
	count uint64
}

func NewCountingSource(src tbon.ByteSource) *CountingSource {
	return &CountingSource{
		src: src,
	}
}

func (c *CountingSource) Count() uint64 {
	return atomic.LoadUint64(&c.count)
}

func (c *CountingSource) Reset() {
	atomic.StoreUint64(&c.count, 0)
}

func (c *CountingSource) ReadChunk(ctx context.Context) ([]byte, error) {
	chunk, err := c.src.ReadChunk(ctx)
	atomic.AddUint64(&c.count, uint64(len(chunk)))
	return chunk, err
}
