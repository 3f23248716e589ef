package tbon

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Decoder reads one or more values from a ByteSource by driving a Visitor
// through a tag-dispatch loop. It maintains only as much read-ahead as the
// current tag requires and never buffers an entire composite.
//
// A Decoder is not safe for concurrent use: decoding one value is one
// logical task with exactly one writer of the decode state at a time.
type Decoder struct {
	src ByteSource
	buf []byte
	eof bool

	// MaxBytesLen is the maximum byte length of a string or bytes payload
	// the Decoder will accept before stopping early.
	MaxBytesLen uint64

	// MaxContainerLen is the maximum declared element count of a
	// length-prefixed sequence or map the Decoder will accept.
	MaxContainerLen uint64

	// current marks the access object allowed to drive this Decoder; access
	// objects check it so that a cursor captured by a visitor cannot be
	// used after its enclosing decode call has returned.
	current *accessToken
}

type accessToken struct{}

// NewDecoder returns a Decoder reading from src with the default limits.
func NewDecoder(src ByteSource) *Decoder {
	return &Decoder{
		src:             src,
		MaxBytesLen:     DefaultMaxBytesLen,
		MaxContainerLen: DefaultMaxContainerLen,
	}
}

// Decode reads exactly one value from src and reconstructs it with the given
// Visitor. Caller-defined schema state travels on ctx, which the core never
// inspects; ctx also bounds every suspension on the underlying source.
func Decode(ctx context.Context, src ByteSource, v Visitor) (interface{}, error) {
	return NewDecoder(src).Decode(ctx, v)
}

// DecodeValue reads one value from src and reconstructs it generically:
// scalars as their Go equivalents, sequences as []interface{}, maps as Map.
func DecodeValue(ctx context.Context, src ByteSource) (interface{}, error) {
	return Decode(ctx, src, ValueVisitor{})
}

// More reports whether another value is available on the source, suspending
// until at least one byte arrives or the source reports end-of-input. It
// consumes nothing.
func (d *Decoder) More(ctx context.Context) (bool, error) {
	for len(d.buf) == 0 && !d.eof {
		if err := d.fill(ctx); err != nil {
			return false, err
		}
	}
	return len(d.buf) > 0, nil
}

// fill suspends until the source yields another chunk, appending it to the
// read-ahead buffer.
func (d *Decoder) fill(ctx context.Context) error {
	if d.eof {
		return nil
	}
	chunk, err := d.src.ReadChunk(ctx)
	if err == nil {
		d.buf = append(d.buf, chunk...)
		return nil
	}
	if errors.Is(err, io.EOF) {
		d.eof = true
		return nil
	}
	return err
}

// require buffers until at least n bytes are available.
func (d *Decoder) require(ctx context.Context, n int) error {
	for len(d.buf) < n && !d.eof {
		if err := d.fill(ctx); err != nil {
			return err
		}
	}
	if len(d.buf) < n {
		return errors.Wrapf(ErrUnexpectedEnd, "needed %d bytes, got %d", n, len(d.buf))
	}
	return nil
}

func (d *Decoder) consume(n int) {
	d.buf = d.buf[n:]
	if len(d.buf) == 0 {
		d.buf = nil
	}
}

func (d *Decoder) readByte(ctx context.Context) (byte, error) {
	if err := d.require(ctx, 1); err != nil {
		return 0, err
	}
	b := d.buf[0]
	d.consume(1)
	return b, nil
}

func (d *Decoder) peekByte(ctx context.Context) (byte, error) {
	if err := d.require(ctx, 1); err != nil {
		return 0, err
	}
	return d.buf[0], nil
}

// window returns the next n buffered bytes without copying; the caller must
// parse them before the next read and then consume them.
func (d *Decoder) window(ctx context.Context, n int) ([]byte, error) {
	if err := d.require(ctx, n); err != nil {
		return nil, err
	}
	return d.buf[:n], nil
}

// readPayload returns a fresh copy of the next n bytes, safe for the caller
// to retain.
func (d *Decoder) readPayload(ctx context.Context, n int) ([]byte, error) {
	if err := d.require(ctx, n); err != nil {
		return nil, err
	}
	payload := make([]byte, n)
	copy(payload, d.buf)
	d.consume(n)
	return payload, nil
}

// readLength reads a varint length prefix and enforces the given bound
// before any allocation takes place.
func (d *Decoder) readLength(ctx context.Context, max uint64, what string) (uint64, error) {
	var n uint64
	var shift uint
	for i := 0; ; i++ {
		b, err := d.readByte(ctx)
		if err != nil {
			return 0, errors.Wrapf(err, "reading %s length", what)
		}
		if b < 0x80 {
			if i == binary.MaxVarintLen64-1 && b > 1 {
				return 0, errors.Wrapf(ErrLengthOverflow, "%s length prefix exceeds 64 bits", what)
			}
			n |= uint64(b) << shift
			break
		}
		if i == binary.MaxVarintLen64-1 {
			return 0, errors.Wrapf(ErrLengthOverflow, "%s length prefix exceeds 64 bits", what)
		}
		n |= uint64(b&0x7f) << shift
		shift += 7
	}

	if n > max {
		return 0, errors.Wrapf(ErrLengthOverflow, "%s length %d exceeds maximum %d", what, n, max)
	}
	return n, nil
}

// Decode reads one tag and the minimal payload needed to identify the next
// value, then invokes the matching Visit method. Composite values recurse
// through the access object handed to the Visitor.
func (d *Decoder) Decode(ctx context.Context, v Visitor) (interface{}, error) {
	b, err := d.readByte(ctx)
	if err != nil {
		return nil, err
	}

	tag := Tag(b)
	switch tag {
	case TagNone:
		return v.VisitNone()

	case TagBool:
		payload, err := d.readByte(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "decoding bool")
		}
		switch payload {
		case 0x00:
			return v.VisitBool(false)
		case 0x01:
			return v.VisitBool(true)
		default:
			return nil, errors.Wrapf(ErrInvalidTag, "invalid boolean value: %#02x", payload)
		}

	case TagI8, TagI16, TagI32, TagI64, TagU8, TagU16, TagU32, TagU64, TagF32, TagF64:
		return d.decodeNumber(ctx, tag, v)

	case TagUUID:
		w, err := d.window(ctx, 16)
		if err != nil {
			return nil, errors.Wrap(err, "decoding uuid")
		}
		id, err := uuid.FromBytes(w)
		if err != nil {
			return nil, errors.Wrap(err, "decoding uuid")
		}
		d.consume(16)
		return v.VisitUUID(id)

	case TagString:
		n, err := d.readLength(ctx, d.MaxBytesLen, "string")
		if err != nil {
			return nil, err
		}
		payload, err := d.readPayload(ctx, int(n))
		if err != nil {
			return nil, errors.Wrap(err, "decoding string")
		}
		if !utf8.Valid(payload) {
			return nil, errors.Wrapf(ErrInvalidText, "string payload of %d bytes", n)
		}
		return v.VisitString(string(payload))

	case TagBytes:
		n, err := d.readLength(ctx, d.MaxBytesLen, "bytes")
		if err != nil {
			return nil, err
		}
		payload, err := d.readPayload(ctx, int(n))
		if err != nil {
			return nil, errors.Wrap(err, "decoding bytes")
		}
		return v.VisitBytes(payload)

	case TagSeq:
		n, err := d.readLength(ctx, d.MaxContainerLen, "sequence")
		if err != nil {
			return nil, err
		}
		return d.visitSequence(ctx, v, newSeqAccess(d, accessCounted, int(n)))

	case TagSeqStream:
		return d.visitSequence(ctx, v, newSeqAccess(d, accessStreaming, 0))

	case TagTuple:
		return d.visitSequence(ctx, v, newSeqAccess(d, accessTuple, 0))

	case TagMap:
		n, err := d.readLength(ctx, d.MaxContainerLen, "map")
		if err != nil {
			return nil, err
		}
		return d.visitMap(ctx, v, newMapAccess(d, accessCounted, int(n)))

	case TagMapStream:
		return d.visitMap(ctx, v, newMapAccess(d, accessStreaming, 0))

	case TagEnd:
		return nil, errors.Wrap(ErrInvalidTag, "end-of-composite marker outside a streaming composite")

	default:
		return nil, errors.Wrapf(ErrInvalidTag, "unknown tag: %#02x", b)
	}
}

func (d *Decoder) decodeNumber(ctx context.Context, tag Tag, v Visitor) (interface{}, error) {
	w, err := d.window(ctx, scalarWidth(tag))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", tag)
	}

	switch tag {
	case TagI8:
		n := int8(w[0])
		d.consume(1)
		return v.VisitInt8(n)
	case TagI16:
		n := int16(binary.BigEndian.Uint16(w))
		d.consume(2)
		return v.VisitInt16(n)
	case TagI32:
		n := int32(binary.BigEndian.Uint32(w))
		d.consume(4)
		return v.VisitInt32(n)
	case TagI64:
		n := int64(binary.BigEndian.Uint64(w))
		d.consume(8)
		return v.VisitInt64(n)
	case TagU8:
		n := w[0]
		d.consume(1)
		return v.VisitUint8(n)
	case TagU16:
		n := binary.BigEndian.Uint16(w)
		d.consume(2)
		return v.VisitUint16(n)
	case TagU32:
		n := binary.BigEndian.Uint32(w)
		d.consume(4)
		return v.VisitUint32(n)
	case TagU64:
		n := binary.BigEndian.Uint64(w)
		d.consume(8)
		return v.VisitUint64(n)
	case TagF32:
		n := math.Float32frombits(binary.BigEndian.Uint32(w))
		d.consume(4)
		return v.VisitFloat32(n)
	default:
		n := math.Float64frombits(binary.BigEndian.Uint64(w))
		d.consume(8)
		return v.VisitFloat64(n)
	}
}

// visitSequence hands a sequence cursor to the visitor and verifies the
// cursor was drained once the visitor returns.
func (d *Decoder) visitSequence(ctx context.Context, v Visitor, a *SequenceAccess) (interface{}, error) {
	prev := d.current
	d.current = a.tok
	defer func() { d.current = prev }()

	out, err := v.VisitSequence(ctx, a)
	if err != nil {
		return nil, err
	}
	if err := a.finish(); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Decoder) visitMap(ctx context.Context, v Visitor, a *MapAccess) (interface{}, error) {
	prev := d.current
	d.current = a.tok
	defer func() { d.current = prev }()

	out, err := v.VisitMap(ctx, a)
	if err != nil {
		return nil, err
	}
	if err := a.finish(); err != nil {
		return nil, err
	}
	return out, nil
}
