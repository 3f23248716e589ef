package tbon

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type accessMode int

const (
	// accessCounted composites carry a length prefix on the wire.
	accessCounted accessMode = iota
	// accessStreaming composites terminate on an end-of-composite marker.
	accessStreaming
	// accessTuple composites carry neither; arity is supplied externally.
	accessTuple
)

// SequenceAccess is a single-owner cursor over the remaining undecoded
// elements of one sequence or tuple. It borrows its Decoder for the duration
// of the enclosing VisitSequence call; using it afterwards is an error.
//
// The visitor must drain the cursor (call Next until it reports no more
// elements) or explicitly Drain it before returning, so that the byte stream
// position is consistent for whatever follows. The only exception is a tuple
// cursor (IsTuple reports true): a tuple's arity is not on the wire, so the
// visitor must pull exactly the arity it expects and no more.
type SequenceAccess struct {
	d   *Decoder
	tok *accessToken

	mode      accessMode
	total     int
	remaining int
	consumed  int
	done      bool
}

func newSeqAccess(d *Decoder, mode accessMode, count int) *SequenceAccess {
	return &SequenceAccess{
		d:         d,
		tok:       &accessToken{},
		mode:      mode,
		total:     count,
		remaining: count,
	}
}

// Size returns the total element count if it was declared on the wire.
func (a *SequenceAccess) Size() (int, bool) {
	if a.mode == accessCounted {
		return a.total, true
	}
	return 0, false
}

// IsTuple reports whether this cursor reads a tuple, whose arity the visitor
// must supply.
func (a *SequenceAccess) IsTuple() bool {
	return a.mode == accessTuple
}

func (a *SequenceAccess) check() error {
	if a.d.current != a.tok {
		return errors.Wrap(ErrAccessViolation, "sequence access used outside its enclosing decode call")
	}
	if a.done {
		return errors.Wrapf(ErrAccessViolation, "sequence access pulled again after exhaustion (%d elements decoded)", a.consumed)
	}
	return nil
}

// Next decodes the next element with the given Visitor. It returns false
// once the sequence is exhausted, without consuming any further bytes beyond
// the end-of-composite marker in the streaming form.
func (a *SequenceAccess) Next(ctx context.Context, v Visitor) (interface{}, bool, error) {
	if err := a.check(); err != nil {
		return nil, false, err
	}

	switch a.mode {
	case accessCounted:
		if a.remaining == 0 {
			a.done = true
			return nil, false, nil
		}
	case accessStreaming:
		end, err := a.d.atEndMarker(ctx)
		if err != nil {
			return nil, false, errors.Wrapf(err, "sequence element %d", a.consumed)
		}
		if end {
			a.done = true
			return nil, false, nil
		}
	case accessTuple:
		// no end detection: the visitor owns the arity
	}

	value, err := a.d.Decode(ctx, v)
	if err != nil {
		return nil, false, errors.Wrapf(err, "sequence element %d", a.consumed)
	}

	if a.mode == accessCounted {
		a.remaining--
	}
	a.consumed++
	return value, true, nil
}

// Drain skips any remaining elements, leaving the stream positioned after
// the sequence. Draining a tuple is impossible and returns an error.
func (a *SequenceAccess) Drain(ctx context.Context) error {
	if a.mode == accessTuple {
		return errors.Wrap(ErrAccessViolation, "a tuple cannot be drained: its arity is not on the wire")
	}
	for {
		_, ok, err := a.Next(ctx, discardVisitor{})
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// finish verifies the cursor was drained once its visitor returned.
func (a *SequenceAccess) finish() error {
	switch a.mode {
	case accessCounted:
		if a.remaining > 0 {
			return errors.Wrapf(ErrAccessViolation,
				"visitor returned with %d of %d sequence elements undecoded", a.remaining, a.total)
		}
	case accessStreaming:
		if !a.done {
			return errors.Wrapf(ErrAccessViolation,
				"visitor returned without consuming the sequence end marker (%d elements decoded)", a.consumed)
		}
	case accessTuple:
		// unverifiable: arity is not on the wire
	}
	return nil
}

// MapAccess is a single-owner cursor over the remaining undecoded entries of
// one map. NextKey and NextValue must be called in strict alternation; the
// drain contract matches SequenceAccess.
type MapAccess struct {
	d   *Decoder
	tok *accessToken

	mode      accessMode
	total     int
	remaining int
	consumed  int
	pending   bool
	done      bool
}

func newMapAccess(d *Decoder, mode accessMode, count int) *MapAccess {
	return &MapAccess{
		d:         d,
		tok:       &accessToken{},
		mode:      mode,
		total:     count,
		remaining: count,
	}
}

// Size returns the total entry count if it was declared on the wire.
func (a *MapAccess) Size() (int, bool) {
	if a.mode == accessCounted {
		return a.total, true
	}
	return 0, false
}

func (a *MapAccess) check() error {
	if a.d.current != a.tok {
		return errors.Wrap(ErrAccessViolation, "map access used outside its enclosing decode call")
	}
	if a.done {
		return errors.Wrapf(ErrAccessViolation, "map access pulled again after exhaustion (%d entries decoded)", a.consumed)
	}
	return nil
}

// NextKey decodes the next entry's key with the given Visitor, returning
// false once the map is exhausted.
func (a *MapAccess) NextKey(ctx context.Context, v Visitor) (interface{}, bool, error) {
	if err := a.check(); err != nil {
		return nil, false, err
	}
	if a.pending {
		return nil, false, errors.Wrap(ErrAccessViolation, "NextValue must be called before the next NextKey")
	}

	switch a.mode {
	case accessCounted:
		if a.remaining == 0 {
			a.done = true
			return nil, false, nil
		}
	case accessStreaming:
		end, err := a.d.atEndMarker(ctx)
		if err != nil {
			return nil, false, errors.Wrapf(err, "map entry %d", a.consumed)
		}
		if end {
			a.done = true
			return nil, false, nil
		}
	}

	key, err := a.d.Decode(ctx, v)
	if err != nil {
		return nil, false, errors.Wrapf(err, "map key %d", a.consumed)
	}
	a.pending = true
	return key, true, nil
}

// NextValue decodes the value belonging to the key most recently returned by
// NextKey.
func (a *MapAccess) NextValue(ctx context.Context, v Visitor) (interface{}, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	if !a.pending {
		return nil, errors.Wrap(ErrAccessViolation, "NextKey must be called before NextValue")
	}

	value, err := a.d.Decode(ctx, v)
	if err != nil {
		return nil, errors.Wrapf(err, "map value %d", a.consumed)
	}

	a.pending = false
	if a.mode == accessCounted {
		a.remaining--
	}
	a.consumed++
	return value, nil
}

// Drain skips any remaining entries, leaving the stream positioned after the
// map.
func (a *MapAccess) Drain(ctx context.Context) error {
	if a.pending {
		if _, err := a.NextValue(ctx, discardVisitor{}); err != nil {
			return err
		}
	}
	for {
		_, ok, err := a.NextKey(ctx, discardVisitor{})
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if _, err := a.NextValue(ctx, discardVisitor{}); err != nil {
			return err
		}
	}
}

func (a *MapAccess) finish() error {
	if a.pending {
		return errors.Wrapf(ErrAccessViolation,
			"visitor returned with map entry %d missing its value", a.consumed)
	}
	switch a.mode {
	case accessCounted:
		if a.remaining > 0 {
			return errors.Wrapf(ErrAccessViolation,
				"visitor returned with %d of %d map entries undecoded", a.remaining, a.total)
		}
	case accessStreaming:
		if !a.done {
			return errors.Wrapf(ErrAccessViolation,
				"visitor returned without consuming the map end marker (%d entries decoded)", a.consumed)
		}
	}
	return nil
}

// atEndMarker peeks for the end-of-composite marker, consuming it if
// present.
func (d *Decoder) atEndMarker(ctx context.Context) (bool, error) {
	b, err := d.peekByte(ctx)
	if err != nil {
		return false, err
	}
	if Tag(b) == TagEnd {
		d.consume(1)
		return true, nil
	}
	return false, nil
}

// discardVisitor accepts and throws away any value; Drain uses it to skip
// the remainder of an abandoned composite.
type discardVisitor struct{}

func (discardVisitor) Expecting() string { return "any value (discarded)" }

func (discardVisitor) VisitNone() (interface{}, error)           { return nil, nil }
func (discardVisitor) VisitBool(bool) (interface{}, error)       { return nil, nil }
func (discardVisitor) VisitInt8(int8) (interface{}, error)       { return nil, nil }
func (discardVisitor) VisitInt16(int16) (interface{}, error)     { return nil, nil }
func (discardVisitor) VisitInt32(int32) (interface{}, error)     { return nil, nil }
func (discardVisitor) VisitInt64(int64) (interface{}, error)     { return nil, nil }
func (discardVisitor) VisitUint8(uint8) (interface{}, error)     { return nil, nil }
func (discardVisitor) VisitUint16(uint16) (interface{}, error)   { return nil, nil }
func (discardVisitor) VisitUint32(uint32) (interface{}, error)   { return nil, nil }
func (discardVisitor) VisitUint64(uint64) (interface{}, error)   { return nil, nil }
func (discardVisitor) VisitFloat32(float32) (interface{}, error) { return nil, nil }
func (discardVisitor) VisitFloat64(float64) (interface{}, error) { return nil, nil }
func (discardVisitor) VisitUUID(uuid.UUID) (interface{}, error)  { return nil, nil }
func (discardVisitor) VisitString(string) (interface{}, error)   { return nil, nil }
func (discardVisitor) VisitBytes([]byte) (interface{}, error)    { return nil, nil }

func (discardVisitor) VisitSequence(ctx context.Context, seq *SequenceAccess) (interface{}, error) {
	if seq.IsTuple() {
		return nil, errors.Wrap(ErrAccessViolation, "a tuple cannot be skipped: its arity is not on the wire")
	}
	return nil, seq.Drain(ctx)
}

func (discardVisitor) VisitMap(ctx context.Context, m *MapAccess) (interface{}, error) {
	return nil, m.Drain(ctx)
}
