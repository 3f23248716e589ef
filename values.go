package tbon

import (
	"context"
	"math"
	"strconv"

	"github.com/google/uuid"
)

// Tuple is a fixed-arity, heterogeneous value. Its arity is not stored on
// the wire, so the decoding side must supply a TupleVisitor with the same
// arity.
type Tuple []interface{}

// Entry is one key/value pair of a Map.
type Entry struct {
	Key   interface{}
	Value interface{}
}

// Map is an ordered list of key/value pairs. Entries encode and decode in
// their original order, never reordered by key.
type Map []Entry

// ValueVisitor reconstructs any value generically: scalars as their Go
// equivalents, none as nil, sequences as []interface{} and maps as Map.
// Tuples are rejected, since their arity is not on the wire.
type ValueVisitor struct{}

var _ Visitor = ValueVisitor{}

func (ValueVisitor) Expecting() string { return "any supported value" }

func (ValueVisitor) VisitNone() (interface{}, error)              { return nil, nil }
func (ValueVisitor) VisitBool(v bool) (interface{}, error)        { return v, nil }
func (ValueVisitor) VisitInt8(v int8) (interface{}, error)        { return v, nil }
func (ValueVisitor) VisitInt16(v int16) (interface{}, error)      { return v, nil }
func (ValueVisitor) VisitInt32(v int32) (interface{}, error)      { return v, nil }
func (ValueVisitor) VisitInt64(v int64) (interface{}, error)      { return v, nil }
func (ValueVisitor) VisitUint8(v uint8) (interface{}, error)      { return v, nil }
func (ValueVisitor) VisitUint16(v uint16) (interface{}, error)    { return v, nil }
func (ValueVisitor) VisitUint32(v uint32) (interface{}, error)    { return v, nil }
func (ValueVisitor) VisitUint64(v uint64) (interface{}, error)    { return v, nil }
func (ValueVisitor) VisitFloat32(v float32) (interface{}, error)  { return v, nil }
func (ValueVisitor) VisitFloat64(v float64) (interface{}, error)  { return v, nil }
func (ValueVisitor) VisitUUID(v uuid.UUID) (interface{}, error)   { return v, nil }
func (ValueVisitor) VisitString(v string) (interface{}, error)    { return v, nil }
func (ValueVisitor) VisitBytes(v []byte) (interface{}, error)     { return v, nil }

func (ValueVisitor) VisitSequence(ctx context.Context, seq *SequenceAccess) (interface{}, error) {
	if seq.IsTuple() {
		return nil, Rejected("any supported value", "a tuple of unknown arity")
	}

	out := []interface{}{}
	for {
		elem, ok, err := seq.Next(ctx, ValueVisitor{})
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, elem)
	}
}

func (ValueVisitor) VisitMap(ctx context.Context, m *MapAccess) (interface{}, error) {
	out := Map{}
	for {
		key, ok, err := m.NextKey(ctx, ValueVisitor{})
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		value, err := m.NextValue(ctx, ValueVisitor{})
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Key: key, Value: value})
	}
}

// BoolVisitor reconstructs a bool.
type BoolVisitor struct{ VisitorBase }

func (BoolVisitor) Expecting() string { return "a boolean" }

func (BoolVisitor) VisitBool(v bool) (interface{}, error) { return v, nil }

// IntVisitor reconstructs an int64 from any integer width, rejecting
// unsigned values that overflow.
type IntVisitor struct{ VisitorBase }

func (IntVisitor) Expecting() string { return "an integer" }

func (IntVisitor) VisitInt8(v int8) (interface{}, error)   { return int64(v), nil }
func (IntVisitor) VisitInt16(v int16) (interface{}, error) { return int64(v), nil }
func (IntVisitor) VisitInt32(v int32) (interface{}, error) { return int64(v), nil }
func (IntVisitor) VisitInt64(v int64) (interface{}, error) { return v, nil }

func (IntVisitor) VisitUint8(v uint8) (interface{}, error)   { return int64(v), nil }
func (IntVisitor) VisitUint16(v uint16) (interface{}, error) { return int64(v), nil }
func (IntVisitor) VisitUint32(v uint32) (interface{}, error) { return int64(v), nil }

func (IntVisitor) VisitUint64(v uint64) (interface{}, error) {
	if v > math.MaxInt64 {
		return nil, Rejected("an integer", "a uint64 too large for int64")
	}
	return int64(v), nil
}

// UintVisitor reconstructs a uint64 from any unsigned width, accepting
// non-negative signed values as well.
type UintVisitor struct{ VisitorBase }

func (UintVisitor) Expecting() string { return "an unsigned integer" }

func (UintVisitor) VisitUint8(v uint8) (interface{}, error)   { return uint64(v), nil }
func (UintVisitor) VisitUint16(v uint16) (interface{}, error) { return uint64(v), nil }
func (UintVisitor) VisitUint32(v uint32) (interface{}, error) { return uint64(v), nil }
func (UintVisitor) VisitUint64(v uint64) (interface{}, error) { return v, nil }

func (UintVisitor) VisitInt8(v int8) (interface{}, error)   { return unsigned(int64(v)) }
func (UintVisitor) VisitInt16(v int16) (interface{}, error) { return unsigned(int64(v)) }
func (UintVisitor) VisitInt32(v int32) (interface{}, error) { return unsigned(int64(v)) }
func (UintVisitor) VisitInt64(v int64) (interface{}, error) { return unsigned(v) }

func unsigned(v int64) (interface{}, error) {
	if v < 0 {
		return nil, Rejected("an unsigned integer", "a negative integer")
	}
	return uint64(v), nil
}

// FloatVisitor reconstructs a float64 from either floating-point width.
type FloatVisitor struct{ VisitorBase }

func (FloatVisitor) Expecting() string { return "a floating-point number" }

func (FloatVisitor) VisitFloat32(v float32) (interface{}, error) { return float64(v), nil }
func (FloatVisitor) VisitFloat64(v float64) (interface{}, error) { return v, nil }

// StringVisitor reconstructs a string.
type StringVisitor struct{ VisitorBase }

func (StringVisitor) Expecting() string { return "a string" }

func (StringVisitor) VisitString(v string) (interface{}, error) { return v, nil }

// BytesVisitor reconstructs a byte slice.
type BytesVisitor struct{ VisitorBase }

func (BytesVisitor) Expecting() string { return "a byte string" }

func (BytesVisitor) VisitBytes(v []byte) (interface{}, error) { return v, nil }

// UUIDVisitor reconstructs a uuid.UUID.
type UUIDVisitor struct{ VisitorBase }

func (UUIDVisitor) Expecting() string { return "a uuid" }

func (UUIDVisitor) VisitUUID(v uuid.UUID) (interface{}, error) { return v, nil }

// SliceVisitor reconstructs a sequence as []interface{}, decoding each
// element with Elem.
type SliceVisitor struct {
	VisitorBase
	Elem Visitor
}

func (s SliceVisitor) Expecting() string { return "a sequence of " + s.Elem.Expecting() }

func (s SliceVisitor) VisitSequence(ctx context.Context, seq *SequenceAccess) (interface{}, error) {
	if seq.IsTuple() {
		return nil, Rejected(s.Expecting(), "a tuple of unknown arity")
	}

	out := []interface{}{}
	if size, ok := seq.Size(); ok {
		out = make([]interface{}, 0, size)
	}
	for {
		elem, ok, err := seq.Next(ctx, s.Elem)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, elem)
	}
}

// MapVisitor reconstructs a map as an ordered Map, decoding keys with Key
// and values with Value.
type MapVisitor struct {
	VisitorBase
	Key   Visitor
	Value Visitor
}

func (m MapVisitor) Expecting() string {
	return "a map of " + m.Key.Expecting() + " to " + m.Value.Expecting()
}

func (m MapVisitor) VisitMap(ctx context.Context, access *MapAccess) (interface{}, error) {
	out := Map{}
	if size, ok := access.Size(); ok {
		out = make(Map, 0, size)
	}
	for {
		key, ok, err := access.NextKey(ctx, m.Key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		value, err := access.NextValue(ctx, m.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Key: key, Value: value})
	}
}

// TupleVisitor reconstructs a tuple of arity len(Elems), decoding the i-th
// element with Elems[i]. It also accepts a sequence of matching length.
type TupleVisitor struct {
	VisitorBase
	Elems []Visitor
}

func (t TupleVisitor) Expecting() string {
	return "a tuple of " + strconv.Itoa(len(t.Elems)) + " elements"
}

func (t TupleVisitor) VisitSequence(ctx context.Context, seq *SequenceAccess) (interface{}, error) {
	if size, ok := seq.Size(); ok && size != len(t.Elems) {
		return nil, Rejected(t.Expecting(), "a sequence of "+strconv.Itoa(size)+" elements")
	}

	out := make(Tuple, 0, len(t.Elems))
	for _, elem := range t.Elems {
		value, ok, err := seq.Next(ctx, elem)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, Rejected(t.Expecting(), "a sequence of "+strconv.Itoa(len(out))+" elements")
		}
		out = append(out, value)
	}

	// a tuple cursor ends exactly at the declared arity; any other form
	// must now report exhaustion
	if !seq.IsTuple() {
		if _, ok, err := seq.Next(ctx, discardVisitor{}); err != nil {
			return nil, err
		} else if ok {
			return nil, Rejected(t.Expecting(), "a longer sequence")
		}
	}
	return out, nil
}

// OptionVisitor accepts none as nil and forwards every other category to
// Some.
type OptionVisitor struct {
	Some Visitor
}

var _ Visitor = OptionVisitor{}

func (o OptionVisitor) Expecting() string { return "an optional " + o.Some.Expecting() }

func (o OptionVisitor) VisitNone() (interface{}, error)             { return nil, nil }
func (o OptionVisitor) VisitBool(v bool) (interface{}, error)       { return o.Some.VisitBool(v) }
func (o OptionVisitor) VisitInt8(v int8) (interface{}, error)       { return o.Some.VisitInt8(v) }
func (o OptionVisitor) VisitInt16(v int16) (interface{}, error)     { return o.Some.VisitInt16(v) }
func (o OptionVisitor) VisitInt32(v int32) (interface{}, error)     { return o.Some.VisitInt32(v) }
func (o OptionVisitor) VisitInt64(v int64) (interface{}, error)     { return o.Some.VisitInt64(v) }
func (o OptionVisitor) VisitUint8(v uint8) (interface{}, error)     { return o.Some.VisitUint8(v) }
func (o OptionVisitor) VisitUint16(v uint16) (interface{}, error)   { return o.Some.VisitUint16(v) }
func (o OptionVisitor) VisitUint32(v uint32) (interface{}, error)   { return o.Some.VisitUint32(v) }
func (o OptionVisitor) VisitUint64(v uint64) (interface{}, error)   { return o.Some.VisitUint64(v) }
func (o OptionVisitor) VisitFloat32(v float32) (interface{}, error) { return o.Some.VisitFloat32(v) }
func (o OptionVisitor) VisitFloat64(v float64) (interface{}, error) { return o.Some.VisitFloat64(v) }
func (o OptionVisitor) VisitUUID(v uuid.UUID) (interface{}, error)  { return o.Some.VisitUUID(v) }
func (o OptionVisitor) VisitString(v string) (interface{}, error)   { return o.Some.VisitString(v) }
func (o OptionVisitor) VisitBytes(v []byte) (interface{}, error)    { return o.Some.VisitBytes(v) }

func (o OptionVisitor) VisitSequence(ctx context.Context, seq *SequenceAccess) (interface{}, error) {
	return o.Some.VisitSequence(ctx, seq)
}

func (o OptionVisitor) VisitMap(ctx context.Context, m *MapAccess) (interface{}, error) {
	return o.Some.VisitMap(ctx, m)
}
