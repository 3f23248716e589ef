package tbon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// takeVisitor pulls a fixed number of sequence elements and returns without
// draining the rest.
type takeVisitor struct {
	VisitorBase
	n int
}

func (v takeVisitor) VisitSequence(ctx context.Context, seq *SequenceAccess) (interface{}, error) {
	out := []interface{}{}
	for i := 0; i < v.n; i++ {
		elem, ok, err := seq.Next(ctx, ValueVisitor{})
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, elem)
	}
	return out, nil
}

func TestSequenceAccess_UndrainedIsAnError(t *testing.T) {
	_, err := roundTrip(t, []int64{1, 2, 3}, takeVisitor{n: 1})
	require.ErrorIs(t, err, ErrAccessViolation)

	// the streaming form leaves the end marker unconsumed
	_, err = roundTrip(t, streamSeq{int64(1), int64(2)}, takeVisitor{n: 1})
	require.ErrorIs(t, err, ErrAccessViolation)
}

// overdrawVisitor drains the sequence and then pulls once more.
type overdrawVisitor struct{ VisitorBase }

func (overdrawVisitor) VisitSequence(ctx context.Context, seq *SequenceAccess) (interface{}, error) {
	for {
		_, ok, err := seq.Next(ctx, ValueVisitor{})
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
	}
	elem, _, err := seq.Next(ctx, ValueVisitor{})
	return elem, err
}

func TestSequenceAccess_NextAfterExhaustion(t *testing.T) {
	_, err := roundTrip(t, []int64{1}, overdrawVisitor{})
	require.ErrorIs(t, err, ErrAccessViolation)
}

// escapingVisitor drains the sequence but lets the cursor escape the visit.
type escapingVisitor struct {
	VisitorBase
	seq **SequenceAccess
}

func (v escapingVisitor) VisitSequence(ctx context.Context, seq *SequenceAccess) (interface{}, error) {
	*v.seq = seq
	return nil, seq.Drain(ctx)
}

func TestSequenceAccess_EscapedCursorIsRejected(t *testing.T) {
	ctx := context.Background()

	var escaped *SequenceAccess
	stream := Encode([]int64{1, 2})
	defer stream.Close()

	_, err := Decode(ctx, SourceFromStream(stream), escapingVisitor{seq: &escaped})
	require.NoError(t, err)
	require.NotNil(t, escaped)

	_, _, err = escaped.Next(ctx, ValueVisitor{})
	require.ErrorIs(t, err, ErrAccessViolation)
}

// drainVisitor discards the whole composite via Drain.
type drainVisitor struct{ VisitorBase }

func (drainVisitor) VisitSequence(ctx context.Context, seq *SequenceAccess) (interface{}, error) {
	return nil, seq.Drain(ctx)
}

func (drainVisitor) VisitMap(ctx context.Context, m *MapAccess) (interface{}, error) {
	return nil, m.Drain(ctx)
}

func TestSequenceAccess_DrainLeavesStreamConsistent(t *testing.T) {
	// drain the first tuple element, then decode the second normally
	value := Tuple{[]interface{}{int64(1), int64(2), int64(3)}, true}

	decoded, err := roundTrip(t, value, TupleVisitor{Elems: []Visitor{
		drainVisitor{},
		BoolVisitor{},
	}})
	require.NoError(t, err)
	require.Equal(t, Tuple{nil, true}, decoded)
}

func TestSequenceAccess_TupleCannotBeDrained(t *testing.T) {
	_, err := roundTrip(t, Tuple{true}, drainVisitor{})
	require.ErrorIs(t, err, ErrAccessViolation)
}

// badOrderVisitor calls NextValue without a preceding NextKey.
type badOrderVisitor struct{ VisitorBase }

func (badOrderVisitor) VisitMap(ctx context.Context, m *MapAccess) (interface{}, error) {
	return m.NextValue(ctx, ValueVisitor{})
}

// doubleKeyVisitor calls NextKey twice in a row.
type doubleKeyVisitor struct{ VisitorBase }

func (doubleKeyVisitor) VisitMap(ctx context.Context, m *MapAccess) (interface{}, error) {
	if _, _, err := m.NextKey(ctx, ValueVisitor{}); err != nil {
		return nil, err
	}
	_, _, err := m.NextKey(ctx, ValueVisitor{})
	return nil, err
}

// pendingValueVisitor reads a key and returns without its value.
type pendingValueVisitor struct{ VisitorBase }

func (pendingValueVisitor) VisitMap(ctx context.Context, m *MapAccess) (interface{}, error) {
	_, _, err := m.NextKey(ctx, ValueVisitor{})
	return nil, err
}

func TestMapAccess_Alternation(t *testing.T) {
	value := Map{{Key: "a", Value: int64(1)}}

	_, err := roundTrip(t, value, badOrderVisitor{})
	require.ErrorIs(t, err, ErrAccessViolation)

	_, err = roundTrip(t, value, doubleKeyVisitor{})
	require.ErrorIs(t, err, ErrAccessViolation)

	_, err = roundTrip(t, value, pendingValueVisitor{})
	require.ErrorIs(t, err, ErrAccessViolation)
}

func TestMapAccess_UndrainedIsAnError(t *testing.T) {
	value := Map{{Key: "a", Value: int64(1)}, {Key: "b", Value: int64(2)}}

	_, err := roundTrip(t, value, firstEntryVisitor{})
	require.ErrorIs(t, err, ErrAccessViolation)

	_, err = roundTrip(t, streamMap(value), firstEntryVisitor{})
	require.ErrorIs(t, err, ErrAccessViolation)
}

// firstEntryVisitor decodes one entry and returns it, ignoring the rest.
type firstEntryVisitor struct{ VisitorBase }

func (firstEntryVisitor) VisitMap(ctx context.Context, m *MapAccess) (interface{}, error) {
	key, ok, err := m.NextKey(ctx, ValueVisitor{})
	if err != nil || !ok {
		return nil, err
	}
	value, err := m.NextValue(ctx, ValueVisitor{})
	if err != nil {
		return nil, err
	}
	return Entry{Key: key, Value: value}, nil
}

func TestMapAccess_DrainAfterPartialRead(t *testing.T) {
	value := Tuple{
		Map{{Key: "a", Value: int64(1)}, {Key: "b", Value: int64(2)}},
		"after",
	}

	decoded, err := roundTrip(t, value, TupleVisitor{Elems: []Visitor{
		firstEntryThenDrainVisitor{},
		StringVisitor{},
	}})
	require.NoError(t, err)
	require.Equal(t, Tuple{Entry{Key: "a", Value: int64(1)}, "after"}, decoded)
}

// firstEntryThenDrainVisitor decodes one entry, then skips the rest.
type firstEntryThenDrainVisitor struct{ VisitorBase }

func (firstEntryThenDrainVisitor) VisitMap(ctx context.Context, m *MapAccess) (interface{}, error) {
	key, ok, err := m.NextKey(ctx, ValueVisitor{})
	if err != nil || !ok {
		return nil, err
	}
	value, err := m.NextValue(ctx, ValueVisitor{})
	if err != nil {
		return nil, err
	}
	if err := m.Drain(ctx); err != nil {
		return nil, err
	}
	return Entry{Key: key, Value: value}, nil
}

func TestSequenceAccess_SizeReporting(t *testing.T) {
	// the counted form declares its size; streaming and tuple forms do not
	checkSize := func(expected int, counted bool) Visitor {
		return sizeCheckVisitor{t: t, size: expected, counted: counted}
	}

	_, err := roundTrip(t, []int64{1, 2}, checkSize(2, true))
	require.NoError(t, err)

	_, err = roundTrip(t, streamSeq{int64(1), int64(2)}, checkSize(0, false))
	require.NoError(t, err)
}

type sizeCheckVisitor struct {
	VisitorBase
	t       *testing.T
	size    int
	counted bool
}

func (v sizeCheckVisitor) VisitSequence(ctx context.Context, seq *SequenceAccess) (interface{}, error) {
	size, ok := seq.Size()
	require.Equal(v.t, v.counted, ok)
	require.Equal(v.t, v.size, size)
	return nil, seq.Drain(ctx)
}
