package tbon

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, value interface{}, v Visitor) (interface{}, error) {
	t.Helper()
	stream := Encode(value)
	defer stream.Close()
	return Decode(context.Background(), SourceFromStream(stream), v)
}

func TestRoundTrip_Scalars(t *testing.T) {
	id := uuid.MustParse("6c52c102-f62e-4a35-a174-ffe24e36c6b5")

	values := []interface{}{
		nil,
		true,
		false,
		int8(-128),
		int16(-32768),
		int32(-1),
		int64(1234567890123),
		uint8(255),
		uint16(65535),
		uint32(0xdeadbeef),
		uint64(1) << 63,
		float32(3.5),
		float64(-0.25),
		"hello",
		"Привет, мир",
		"",
		[]byte{0x00, 0x01, 0xfe, 0xff},
		id,
	}

	for _, value := range values {
		decoded, err := roundTrip(t, value, ValueVisitor{})
		require.NoError(t, err)
		require.Equal(t, value, decoded)
	}
}

func TestRoundTrip_MixedTuple(t *testing.T) {
	value := Tuple{"one", 2.0, []interface{}{int64(3), int64(4)}, []byte{5}}

	decoded, err := roundTrip(t, value, TupleVisitor{Elems: []Visitor{
		StringVisitor{},
		FloatVisitor{},
		SliceVisitor{Elem: IntVisitor{}},
		BytesVisitor{},
	}})
	require.NoError(t, err)
	require.Equal(t, value, decoded)
}

func TestRoundTrip_EmptySequenceInTuple(t *testing.T) {
	value := Tuple{[]interface{}{}, true}

	decoded, err := roundTrip(t, value, TupleVisitor{Elems: []Visitor{
		SliceVisitor{Elem: ValueVisitor{}},
		BoolVisitor{},
	}})
	require.NoError(t, err)
	require.Equal(t, value, decoded)
}

func TestRoundTrip_MapPreservesOrder(t *testing.T) {
	value := Map{
		{Key: "b", Value: int64(2)},
		{Key: "a", Value: int64(1)},
		{Key: "c", Value: int64(3)},
	}

	decoded, err := roundTrip(t, value, ValueVisitor{})
	require.NoError(t, err)
	require.Equal(t, value, decoded)
}

func TestRoundTrip_NestedComposites(t *testing.T) {
	value := Map{
		{Key: "one", Value: Map{}},
		{Key: "two", Value: Map{
			{Key: "three", Value: []interface{}{float32(4), nil}},
		}},
	}

	decoded, err := roundTrip(t, value, ValueVisitor{})
	require.NoError(t, err)
	require.Equal(t, value, decoded)
}

func TestRoundTrip_StreamingForms(t *testing.T) {
	decoded, err := roundTrip(t, streamSeq{true, "two", int64(3)}, ValueVisitor{})
	require.NoError(t, err)
	require.Equal(t, []interface{}{true, "two", int64(3)}, decoded)

	decoded, err = roundTrip(t, streamMap{{Key: "a", Value: uint8(1)}}, ValueVisitor{})
	require.NoError(t, err)
	require.Equal(t, Map{{Key: "a", Value: uint8(1)}}, decoded)

	decoded, err = roundTrip(t, streamSeq{}, ValueVisitor{})
	require.NoError(t, err)
	require.Equal(t, []interface{}{}, decoded)
}

func TestRoundTrip_Option(t *testing.T) {
	v := OptionVisitor{Some: StringVisitor{}}

	decoded, err := roundTrip(t, (*string)(nil), v)
	require.NoError(t, err)
	require.Nil(t, decoded)

	some := "present"
	decoded, err = roundTrip(t, &some, v)
	require.NoError(t, err)
	require.Equal(t, "present", decoded)
}

func TestRoundTrip_GoMap(t *testing.T) {
	decoded, err := roundTrip(t, map[string]int64{"a": 1}, MapVisitor{
		Key:   StringVisitor{},
		Value: IntVisitor{},
	})
	require.NoError(t, err)
	require.Equal(t, Map{{Key: "a", Value: int64(1)}}, decoded)
}

func TestRoundTrip_IntegerWidening(t *testing.T) {
	for _, value := range []interface{}{int8(-5), int16(-5), int32(-5), int64(-5), uint8(5), uint32(5)} {
		decoded, err := roundTrip(t, value, IntVisitor{})
		require.NoError(t, err)
		switch value.(type) {
		case uint8, uint32:
			require.Equal(t, int64(5), decoded)
		default:
			require.Equal(t, int64(-5), decoded)
		}
	}
}

func TestRoundTrip_VisitorRejections(t *testing.T) {
	_, err := roundTrip(t, true, StringVisitor{})
	require.ErrorIs(t, err, ErrVisitorRejected)

	_, err = roundTrip(t, int64(-1), UintVisitor{})
	require.ErrorIs(t, err, ErrVisitorRejected)

	_, err = roundTrip(t, uint64(1)<<63, IntVisitor{})
	require.ErrorIs(t, err, ErrVisitorRejected)

	// a tuple's arity is not on the wire, so the generic visitor cannot
	// reconstruct it
	_, err = roundTrip(t, Tuple{true}, ValueVisitor{})
	require.ErrorIs(t, err, ErrVisitorRejected)
}

func TestRoundTrip_TupleArityMismatch(t *testing.T) {
	// a counted sequence of two elements does not satisfy a three-element
	// tuple visitor
	_, err := roundTrip(t, []interface{}{true, false}, TupleVisitor{Elems: []Visitor{
		BoolVisitor{}, BoolVisitor{}, BoolVisitor{},
	}})
	require.ErrorIs(t, err, ErrVisitorRejected)

	_, err = roundTrip(t, []interface{}{true, false}, TupleVisitor{Elems: []Visitor{
		BoolVisitor{},
	}})
	require.ErrorIs(t, err, ErrVisitorRejected)
}

func TestRoundTrip_TupleAcceptsCountedSequence(t *testing.T) {
	decoded, err := roundTrip(t, []interface{}{true, "two"}, TupleVisitor{Elems: []Visitor{
		BoolVisitor{}, StringVisitor{},
	}})
	require.NoError(t, err)
	require.Equal(t, Tuple{true, "two"}, decoded)
}
