package tbon

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Encodable is implemented by types that can describe themselves to an
// Encoder. EncodeStream must issue exactly one top-level write call: one
// scalar method, or one begin-composite call followed by its per-element
// writes and End.
type Encodable interface {
	EncodeStream(e *Encoder) error
}

// Encoder is the handle passed to an Encodable while its value is being
// walked. It never performs I/O itself; it only produces chunks for the
// enclosing ChunkStream's consumer to write.
type Encoder struct {
	stream *ChunkStream
}

func (e *Encoder) emit(chunk []byte) error {
	return e.stream.emit(chunk)
}

func (e *Encoder) emitScalar(tag Tag, payload ...byte) error {
	chunk := make([]byte, 0, len(payload)+1)
	chunk = append(chunk, byte(tag))
	chunk = append(chunk, payload...)
	return e.emit(chunk)
}

func (e *Encoder) emitLengthPrefixed(tag Tag, payload []byte) error {
	header := make([]byte, 1, 1+binary.MaxVarintLen64)
	header[0] = byte(tag)
	header = binary.AppendUvarint(header, uint64(len(payload)))
	if err := e.emit(header); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	return e.emit(payload)
}

func (e *Encoder) EncodeNone() error {
	return e.emitScalar(TagNone)
}

func (e *Encoder) EncodeBool(v bool) error {
	payload := byte(0x00)
	if v {
		payload = 0x01
	}
	return e.emitScalar(TagBool, payload)
}

func (e *Encoder) EncodeInt8(v int8) error {
	return e.emitScalar(TagI8, byte(v))
}

func (e *Encoder) EncodeInt16(v int16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(v))
	return e.emitScalar(TagI16, buf[:]...)
}

func (e *Encoder) EncodeInt32(v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	return e.emitScalar(TagI32, buf[:]...)
}

func (e *Encoder) EncodeInt64(v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	return e.emitScalar(TagI64, buf[:]...)
}

func (e *Encoder) EncodeUint8(v uint8) error {
	return e.emitScalar(TagU8, v)
}

func (e *Encoder) EncodeUint16(v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	return e.emitScalar(TagU16, buf[:]...)
}

func (e *Encoder) EncodeUint32(v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return e.emitScalar(TagU32, buf[:]...)
}

func (e *Encoder) EncodeUint64(v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return e.emitScalar(TagU64, buf[:]...)
}

func (e *Encoder) EncodeFloat32(v float32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], math.Float32bits(v))
	return e.emitScalar(TagF32, buf[:]...)
}

func (e *Encoder) EncodeFloat64(v float64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
	return e.emitScalar(TagF64, buf[:]...)
}

func (e *Encoder) EncodeUUID(v uuid.UUID) error {
	return e.emitScalar(TagUUID, v[:]...)
}

func (e *Encoder) EncodeString(v string) error {
	return e.emitLengthPrefixed(TagString, []byte(v))
}

// EncodeBytes encodes a raw byte blob. The payload is emitted without
// copying, so it must not be mutated until the stream has been consumed.
func (e *Encoder) EncodeBytes(v []byte) error {
	return e.emitLengthPrefixed(TagBytes, v)
}

// EncodeSeq begins a sequence. A non-negative size selects the
// length-prefixed form and declares the element count; a negative size
// selects the streaming form, terminated by an end-of-composite marker
// when End is called.
func (e *Encoder) EncodeSeq(size int) (*SeqEncoder, error) {
	if size >= 0 {
		header := make([]byte, 1, 1+binary.MaxVarintLen64)
		header[0] = byte(TagSeq)
		header = binary.AppendUvarint(header, uint64(size))
		if err := e.emit(header); err != nil {
			return nil, err
		}
		return &SeqEncoder{e: e, declared: size}, nil
	}

	if err := e.emitScalar(TagSeqStream); err != nil {
		return nil, err
	}
	return &SeqEncoder{e: e, declared: -1}, nil
}

// EncodeMap begins a map. Size semantics match EncodeSeq, counting entries.
func (e *Encoder) EncodeMap(size int) (*MapEncoder, error) {
	if size >= 0 {
		header := make([]byte, 1, 1+binary.MaxVarintLen64)
		header[0] = byte(TagMap)
		header = binary.AppendUvarint(header, uint64(size))
		if err := e.emit(header); err != nil {
			return nil, err
		}
		return &MapEncoder{e: e, declared: size}, nil
	}

	if err := e.emitScalar(TagMapStream); err != nil {
		return nil, err
	}
	return &MapEncoder{e: e, declared: -1}, nil
}

// EncodeTuple begins a tuple of the given arity. Arity is not stored on the
// wire; the decoding side must supply the same arity.
func (e *Encoder) EncodeTuple(arity int) (*TupleEncoder, error) {
	if arity < 0 {
		return nil, errors.Wrap(ErrEncodingInconsistent, "tuple arity must be non-negative")
	}
	if err := e.emitScalar(TagTuple); err != nil {
		return nil, err
	}
	return &TupleEncoder{e: e, arity: arity}, nil
}

// EncodeValue encodes any supported Go value, dispatching on its type.
func (e *Encoder) EncodeValue(v interface{}) error {
	switch it := v.(type) {
	case nil:
		return e.EncodeNone()
	case Encodable:
		return it.EncodeStream(e)
	case bool:
		return e.EncodeBool(it)
	case int8:
		return e.EncodeInt8(it)
	case int16:
		return e.EncodeInt16(it)
	case int32:
		return e.EncodeInt32(it)
	case int64:
		return e.EncodeInt64(it)
	case int:
		return e.EncodeInt64(int64(it))
	case uint8:
		return e.EncodeUint8(it)
	case uint16:
		return e.EncodeUint16(it)
	case uint32:
		return e.EncodeUint32(it)
	case uint64:
		return e.EncodeUint64(it)
	case uint:
		return e.EncodeUint64(uint64(it))
	case float32:
		return e.EncodeFloat32(it)
	case float64:
		return e.EncodeFloat64(it)
	case uuid.UUID:
		return e.EncodeUUID(it)
	case string:
		return e.EncodeString(it)
	case []byte:
		return e.EncodeBytes(it)
	case Tuple:
		tup, err := e.EncodeTuple(len(it))
		if err != nil {
			return err
		}
		for _, elem := range it {
			if err := tup.Element(elem); err != nil {
				return err
			}
		}
		return tup.End()
	case Map:
		m, err := e.EncodeMap(len(it))
		if err != nil {
			return err
		}
		for _, entry := range it {
			if err := m.Entry(entry.Key, entry.Value); err != nil {
				return err
			}
		}
		return m.End()
	case []interface{}:
		seq, err := e.EncodeSeq(len(it))
		if err != nil {
			return err
		}
		for _, elem := range it {
			if err := seq.Element(elem); err != nil {
				return err
			}
		}
		return seq.End()
	default:
		return e.encodeReflect(v)
	}
}

func (e *Encoder) encodeReflect(v interface{}) error {
	val := reflect.ValueOf(v)
	switch val.Kind() {
	case reflect.Ptr:
		if val.IsNil() {
			return e.EncodeNone()
		}
		return e.EncodeValue(val.Elem().Interface())
	case reflect.Slice, reflect.Array:
		seq, err := e.EncodeSeq(val.Len())
		if err != nil {
			return err
		}
		for i := 0; i < val.Len(); i++ {
			if err := seq.Element(val.Index(i).Interface()); err != nil {
				return err
			}
		}
		return seq.End()
	case reflect.Map:
		// Go map iteration order is unspecified; use the Map type to
		// encode entries in a particular order.
		m, err := e.EncodeMap(val.Len())
		if err != nil {
			return err
		}
		iter := val.MapRange()
		for iter.Next() {
			if err := m.Entry(iter.Key().Interface(), iter.Value().Interface()); err != nil {
				return err
			}
		}
		return m.End()
	default:
		return errors.Errorf("type %s cannot be encoded", reflect.TypeOf(v).String())
	}
}

// SeqEncoder encodes the elements of one sequence.
type SeqEncoder struct {
	e        *Encoder
	declared int // -1 for the streaming form
	count    int
	ended    bool
}

func (s *SeqEncoder) Element(v interface{}) error {
	if s.ended {
		return errors.Wrap(ErrEncodingInconsistent, "sequence element encoded after End")
	}
	s.count++
	return s.e.EncodeValue(v)
}

func (s *SeqEncoder) End() error {
	if s.ended {
		return errors.Wrap(ErrEncodingInconsistent, "sequence ended twice")
	}
	s.ended = true

	if s.declared >= 0 {
		if s.count != s.declared {
			return errors.Wrapf(ErrEncodingInconsistent,
				"sequence declared %d elements but encoded %d", s.declared, s.count)
		}
		return nil
	}
	return s.e.emitScalar(TagEnd)
}

// MapEncoder encodes the entries of one map, as adjacent key-then-value
// pairs in the order they are written.
type MapEncoder struct {
	e          *Encoder
	declared   int // -1 for the streaming form
	count      int
	pendingKey bool
	ended      bool
}

func (m *MapEncoder) Key(k interface{}) error {
	if m.ended {
		return errors.Wrap(ErrEncodingInconsistent, "map key encoded after End")
	}
	if m.pendingKey {
		return errors.Wrap(ErrEncodingInconsistent, "Value must be called before the next Key")
	}
	m.pendingKey = true
	return m.e.EncodeValue(k)
}

func (m *MapEncoder) Value(v interface{}) error {
	if !m.pendingKey {
		return errors.Wrap(ErrEncodingInconsistent, "Key must be called before Value")
	}
	m.pendingKey = false
	m.count++
	return m.e.EncodeValue(v)
}

func (m *MapEncoder) Entry(k, v interface{}) error {
	if err := m.Key(k); err != nil {
		return err
	}
	return m.Value(v)
}

func (m *MapEncoder) End() error {
	if m.ended {
		return errors.Wrap(ErrEncodingInconsistent, "map ended twice")
	}
	if m.pendingKey {
		return errors.Wrap(ErrEncodingInconsistent, "map ended with a key missing its value")
	}
	m.ended = true

	if m.declared >= 0 {
		if m.count != m.declared {
			return errors.Wrapf(ErrEncodingInconsistent,
				"map declared %d entries but encoded %d", m.declared, m.count)
		}
		return nil
	}
	return m.e.emitScalar(TagEnd)
}

// TupleEncoder encodes the elements of one fixed-arity tuple.
type TupleEncoder struct {
	e     *Encoder
	arity int
	count int
	ended bool
}

func (t *TupleEncoder) Element(v interface{}) error {
	if t.ended {
		return errors.Wrap(ErrEncodingInconsistent, "tuple element encoded after End")
	}
	if t.count == t.arity {
		return errors.Wrapf(ErrEncodingInconsistent, "tuple arity %d exceeded", t.arity)
	}
	t.count++
	return t.e.EncodeValue(v)
}

func (t *TupleEncoder) End() error {
	if t.ended {
		return errors.Wrap(ErrEncodingInconsistent, "tuple ended twice")
	}
	t.ended = true
	if t.count != t.arity {
		return errors.Wrapf(ErrEncodingInconsistent,
			"tuple declared arity %d but encoded %d elements", t.arity, t.count)
	}
	return nil
}
