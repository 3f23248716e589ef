package tbon

import (
	"context"

	"github.com/google/uuid"
)

// Visitor turns decoded wire categories into a concrete target value.
//
// Exactly one Visit method is invoked per decode call, chosen by the tag
// actually present in the stream; the Visitor does not get to request a
// category and must handle or reject whatever arrives. Composite methods
// receive a cursor that must be drained before the method returns.
type Visitor interface {
	// Expecting describes the shape this visitor accepts, for use in
	// rejection errors.
	Expecting() string

	VisitNone() (interface{}, error)
	VisitBool(v bool) (interface{}, error)

	VisitInt8(v int8) (interface{}, error)
	VisitInt16(v int16) (interface{}, error)
	VisitInt32(v int32) (interface{}, error)
	VisitInt64(v int64) (interface{}, error)

	VisitUint8(v uint8) (interface{}, error)
	VisitUint16(v uint16) (interface{}, error)
	VisitUint32(v uint32) (interface{}, error)
	VisitUint64(v uint64) (interface{}, error)

	VisitFloat32(v float32) (interface{}, error)
	VisitFloat64(v float64) (interface{}, error)

	VisitUUID(v uuid.UUID) (interface{}, error)
	VisitString(v string) (interface{}, error)
	VisitBytes(v []byte) (interface{}, error)

	VisitSequence(ctx context.Context, seq *SequenceAccess) (interface{}, error)
	VisitMap(ctx context.Context, m *MapAccess) (interface{}, error)
}

// VisitorBase provides rejecting defaults for every Visitor method. Embed it
// and override only the methods for the categories the visitor accepts.
type VisitorBase struct {
	// Expect, if set, names the accepted shape in rejection errors.
	Expect string
}

func (b VisitorBase) Expecting() string {
	if b.Expect == "" {
		return "value"
	}
	return b.Expect
}

func (b VisitorBase) reject(found string) error {
	return Rejected(b.Expecting(), found)
}

func (b VisitorBase) VisitNone() (interface{}, error) {
	return nil, b.reject("none")
}

func (b VisitorBase) VisitBool(bool) (interface{}, error) {
	return nil, b.reject("a boolean")
}

func (b VisitorBase) VisitInt8(int8) (interface{}, error) {
	return nil, b.reject("an int8")
}

func (b VisitorBase) VisitInt16(int16) (interface{}, error) {
	return nil, b.reject("an int16")
}

func (b VisitorBase) VisitInt32(int32) (interface{}, error) {
	return nil, b.reject("an int32")
}

func (b VisitorBase) VisitInt64(int64) (interface{}, error) {
	return nil, b.reject("an int64")
}

func (b VisitorBase) VisitUint8(uint8) (interface{}, error) {
	return nil, b.reject("a uint8")
}

func (b VisitorBase) VisitUint16(uint16) (interface{}, error) {
	return nil, b.reject("a uint16")
}

func (b VisitorBase) VisitUint32(uint32) (interface{}, error) {
	return nil, b.reject("a uint32")
}

func (b VisitorBase) VisitUint64(uint64) (interface{}, error) {
	return nil, b.reject("a uint64")
}

func (b VisitorBase) VisitFloat32(float32) (interface{}, error) {
	return nil, b.reject("a float32")
}

func (b VisitorBase) VisitFloat64(float64) (interface{}, error) {
	return nil, b.reject("a float64")
}

func (b VisitorBase) VisitUUID(uuid.UUID) (interface{}, error) {
	return nil, b.reject("a uuid")
}

func (b VisitorBase) VisitString(string) (interface{}, error) {
	return nil, b.reject("a string")
}

func (b VisitorBase) VisitBytes([]byte) (interface{}, error) {
	return nil, b.reject("a byte string")
}

func (b VisitorBase) VisitSequence(ctx context.Context, seq *SequenceAccess) (interface{}, error) {
	return nil, b.reject("a sequence")
}

func (b VisitorBase) VisitMap(ctx context.Context, m *MapAccess) (interface{}, error) {
	return nil, b.reject("a map")
}
