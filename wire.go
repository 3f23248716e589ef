package tbon

const (
	// DefaultMaxBytesLen is the maximum byte length of a string or bytes
	// payload the decoder will accept before stopping early.
	DefaultMaxBytesLen = 256 * 1024

	// DefaultMaxContainerLen is the maximum declared element count of a
	// length-prefixed sequence or map the decoder will accept.
	DefaultMaxContainerLen = 1024
)

// Tag is the leading byte identifying the wire category of an encoded value.
type Tag uint8

const (
	TagNone Tag = iota + 1
	TagBool
	TagI8
	TagI16
	TagI32
	TagI64
	TagU8
	TagU16
	TagU32
	TagU64
	TagF32
	TagF64
	TagUUID
	TagString
	TagBytes
	TagSeq
	TagSeqStream
	TagMap
	TagMapStream
	TagTuple
	TagEnd
)

func (t Tag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagBool:
		return "bool"
	case TagI8:
		return "int8"
	case TagI16:
		return "int16"
	case TagI32:
		return "int32"
	case TagI64:
		return "int64"
	case TagU8:
		return "uint8"
	case TagU16:
		return "uint16"
	case TagU32:
		return "uint32"
	case TagU64:
		return "uint64"
	case TagF32:
		return "float32"
	case TagF64:
		return "float64"
	case TagUUID:
		return "uuid"
	case TagString:
		return "string"
	case TagBytes:
		return "bytes"
	case TagSeq:
		return "sequence"
	case TagSeqStream:
		return "sequence (streaming)"
	case TagMap:
		return "map"
	case TagMapStream:
		return "map (streaming)"
	case TagTuple:
		return "tuple"
	case TagEnd:
		return "end-of-composite"
	default:
		return "unknown"
	}
}

// scalarWidth returns the fixed payload size in bytes for scalar tags, or -1
// for tags whose payload is not fixed-width.
func scalarWidth(t Tag) int {
	switch t {
	case TagNone:
		return 0
	case TagBool, TagI8, TagU8:
		return 1
	case TagI16, TagU16:
		return 2
	case TagI32, TagU32, TagF32:
		return 4
	case TagI64, TagU64, TagF64:
		return 8
	case TagUUID:
		return 16
	default:
		return -1
	}
}
