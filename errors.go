package tbon

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidTag indicates a tag byte outside the defined vocabulary, or
	// a corrupt fixed payload such as a boolean byte other than 0x00/0x01.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrUnexpectedEnd indicates that the byte source was exhausted in the
	// middle of a value.
	ErrUnexpectedEnd = errors.New("unexpected end of stream")

	// ErrLengthOverflow indicates a length prefix beyond the decoder's
	// configured maximum.
	ErrLengthOverflow = errors.New("length prefix too large to decode")

	// ErrInvalidText indicates a string payload that is not valid UTF-8.
	ErrInvalidText = errors.New("invalid UTF-8 in string payload")

	// ErrVisitorRejected indicates that the visitor refused the category
	// actually present in the stream.
	ErrVisitorRejected = errors.New("visitor rejected value")

	// ErrEncodingInconsistent indicates that a composite encoder produced a
	// different number of elements than it declared.
	ErrEncodingInconsistent = errors.New("encoded element count does not match declared length")

	// ErrAccessViolation indicates that an access object was used outside
	// its contract: a visitor returned without draining it, pulled past
	// exhaustion, used it after the enclosing decode call returned, or
	// called NextValue/NextKey out of order.
	ErrAccessViolation = errors.New("access object used outside its contract")
)

// Rejected returns a visitor rejection error describing the shape that was
// expected and the category the stream actually offered.
func Rejected(expecting, found string) error {
	return errors.Wrapf(ErrVisitorRejected, "expecting %s, found %s", expecting, found)
}
