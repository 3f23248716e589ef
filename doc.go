/*
Package tbon implements a compact binary serialization format designed to be
streamed incrementally over asynchronous byte channels without materializing
the full payload on either side.

Every encoded value begins with a one-byte tag identifying its category.
Scalars follow their tag as fixed-width big-endian bytes:

	- none: the tag alone.
	- bool: one payload byte, 0x00 or 0x01. Any other payload byte is an
	  error.
	- int8/int16/int32/int64, uint8/uint16/uint32/uint64: one, two, four or
	  eight big-endian bytes.
	- float32/float64: IEEE-754 bits, big-endian.
	- uuid: sixteen raw bytes.

Variable-length values carry a binary.Uvarint length prefix:

	- string: varint byte length followed by UTF-8 payload bytes. Invalid
	  UTF-8 is a decode error.
	- bytes: varint byte length followed by uninterpreted payload bytes.

Composites come in a length-prefixed form (varint element or entry count)
and a streaming form terminated by an end-of-composite marker tag. Tuples
carry neither a count nor a marker: their arity is supplied by the caller
on both sides of the wire. Map entries are adjacent key-then-value pairs
with no extra framing.

Encoding produces a lazy, pull-based ChunkStream:

	stream := tbon.Encode(tbon.Tuple{"one", 2.0, []int64{3, 4}, []byte{5}})
	err := tbon.EncodeTo(ctx, w, value) // convenience drain

Decoding drives a caller-supplied Visitor through a tag-dispatch loop that
suspends whenever the underlying ByteSource has no more bytes immediately
available. Exactly one Visit method is invoked per value, chosen by the tag
actually present in the stream:

	value, err := tbon.DecodeValue(ctx, tbon.SourceFromReader(r))

or, with a custom reconstruction strategy:

	value, err := tbon.Decode(ctx, src, visitor)

Composite values hand the Visitor a SequenceAccess or MapAccess cursor.
The Visitor must drain the cursor (or call Drain to abandon the remainder)
before returning; the enclosing decode call fails otherwise.
*/
package tbon
