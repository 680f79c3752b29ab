package strata

// Codec encodes and decodes values of type T to and from a variable-length
// byte representation. ArchivedStorage uses this to materialize values from
// a memory-mapped buffer without loading the whole file into the heap.
type Codec[T any] interface {
	Encode(v T) []byte
	Decode(b []byte) T
}

// FixedCodec is a Codec whose encoded form always occupies exactly Size()
// bytes. FlatStorage requires this: a flat file is laid out as N fixed-width
// records with no length prefixes, so every value must round-trip through
// exactly the same number of bytes.
type FixedCodec[T any] interface {
	Codec[T]
	Size() int
	Zero() T
}

// Uint32Codec encodes a uint32 as 4 little-endian bytes. It realizes
// FixedCodec for the common case of dense integer ids and metadata.
type Uint32Codec struct{}

func (Uint32Codec) Encode(v uint32) []byte {
	b := make([]byte, 4)
	putUint32LE(b, v)
	return b
}

func (Uint32Codec) Decode(b []byte) uint32 {
	return getUint32LE(b)
}

func (Uint32Codec) Size() int { return 4 }

func (Uint32Codec) Zero() uint32 { return 0 }

// SentenceIDCodec encodes a SentenceID as 8 little-endian bytes (its Encode
// form), matching the 8-byte-aligned packing the data model calls for.
type SentenceIDCodec struct{}

func (SentenceIDCodec) Encode(v SentenceID) []byte {
	b := make([]byte, 8)
	putUint64LE(b, v.Encode())
	return b
}

func (SentenceIDCodec) Decode(b []byte) SentenceID {
	return DecodeSentenceID(getUint64LE(b))
}

func (SentenceIDCodec) Size() int { return 8 }

func (SentenceIDCodec) Zero() SentenceID { return SentenceID{} }

// BytesCodec is the identity codec: values are already []byte.
type BytesCodec struct{}

func (BytesCodec) Encode(v []byte) []byte { return v }
func (BytesCodec) Decode(b []byte) []byte { return b }

// StringCodec encodes a string as its raw UTF-8 bytes, for document
// payloads or sentence metadata that are just plain text.
type StringCodec struct{}

func (StringCodec) Encode(v string) []byte { return []byte(v) }
func (StringCodec) Decode(b []byte) string { return string(b) }

// EmptyCodec is the zero-size FixedCodec for struct{}, used when a caller
// has no per-document or per-sentence metadata to store.
type EmptyCodec struct{}

func (EmptyCodec) Encode(struct{}) []byte { return nil }
func (EmptyCodec) Decode([]byte) struct{} { return struct{}{} }
func (EmptyCodec) Size() int              { return 0 }
func (EmptyCodec) Zero() struct{}         { return struct{}{} }

func putUint64LE(dst []byte, v uint64) {
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> (8 * i))
	}
}

func getUint64LE(src []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(src[i]) << (8 * i)
	}
	return v
}
