package strata

import (
	"encoding/binary"
	"fmt"
)

// Header encoding for ImmutableMap: a compact, self-describing binary format
// shared by every header file in the database directory, adapted from the
// teacher's length-prefixed binary framing (serialization.go's
// binary.Write/binary.LittleEndian discipline) — every variable-length field
// is preceded by its own uint64 element count, so decoding never needs to
// guess where one field ends and the next begins.

func appendUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func readUint64(b []byte) (uint64, []byte, error) {
	if len(b) < 8 {
		return 0, nil, fmt.Errorf("%w: truncated uint64", ErrBadHeader)
	}
	return binary.LittleEndian.Uint64(b[:8]), b[8:], nil
}

func readUint32(b []byte) (uint32, []byte, error) {
	if len(b) < 4 {
		return 0, nil, fmt.Errorf("%w: truncated uint32", ErrBadHeader)
	}
	return binary.LittleEndian.Uint32(b[:4]), b[4:], nil
}

// encodeMPHBody appends an MPH's seeds/numBuckets/n to buf.
func encodeMPHBody[K comparable](buf []byte, m *MPH[K]) []byte {
	buf = appendUint64(buf, m.n)
	buf = appendUint64(buf, m.numBuckets)
	buf = appendUint64(buf, uint64(len(m.seeds)))
	for _, s := range m.seeds {
		buf = appendUint32(buf, s)
	}
	return buf
}

// decodeMPHBody reads back the seeds/numBuckets/n written by encodeMPHBody.
// The caller still needs to supply keys (read separately, since key encoding
// differs by K) and hash before the MPH is usable for Lookup.
func decodeMPHBody(b []byte) (n, numBuckets uint64, seeds []uint32, rest []byte, err error) {
	n, b, err = readUint64(b)
	if err != nil {
		return 0, 0, nil, nil, err
	}
	numBuckets, b, err = readUint64(b)
	if err != nil {
		return 0, 0, nil, nil, err
	}
	var seedCount uint64
	seedCount, b, err = readUint64(b)
	if err != nil {
		return 0, 0, nil, nil, err
	}
	seeds = make([]uint32, seedCount)
	for i := range seeds {
		seeds[i], b, err = readUint32(b)
		if err != nil {
			return 0, 0, nil, nil, err
		}
	}
	return n, numBuckets, seeds, b, nil
}

func encodeSpans(buf []byte, spans []Span) []byte {
	buf = appendUint64(buf, uint64(len(spans)))
	for _, s := range spans {
		buf = appendUint64(buf, s.Offset)
		buf = appendUint64(buf, s.Length)
	}
	return buf
}

func decodeSpans(b []byte) ([]Span, []byte, error) {
	count, b, err := readUint64(b)
	if err != nil {
		return nil, nil, err
	}
	spans := make([]Span, count)
	for i := range spans {
		spans[i].Offset, b, err = readUint64(b)
		if err != nil {
			return nil, nil, err
		}
		spans[i].Length, b, err = readUint64(b)
		if err != nil {
			return nil, nil, err
		}
	}
	return spans, b, nil
}

func encodeFixedKeys[K comparable](buf []byte, keys []K, codec FixedCodec[K]) []byte {
	buf = appendUint64(buf, uint64(len(keys)))
	for _, k := range keys {
		buf = append(buf, codec.Encode(k)...)
	}
	return buf
}

func decodeFixedKeys[K comparable](b []byte, codec FixedCodec[K]) ([]K, []byte, error) {
	count, b, err := readUint64(b)
	if err != nil {
		return nil, nil, err
	}
	size := codec.Size()
	keys := make([]K, count)
	for i := range keys {
		if len(b) < size {
			return nil, nil, fmt.Errorf("%w: truncated key array", ErrBadHeader)
		}
		keys[i] = codec.Decode(b[:size])
		b = b[size:]
	}
	return keys, b, nil
}

// EncodeImmutableMapHeader serializes an ImmutableMap's MPH, reordered keys,
// and storage position index into one header byte slice.
func EncodeImmutableMapHeader[K comparable](mph *MPH[K], codec FixedCodec[K], positions []Span) []byte {
	var buf []byte
	buf = encodeMPHBody(buf, mph)
	buf = encodeFixedKeys(buf, mph.keys, codec)
	buf = encodeSpans(buf, positions)
	return buf
}

// DecodeImmutableMapHeader reverses EncodeImmutableMapHeader, reconstructing
// an MPH (with hash reattached, since hash functions are not serializable)
// and its position index.
func DecodeImmutableMapHeader[K comparable](b []byte, codec FixedCodec[K], hash func(K) uint64) (*MPH[K], []Span, error) {
	n, numBuckets, seeds, b, err := decodeMPHBody(b)
	if err != nil {
		return nil, nil, err
	}
	keys, b, err := decodeFixedKeys(b, codec)
	if err != nil {
		return nil, nil, err
	}
	positions, _, err := decodeSpans(b)
	if err != nil {
		return nil, nil, err
	}
	return &MPH[K]{seeds: seeds, numBuckets: numBuckets, n: n, keys: keys, hash: hash}, positions, nil
}

// EncodeTermMapHeader serializes a FrozenTermMap's MPH (over string keys),
// term ids, and stemming flag.
func EncodeTermMapHeader(f *FrozenTermMap) []byte {
	var buf []byte
	buf = encodeMPHBody(buf, f.mph)
	buf = appendUint64(buf, uint64(len(f.mph.keys)))
	for _, k := range f.mph.keys {
		kb := []byte(k)
		buf = appendUint64(buf, uint64(len(kb)))
		buf = append(buf, kb...)
	}
	buf = appendUint64(buf, uint64(len(f.ids)))
	for _, id := range f.ids {
		buf = appendUint32(buf, id)
	}
	if f.stem {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	return buf
}

// DecodeTermMapHeader reverses EncodeTermMapHeader.
func DecodeTermMapHeader(b []byte) (*FrozenTermMap, error) {
	n, numBuckets, seeds, b, err := decodeMPHBody(b)
	if err != nil {
		return nil, err
	}
	keyCount, b, err := readUint64(b)
	if err != nil {
		return nil, err
	}
	keys := make([]string, keyCount)
	for i := range keys {
		var klen uint64
		klen, b, err = readUint64(b)
		if err != nil {
			return nil, err
		}
		if uint64(len(b)) < klen {
			return nil, fmt.Errorf("%w: truncated term key", ErrBadHeader)
		}
		keys[i] = string(b[:klen])
		b = b[klen:]
	}
	idCount, b, err := readUint64(b)
	if err != nil {
		return nil, err
	}
	ids := make([]uint32, idCount)
	for i := range ids {
		ids[i], b, err = readUint32(b)
		if err != nil {
			return nil, err
		}
	}
	if len(b) < 1 {
		return nil, fmt.Errorf("%w: missing stemming flag", ErrBadHeader)
	}
	stemEnabled := b[0] != 0

	m := &MPH[string]{seeds: seeds, numBuckets: numBuckets, n: n, keys: keys, hash: hashString}
	return &FrozenTermMap{mph: m, ids: ids, stem: stemEnabled}, nil
}
