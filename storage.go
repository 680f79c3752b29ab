package strata

// Span is a byte or element range (Offset, Length) used by the variable and
// archived storage variants' parallel position index.
type Span struct {
	Offset uint64
	Length uint64
}

// FlatStorage is a memory-mapped array of fixed-size records, one per key
// slot, with no separate position index: element i lives at byte offset
// i*codec.Size(). This realizes spec's "Flat" substrate variant.
type FlatStorage[T any] struct {
	region *mmapRegion
	codec  FixedCodec[T]
	n      int
}

// BuildFlatStorage writes values to path as N*codec.Size() bytes and maps the
// result back in read-only.
func BuildFlatStorage[T any](path string, values []T, codec FixedCodec[T]) (*FlatStorage[T], error) {
	size := codec.Size()
	buf := make([]byte, len(values)*size)
	for i, v := range values {
		copy(buf[i*size:(i+1)*size], codec.Encode(v))
	}
	if err := writeFile(path, buf); err != nil {
		return nil, err
	}
	return OpenFlatStorage(path, len(values), codec)
}

// OpenFlatStorage maps an existing flat file back in, given the element
// count recorded in the database's header.
func OpenFlatStorage[T any](path string, n int, codec FixedCodec[T]) (*FlatStorage[T], error) {
	region, err := mmapFile(path)
	if err != nil {
		return nil, err
	}
	return &FlatStorage[T]{region: region, codec: codec, n: n}, nil
}

// Len returns the number of elements.
func (s *FlatStorage[T]) Len() int { return s.n }

// TryGet returns element i, or ok=false if i is out of range.
func (s *FlatStorage[T]) TryGet(i int) (T, bool) {
	if i < 0 || i >= s.n {
		var zero T
		return zero, false
	}
	return s.GetUnchecked(i), true
}

// Get returns element i, panicking if i is out of range (mirrors the
// spec's "get(i) → Item" convenience wrapper over TryGet).
func (s *FlatStorage[T]) Get(i int) T {
	v, ok := s.TryGet(i)
	if !ok {
		panic("strata: FlatStorage index out of range")
	}
	return v
}

// GetUnchecked returns element i without bounds checking. Reserved for paths
// where the index is known valid, e.g. walking MPH slots 0..N.
func (s *FlatStorage[T]) GetUnchecked(i int) T {
	size := s.codec.Size()
	return s.codec.Decode(s.region.data[i*size : (i+1)*size])
}

func (s *FlatStorage[T]) Close() error { return s.region.Close() }

// VariableStorage is a memory-mapped, variable-length-per-key array: the file
// holds every slice's elements concatenated T-aligned, and a parallel
// in-memory positions index records each slice's (offset, length) in units
// of T. This realizes spec's "Variable" substrate variant, used for posting
// lists (T = SentenceID).
type VariableStorage[T any] struct {
	region    *mmapRegion
	codec     FixedCodec[T]
	positions []Span
}

// BuildVariableStorage writes each slice in values concatenated, T-aligned,
// to path, and maps the result back in read-only.
func BuildVariableStorage[T any](path string, values [][]T, codec FixedCodec[T]) (*VariableStorage[T], error) {
	size := codec.Size()
	positions := make([]Span, len(values))

	total := 0
	for _, v := range values {
		total += len(v)
	}
	buf := make([]byte, total*size)

	offset := uint64(0)
	cursor := 0
	for i, v := range values {
		positions[i] = Span{Offset: offset, Length: uint64(len(v))}
		for _, elem := range v {
			copy(buf[cursor:cursor+size], codec.Encode(elem))
			cursor += size
		}
		offset += uint64(len(v))
	}

	if err := writeFile(path, buf); err != nil {
		return nil, err
	}
	region, err := mmapFile(path)
	if err != nil {
		return nil, err
	}
	return &VariableStorage[T]{region: region, codec: codec, positions: positions}, nil
}

// OpenVariableStorage maps an existing variable-length file back in, given
// the position index recorded in the database's header.
func OpenVariableStorage[T any](path string, positions []Span, codec FixedCodec[T]) (*VariableStorage[T], error) {
	region, err := mmapFile(path)
	if err != nil {
		return nil, err
	}
	return &VariableStorage[T]{region: region, codec: codec, positions: positions}, nil
}

// Len returns the number of slices (key slots), not the number of elements.
func (s *VariableStorage[T]) Len() int { return len(s.positions) }

// TryGet decodes and returns the slice at slot i, or ok=false if out of range.
func (s *VariableStorage[T]) TryGet(i int) ([]T, bool) {
	if i < 0 || i >= len(s.positions) {
		return nil, false
	}
	return s.GetUnchecked(i), true
}

// GetUnchecked decodes the slice at slot i without bounds checking.
func (s *VariableStorage[T]) GetUnchecked(i int) []T {
	pos := s.positions[i]
	size := s.codec.Size()
	start := int(pos.Offset) * size
	out := make([]T, pos.Length)
	for j := range out {
		out[j] = s.codec.Decode(s.region.data[start+j*size : start+(j+1)*size])
	}
	return out
}

func (s *VariableStorage[T]) Close() error { return s.region.Close() }

// ArchivedStorage is a memory-mapped array of variable-length serialized
// records, one per key slot, addressed by a parallel (offset, length) byte
// index. This realizes spec's "Archived" substrate variant for arbitrary
// user-defined D (Sentence records, document payloads).
//
// The spec's own DESIGN NOTES sanction this fallback explicitly: no
// zero-copy reinterpretation format appears anywhere in the example corpus
// (no rkyv/bytemuck-equivalent), so values are deserialized via Codec on
// each access rather than reinterpreted in place. Unlike a bare byte offset,
// this module's position index stores explicit lengths too, since a Codec
// result is not self-delimiting the way a true zero-copy archived layout
// would be.
type ArchivedStorage[T any] struct {
	region    *mmapRegion
	codec     Codec[T]
	positions []Span
}

// BuildArchivedStorage serializes each value with codec, concatenates the
// results, and maps the file back in read-only.
func BuildArchivedStorage[T any](path string, values []T, codec Codec[T]) (*ArchivedStorage[T], error) {
	encoded := make([][]byte, len(values))
	total := 0
	for i, v := range values {
		encoded[i] = codec.Encode(v)
		total += len(encoded[i])
	}

	buf := make([]byte, total)
	positions := make([]Span, len(values))
	cursor := uint64(0)
	for i, b := range encoded {
		positions[i] = Span{Offset: cursor, Length: uint64(len(b))}
		copy(buf[cursor:], b)
		cursor += uint64(len(b))
	}

	if err := writeFile(path, buf); err != nil {
		return nil, err
	}
	region, err := mmapFile(path)
	if err != nil {
		return nil, err
	}
	return &ArchivedStorage[T]{region: region, codec: codec, positions: positions}, nil
}

// OpenArchivedStorage maps an existing archived file back in, given the
// position index recorded in the database's header.
func OpenArchivedStorage[T any](path string, positions []Span, codec Codec[T]) (*ArchivedStorage[T], error) {
	region, err := mmapFile(path)
	if err != nil {
		return nil, err
	}
	return &ArchivedStorage[T]{region: region, codec: codec, positions: positions}, nil
}

func (s *ArchivedStorage[T]) Len() int { return len(s.positions) }

func (s *ArchivedStorage[T]) TryGet(i int) (T, bool) {
	if i < 0 || i >= len(s.positions) {
		var zero T
		return zero, false
	}
	return s.GetUnchecked(i), true
}

func (s *ArchivedStorage[T]) GetUnchecked(i int) T {
	pos := s.positions[i]
	return s.codec.Decode(s.region.data[pos.Offset : pos.Offset+pos.Length])
}

func (s *ArchivedStorage[T]) Close() error { return s.region.Close() }
