package strata

import "errors"

// Sentinel errors returned by the builder, loader, and parser. I/O failures are
// not sentinels; they are wrapped with fmt.Errorf at the point of failure instead.
var (
	// ErrInvalidCorpus is returned when a constructed SentenceID would collide
	// with the reserved tombstone value, or when a document id is added twice.
	ErrInvalidCorpus = errors.New("strata: invalid corpus")

	// ErrBadHeader is returned when a header file fails to deserialize.
	ErrBadHeader = errors.New("strata: bad header")

	// ErrInvalidQuery is returned when a query string fails to lex or parse.
	ErrInvalidQuery = errors.New("strata: invalid query")

	// ErrUnknownKey names the absent-key condition. ImmutableMap and
	// Database lookups do not return it; they report an absent key with an
	// ok=false result instead.
	ErrUnknownKey = errors.New("strata: unknown key")
)
