// Package parse implements the StreamingParser: a depth-tracked,
// bounded-memory walk of a nested layout description that produces a
// layout.Model incrementally. It never materializes the whole input — see
// TokenSource for the streaming contract.
package parse

// TokenKind distinguishes the three event types the parser consumes.
type TokenKind int

const (
	// ElementStart opens a named, classed group (e.g. an Address, a
	// NextAddr, a Station, a McpZone and its CutLane/Entry/Exit children).
	ElementStart TokenKind = iota
	// ElementEnd closes the most recently opened group.
	ElementEnd
	// Param carries one key/value attribute of the currently open group.
	Param
)

// Token is a single event emitted by a TokenSource.
type Token struct {
	Kind TokenKind

	// Populated on ElementStart.
	Name  string // the vendor "name" attribute, e.g. "Addr_00001"
	Class string // the vendor "class" attribute, e.g. "kr.co.anyid.layout.address.Addr"

	// Populated on Param.
	Key   string
	Value string
}

// TokenSource is a pull-style, one-token-at-a-time stream. Implementations
// must not buffer more than the current element's parameters plus the open
// group stack — this is what keeps StreamingParser's memory bounded
// regardless of total input size.
type TokenSource interface {
	// Next returns the next token, or io.EOF when the stream is exhausted.
	Next() (Token, error)
}
