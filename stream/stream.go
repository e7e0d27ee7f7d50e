// Package stream drives a compiled symbol matcher over a character stream.
//
// The driver owns the current matcher state, replays characters the matcher
// did not consume, and flushes any partial match at end of input. Tokens are
// delivered via callbacks to avoid buffering results.
//
// Example usage:
//
//	m := symtrie.MustCompile([]symtrie.Pattern[Token]{
//	    {Literal: "=", Value: Assign},
//	    {Literal: "==", Value: Equal},
//	})
//
//	file, _ := os.Open("source.txt")
//	defer file.Close()
//
//	err := stream.Tokenize(file, m, stream.DefaultConfig(), func(tok stream.Token[Token]) bool {
//	    fmt.Printf("%v at offset %d: %s\n", tok.Value, tok.Offset, tok.Text)
//	    return true // continue
//	})
package stream

import (
	"fmt"
	"unicode"
)

// MinBufferSize is the smallest accepted Config.BufferSize.
const MinBufferSize = 16

// Config configures tokenization behavior.
type Config struct {
	// BufferSize is the read buffer size for the io.Reader.
	// Default: 64KB (65536). Minimum: MinBufferSize.
	BufferSize int

	// Strict rejects characters that start no pattern. By default the
	// matcher absorbs them silently so other token classes can be handled
	// elsewhere.
	Strict bool

	// Skip reports characters that are always allowed between tokens in
	// Strict mode. Default: unicode.IsSpace.
	Skip func(rune) bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize: 64 * 1024, // 64KB
		Skip:       unicode.IsSpace,
	}
}

// ErrBufferTooSmall is returned when Config.BufferSize is below MinBufferSize.
type ErrBufferTooSmall struct {
	Requested int
	Minimum   int
}

func (e ErrBufferTooSmall) Error() string {
	return fmt.Sprintf("stream: buffer size %d too small (minimum %d)", e.Requested, e.Minimum)
}

// Validate validates the Config and returns an error if invalid.
func (c Config) Validate() error {
	if c.BufferSize > 0 && c.BufferSize < MinBufferSize {
		return ErrBufferTooSmall{Requested: c.BufferSize, Minimum: MinBufferSize}
	}
	return nil
}

// ApplyDefaults returns a Config with defaults applied for any zero values.
func (c Config) ApplyDefaults() Config {
	result := c
	if result.BufferSize == 0 {
		result.BufferSize = 64 * 1024
	}
	if result.Skip == nil {
		result.Skip = unicode.IsSpace
	}
	return result
}

// Token is a completed match with stream positioning.
type Token[V any] struct {
	// Value is the value mapped to the matched literal.
	Value V

	// Text is the matched literal.
	Text string

	// Offset is the absolute byte position of the token start within the
	// entire stream (0-indexed).
	Offset int64
}

// UnexpectedRuneError is returned in Strict mode for a character that starts
// no pattern and is not skipped.
type UnexpectedRuneError struct {
	Rune   rune
	Offset int64
}

func (e *UnexpectedRuneError) Error() string {
	return fmt.Sprintf("stream: unexpected %q at offset %d", e.Rune, e.Offset)
}

// TruncatedError is returned when input ends inside a partial match that is
// not itself a literal.
type TruncatedError struct {
	// Text is the unfinished prefix.
	Text   string
	Offset int64
	Err    error
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("stream: input truncated after %q at offset %d: %v", e.Text, e.Offset, e.Err)
}

// Unwrap returns the underlying transition error.
func (e *TruncatedError) Unwrap() error {
	return e.Err
}
