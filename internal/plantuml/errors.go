package plantuml

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTokenCharacter is matched by errors from Decode when the
	// token contains a character outside [0-9A-Za-z\-_].
	ErrInvalidTokenCharacter = errors.New("invalid token character")

	// ErrDecompression is matched by errors from the DEFLATE stage.
	ErrDecompression = errors.New("decompression failed")
)

// InvalidCharError reports the offending byte and its offset in the token.
type InvalidCharError struct {
	Char   byte
	Offset int
}

func (e *InvalidCharError) Error() string {
	return fmt.Sprintf("invalid token character %q at offset %d", e.Char, e.Offset)
}

func (e *InvalidCharError) Is(target error) bool { return target == ErrInvalidTokenCharacter }

// DecompressionError wraps a failure from the compressor or decompressor.
type DecompressionError struct {
	Op  string // "deflate" or "inflate"
	Err error
}

func (e *DecompressionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DecompressionError) Unwrap() error { return e.Err }

func (e *DecompressionError) Is(target error) bool { return target == ErrDecompression }
