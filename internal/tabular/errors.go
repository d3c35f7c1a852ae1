package tabular

import (
	"fmt"
	"strings"
)

// DecodeError reports that a delimited text file could not be decoded by
// any of the attempted encodings.
type DecodeError struct {
	Path      string
	Encodings []string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s (tried %s): %v", e.Path, strings.Join(e.Encodings, ", "), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ReadError reports that a file could not be opened or parsed at all.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
