package handlers

import (
	"errors"
	"io"
)

// ErrSuperseded means a newer request for the same view replaced this one.
var ErrSuperseded = errors.New("request superseded by a newer one")

// IsEOF reports whether a prompt failed because input ran out.
func IsEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
