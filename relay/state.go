package relay

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// MinStateLength is the least number of random bytes in a state value.
const MinStateLength = 16

// StateGenerator produces anti-forgery state values.
type StateGenerator interface {
	Generate() (string, error)
}

// RandomState generates hex encoded states from crypto/rand.
type RandomState struct {
	length int
}

var _ StateGenerator = RandomState{}

// NewRandomState returns a generator of length random bytes, raised to
// MinStateLength when smaller.
func NewRandomState(length int) RandomState {
	if length < MinStateLength {
		length = MinStateLength
	}
	return RandomState{length: length}
}

func (g RandomState) Generate() (string, error) {
	b := make([]byte, max(g.length, MinStateLength))
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("[relay RandomState] reading random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
