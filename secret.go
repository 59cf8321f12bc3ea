package zcrypt

import (
	"runtime"
)

// Wipe overwrites b with zeros. It is safe to call on nil or already wiped slices.
func Wipe(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}

// secretScope collects secrets that must be zeroed when an operation ends
type secretScope struct {
	secrets [][]byte
}

// hold registers b for wiping and returns it
func (s *secretScope) hold(b []byte) []byte {
	s.secrets = append(s.secrets, b)
	return b
}

// wipe zeroes every registered secret. Deferred by Encode and Decode so it
// also runs when a panic unwinds the stack.
func (s *secretScope) wipe() {
	for _, b := range s.secrets {
		Wipe(b)
	}
	s.secrets = nil
}
