package zcrypt

import (
	"fmt"
)

// Input validation helpers

// ValidateKey checks if a key has the correct size
func ValidateKey(key []byte) error {
	if key == nil {
		return &ValidationError{
			Field:   "key",
			Message: "key cannot be nil",
			Err:     ErrInvalidKey,
		}
	}

	if len(key) != KeySize {
		return &ValidationError{
			Field:   "key",
			Value:   len(key),
			Message: fmt.Sprintf("invalid key size: got %d bytes, expected %d bytes", len(key), KeySize),
			Err:     ErrInvalidKey,
		}
	}

	return nil
}

// ValidateNonce checks if a nonce is an XChaCha20 extended nonce
func ValidateNonce(nonce []byte) error {
	if nonce == nil {
		return &ValidationError{
			Field:   "nonce",
			Message: "nonce cannot be nil",
			Err:     ErrInvalidNonce,
		}
	}

	if len(nonce) != NonceSize {
		return &ValidationError{
			Field:   "nonce",
			Value:   len(nonce),
			Message: fmt.Sprintf("invalid nonce size: got %d bytes, expected %d bytes", len(nonce), NonceSize),
			Err:     ErrInvalidNonce,
		}
	}

	return nil
}

// ValidateSalt checks if a salt matches the container salt length
func ValidateSalt(salt []byte) error {
	if salt == nil {
		return &ValidationError{
			Field:   "salt",
			Message: "salt cannot be nil",
			Err:     ErrInvalidSalt,
		}
	}

	if len(salt) != SaltSize {
		return &ValidationError{
			Field:   "salt",
			Value:   len(salt),
			Message: fmt.Sprintf("invalid salt size: got %d bytes, expected %d bytes", len(salt), SaltSize),
			Err:     ErrInvalidSalt,
		}
	}

	return nil
}

// ValidateThreads checks an encoder thread count; zero means automatic
func ValidateThreads(threads int) error {
	if threads < 0 {
		return &ValidationError{
			Field:   "threads",
			Value:   threads,
			Message: "thread count cannot be negative",
		}
	}
	if threads > MaxThreads {
		return &ValidationError{
			Field:   "threads",
			Value:   threads,
			Message: fmt.Sprintf("thread count too large: got %d, maximum is %d", threads, MaxThreads),
		}
	}
	return nil
}
