package zcrypt

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// KeyProvider turns a password and a salt into a symmetric key
type KeyProvider interface {
	// DeriveKey derives a KeySize key from password and salt
	DeriveKey(password, salt []byte) ([]byte, error)

	// GenerateSalt generates a new random salt
	GenerateSalt() ([]byte, error)
}

// Validate checks the parameter combination against the Argon2 limits
func (p Argon2idParams) Validate() error {
	if p.Iterations < 1 {
		return &ValidationError{Field: "iterations", Value: p.Iterations, Message: "must be at least 1", Err: ErrInvalidParameters}
	}
	if p.Parallelism < 1 {
		return &ValidationError{Field: "parallelism", Value: p.Parallelism, Message: "must be at least 1", Err: ErrInvalidParameters}
	}
	if p.Memory < 8*uint32(p.Parallelism) {
		return &ValidationError{
			Field:   "memory",
			Value:   p.Memory,
			Message: fmt.Sprintf("must be at least %d KiB for parallelism %d", 8*uint32(p.Parallelism), p.Parallelism),
			Err:     ErrInvalidParameters,
		}
	}
	if p.KeySize < 4 {
		return &ValidationError{Field: "key_size", Value: p.KeySize, Message: "must be at least 4 bytes", Err: ErrInvalidParameters}
	}
	return nil
}

// Argon2idKeyProvider implements KeyProvider using Argon2id
type Argon2idKeyProvider struct {
	params Argon2idParams
}

// NewArgon2idKeyProvider creates a key provider. Zero fields fall back to
// FormatParams.
func NewArgon2idKeyProvider(params Argon2idParams) *Argon2idKeyProvider {
	if params.Memory == 0 {
		params.Memory = FormatParams.Memory
	}
	if params.Iterations == 0 {
		params.Iterations = FormatParams.Iterations
	}
	if params.Parallelism == 0 {
		params.Parallelism = FormatParams.Parallelism
	}
	if params.KeySize == 0 {
		params.KeySize = FormatParams.KeySize
	}

	return &Argon2idKeyProvider{params: params}
}

// Params returns the effective parameters
func (p *Argon2idKeyProvider) Params() Argon2idParams {
	return p.params
}

// DeriveKey derives a key from password and salt. The password is not
// modified; wiping it is the caller's job.
func (p *Argon2idKeyProvider) DeriveKey(password, salt []byte) (key []byte, err error) {
	if err := p.params.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateSalt(salt); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			Wipe(key)
			key = nil
			err = &KeyDerivationError{
				Message: fmt.Sprintf("argon2id panicked: %v", r),
				Err:     ErrKeyDerivation,
			}
		}
	}()

	key = argon2.IDKey(
		password,
		salt,
		p.params.Iterations,
		p.params.Memory,
		p.params.Parallelism,
		p.params.KeySize,
	)
	if len(key) != int(p.params.KeySize) {
		Wipe(key)
		return nil, &KeyDerivationError{
			Message: fmt.Sprintf("argon2id returned %d bytes, expected %d", len(key), p.params.KeySize),
			Err:     ErrKeyDerivation,
		}
	}
	return key, nil
}

// GenerateSalt generates a new random salt of SaltSize bytes
func (p *Argon2idKeyProvider) GenerateSalt() ([]byte, error) {
	return randomBytes(SaltSize, "salt")
}

// formatKeys derives keys for containers; tests swap it for a cheaper one
var formatKeys KeyProvider = NewArgon2idKeyProvider(FormatParams)

// DeriveKey derives the container key for password and salt using the
// format's fixed Argon2id parameters
func DeriveKey(password, salt []byte) ([]byte, error) {
	return formatKeys.DeriveKey(password, salt)
}

// GenerateSalt returns a fresh container salt
func GenerateSalt() ([]byte, error) {
	return formatKeys.GenerateSalt()
}

func randomBytes(n int, what string) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate %s: %w", what, err)
	}
	return b, nil
}
