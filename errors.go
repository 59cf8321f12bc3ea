package zcrypt

import (
	"errors"
	"fmt"
)

// Error types represent different categories of errors

// ValidationError represents a configuration or parameter validation error
type ValidationError struct {
	Field   string // The field or parameter that failed validation
	Value   any    // The invalid value
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// EncryptionError represents a failure to set up the stream cipher
type EncryptionError struct {
	Operation string // Stage that failed, e.g. "cipher"
	Message   string // Human-readable error message
	Err       error  // Underlying error
}

func (e *EncryptionError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Operation, e.Message)
}

func (e *EncryptionError) Unwrap() error {
	return e.Err
}

// IOError represents a failure of the source or the sink
type IOError struct {
	Operation string // "read", "write", "open", "create", "close", etc.
	Path      string // File path, if known
	Offset    int64  // Stream offset, -1 if unknown
	Message   string // Human-readable error message
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" && e.Offset >= 0 {
		return fmt.Sprintf("io error: %s %s at offset %d: %s", e.Operation, e.Path, e.Offset, e.Message)
	} else if e.Path != "" {
		return fmt.Sprintf("io error: %s %s: %s", e.Operation, e.Path, e.Message)
	} else if e.Offset >= 0 {
		return fmt.Sprintf("io error: %s at offset %d: %s", e.Operation, e.Offset, e.Message)
	}
	return fmt.Sprintf("io error: %s: %s", e.Operation, e.Message)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// CorruptionError represents a container that cannot be decoded: a short
// header, an empty payload, or a payload the codec rejects. A wrong password
// also ends up here since there is no authentication tag to tell them apart.
type CorruptionError struct {
	Offset  int64  // Payload offset where decoding failed, -1 if unknown
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *CorruptionError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("corruption error: at payload offset %d: %s", e.Offset, e.Message)
	}
	return fmt.Sprintf("corruption error: %s", e.Message)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

// KeyDerivationError represents a failure inside the password hashing primitive
type KeyDerivationError struct {
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *KeyDerivationError) Error() string {
	return fmt.Sprintf("key derivation error: %s", e.Message)
}

func (e *KeyDerivationError) Unwrap() error {
	return e.Err
}

// Common sentinel errors
var (
	ErrInvalidKey         = errors.New("invalid encryption key")
	ErrInvalidNonce       = errors.New("invalid nonce")
	ErrInvalidSalt        = errors.New("invalid salt")
	ErrTruncatedHeader    = errors.New("input shorter than container header")
	ErrTruncatedPayload   = errors.New("container has no payload")
	ErrInvalidPayload     = errors.New("payload cannot be decoded - wrong password or corrupted data")
	ErrCipherClosed       = errors.New("cipher reader is closed")
	ErrKeystreamExhausted = errors.New("stream exceeds the XChaCha20 keystream limit")
	ErrNilReader          = errors.New("reader cannot be nil")
	ErrNilWriter          = errors.New("writer cannot be nil")
	ErrKeyDerivation      = errors.New("key derivation failed")
	ErrInvalidParameters  = errors.New("invalid key derivation parameters")
)

// Helper functions for creating structured errors

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NewEncryptionError creates a new encryption error
func NewEncryptionError(operation string, err error) error {
	return &EncryptionError{
		Operation: operation,
		Message:   err.Error(),
		Err:       err,
	}
}

// NewIOError creates a new I/O error
func NewIOError(operation, path string, err error) error {
	return &IOError{
		Operation: operation,
		Path:      path,
		Offset:    -1,
		Message:   err.Error(),
		Err:       err,
	}
}

// NewCorruptionError creates a new corruption error wrapping err
func NewCorruptionError(offset int64, err error) error {
	return &CorruptionError{
		Offset:  offset,
		Message: err.Error(),
		Err:     err,
	}
}

// NewKeyDerivationError creates a new key derivation error
func NewKeyDerivationError(err error) error {
	return &KeyDerivationError{
		Message: err.Error(),
		Err:     err,
	}
}

// Error checking helpers

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsEncryptionError checks if an error is an encryption error
func IsEncryptionError(err error) bool {
	var ee *EncryptionError
	return errors.As(err, &ee)
}

// IsIOError checks if an error is an I/O error
func IsIOError(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}

// IsCorruptionError checks if an error is a corruption error
func IsCorruptionError(err error) bool {
	var ce *CorruptionError
	return errors.As(err, &ce)
}

// IsKeyDerivationError checks if an error is a key derivation error
func IsKeyDerivationError(err error) bool {
	var ke *KeyDerivationError
	return errors.As(err, &ke)
}
