package zcrypt

import (
	"errors"
	"fmt"
	"io"
)

// Container layout:
//
//	┌──────────────────────────────┐
//	│ Nonce (24 bytes)             │ <- XChaCha20 extended nonce
//	├──────────────────────────────┤
//	│ Salt (40 bytes)              │ <- Argon2id salt
//	├──────────────────────────────┤
//	│ Payload (remainder)          │ <- zstd frame, XChaCha20 encrypted
//	└──────────────────────────────┘
//
// There is no magic, version field or length prefix. Both header fields have
// a fixed length and the payload runs to the end of the stream.

// Header represents the clear-text front of a container
type Header struct {
	Nonce [NonceSize]byte // Nonce for the stream cipher
	Salt  [SaltSize]byte  // Salt for key derivation
}

// NewHeader creates a header with a fresh random nonce and salt
func NewHeader() (*Header, error) {
	nonce, err := GenerateNonce()
	if err != nil {
		return nil, err
	}
	salt, err := GenerateSalt()
	if err != nil {
		return nil, err
	}

	h := &Header{}
	copy(h.Nonce[:], nonce)
	copy(h.Salt[:], salt)
	return h, nil
}

// Size returns the total size of the header in bytes
func (h *Header) Size() int {
	return HeaderSize
}

// WriteTo writes nonce then salt to w
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	var buf [HeaderSize]byte
	copy(buf[:NonceSize], h.Nonce[:])
	copy(buf[NonceSize:], h.Salt[:])

	n, err := w.Write(buf[:])
	if err != nil {
		return int64(n), NewIOError("write", "", err)
	}
	if n != HeaderSize {
		return int64(n), NewIOError("write", "", io.ErrShortWrite)
	}
	return int64(n), nil
}

// ReadFrom reads exactly HeaderSize bytes from r. Input shorter than the
// header yields a CorruptionError wrapping ErrTruncatedHeader.
func (h *Header) ReadFrom(r io.Reader) (int64, error) {
	var buf [HeaderSize]byte

	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return int64(n), &CorruptionError{
				Offset:  -1,
				Message: fmt.Sprintf("input is %d bytes, header needs %d", n, HeaderSize),
				Err:     ErrTruncatedHeader,
			}
		}
		return int64(n), &IOError{
			Operation: "read",
			Offset:    int64(n),
			Message:   err.Error(),
			Err:       err,
		}
	}

	copy(h.Nonce[:], buf[:NonceSize])
	copy(h.Salt[:], buf[NonceSize:])
	return int64(n), nil
}
