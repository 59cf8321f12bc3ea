package zcrypt

import (
	"io"

	"golang.org/x/crypto/chacha20"
)

// MaxStreamBytes is the length of one XChaCha20 keystream: 2^32 blocks of
// 64 bytes. A payload cannot be longer.
const MaxStreamBytes = 64 << 32

// CipherReader XORs every byte read through it with an XChaCha20 keystream.
// The same type encrypts and decrypts. Byte i read through a CipherReader is
// always combined with keystream byte i, so a key and nonce pair must back
// exactly one CipherReader.
type CipherReader struct {
	r      io.Reader
	cipher *chacha20.Cipher
	n      int64 // Keystream position
}

// NewCipherReader wraps r with an XChaCha20 overlay keyed by key and nonce.
// key must be KeySize bytes and nonce NonceSize bytes. The key is copied into
// the cipher state; the caller may wipe its slice afterwards.
func NewCipherReader(r io.Reader, key, nonce []byte) (*CipherReader, error) {
	if r == nil {
		return nil, NewEncryptionError("cipher", ErrNilReader)
	}
	if err := ValidateKey(key); err != nil {
		return nil, NewEncryptionError("cipher", err)
	}
	if err := ValidateNonce(nonce); err != nil {
		return nil, NewEncryptionError("cipher", err)
	}

	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return nil, NewEncryptionError("cipher", err)
	}

	return &CipherReader{r: r, cipher: c}, nil
}

// Read reads from the underlying reader and applies the keystream in place to
// exactly the bytes returned. Errors from the underlying reader are returned
// unchanged. Once MaxStreamBytes have passed, Read fails with an
// EncryptionError wrapping ErrKeystreamExhausted.
func (c *CipherReader) Read(p []byte) (int, error) {
	if c.cipher == nil {
		return 0, ErrCipherClosed
	}
	left := MaxStreamBytes - c.n
	if left <= 0 {
		return 0, NewEncryptionError("cipher", ErrKeystreamExhausted)
	}
	if int64(len(p)) > left {
		p = p[:left]
	}

	n, err := c.r.Read(p)
	if n > 0 {
		c.cipher.XORKeyStream(p[:n], p[:n])
		c.n += int64(n)
	}
	return n, err
}

// Offset returns how many bytes have passed through the overlay
func (c *CipherReader) Offset() int64 {
	return c.n
}

// Close zeroes the keystream state. It does not close the underlying reader.
func (c *CipherReader) Close() error {
	if c.cipher != nil {
		*c.cipher = chacha20.Cipher{}
		c.cipher = nil
	}
	return nil
}

// GenerateNonce generates a random XChaCha20 nonce
func GenerateNonce() ([]byte, error) {
	return randomBytes(NonceSize, "nonce")
}
