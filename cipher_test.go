package zcrypt

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"
)

func testKeyNonce() ([]byte, []byte) {
	key := make([]byte, KeySize)
	nonce := make([]byte, NonceSize)
	for i := range key {
		key[i] = byte(i)
	}
	for i := range nonce {
		nonce[i] = byte(0xa0 + i)
	}
	return key, nonce
}

func TestCipherReader_Symmetric(t *testing.T) {
	key, nonce := testKeyNonce()
	plaintext := bytes.Repeat([]byte("stream cipher overlay "), 500)

	enc, err := NewCipherReader(bytes.NewReader(plaintext), key, nonce)
	if err != nil {
		t.Fatal(err)
	}
	ciphertext, err := io.ReadAll(enc)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(ciphertext, plaintext) {
		t.Fatal("ciphertext equals plaintext")
	}
	if enc.Offset() != int64(len(plaintext)) {
		t.Errorf("Offset() = %d, want %d", enc.Offset(), len(plaintext))
	}

	dec, err := NewCipherReader(bytes.NewReader(ciphertext), key, nonce)
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(dec)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Error("decrypting the ciphertext did not restore the plaintext")
	}
}

// The keystream position depends only on how many bytes went through, not on
// how reads were split.
func TestCipherReader_ReadSizeIndependent(t *testing.T) {
	key, nonce := testKeyNonce()
	data := make([]byte, 10000)
	for i := range data {
		data[i] = byte(i * 7)
	}

	whole, err := NewCipherReader(bytes.NewReader(data), key, nonce)
	if err != nil {
		t.Fatal(err)
	}
	want, err := io.ReadAll(whole)
	if err != nil {
		t.Fatal(err)
	}

	readers := map[string]func(io.Reader) io.Reader{
		"one byte":  iotest.OneByteReader,
		"half":      iotest.HalfReader,
		"data+EOF":  iotest.DataErrReader,
		"unchanged": func(r io.Reader) io.Reader { return r },
	}
	for name, wrap := range readers {
		t.Run(name, func(t *testing.T) {
			c, err := NewCipherReader(wrap(bytes.NewReader(data)), key, nonce)
			if err != nil {
				t.Fatal(err)
			}
			got, err := io.ReadAll(c)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, want) {
				t.Error("output differs from single-read output")
			}
		})
	}
}

func TestCipherReader_PartialReadDoesNotAdvance(t *testing.T) {
	key, nonce := testKeyNonce()
	data := []byte("0123456789")

	c, err := NewCipherReader(bytes.NewReader(data), key, nonce)
	if err != nil {
		t.Fatal(err)
	}

	n, err := c.Read(nil)
	if n != 0 || err != nil {
		t.Fatalf("Read(nil) = %d, %v", n, err)
	}
	if c.Offset() != 0 {
		t.Errorf("Offset() after empty read = %d, want 0", c.Offset())
	}

	buf := make([]byte, 4)
	if _, err := io.ReadFull(c, buf); err != nil {
		t.Fatal(err)
	}
	if c.Offset() != 4 {
		t.Errorf("Offset() = %d, want 4", c.Offset())
	}
}

func TestCipherReader_PropagatesErrors(t *testing.T) {
	key, nonce := testKeyNonce()
	c, err := NewCipherReader(&failingReader{data: []byte("abc"), err: errInjected}, key, nonce)
	if err != nil {
		t.Fatal(err)
	}

	got, err := io.ReadAll(c)
	if !errors.Is(err, errInjected) {
		t.Errorf("ReadAll() error = %v, want %v", err, errInjected)
	}
	if len(got) != 3 {
		t.Errorf("read %d bytes before the error, want 3", len(got))
	}
}

func TestCipherReader_Close(t *testing.T) {
	key, nonce := testKeyNonce()
	c, err := NewCipherReader(bytes.NewReader([]byte("data")), key, nonce)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := c.Read(make([]byte, 4)); !errors.Is(err, ErrCipherClosed) {
		t.Errorf("Read() after Close error = %v, want ErrCipherClosed", err)
	}
}

func TestCipherReader_KeystreamLimit(t *testing.T) {
	key, nonce := testKeyNonce()
	c, err := NewCipherReader(bytes.NewReader(make([]byte, 64)), key, nonce)
	if err != nil {
		t.Fatal(err)
	}
	c.n = MaxStreamBytes - 10

	n, err := c.Read(make([]byte, 20))
	if n != 10 || err != nil {
		t.Fatalf("Read() at the limit = %d, %v, want 10, nil", n, err)
	}

	n, err = c.Read(make([]byte, 20))
	if n != 0 || !errors.Is(err, ErrKeystreamExhausted) {
		t.Fatalf("Read() past the limit = %d, %v, want ErrKeystreamExhausted", n, err)
	}
	var encErr *EncryptionError
	if !errors.As(err, &encErr) {
		t.Errorf("error = %T, want *EncryptionError", err)
	}
}

func TestCipherReader_KeyCopied(t *testing.T) {
	key, nonce := testKeyNonce()
	data := []byte("key is copied into the cipher state")

	ref, err := NewCipherReader(bytes.NewReader(data), key, nonce)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := io.ReadAll(ref)

	c, err := NewCipherReader(bytes.NewReader(data), key, nonce)
	if err != nil {
		t.Fatal(err)
	}
	Wipe(key)
	got, _ := io.ReadAll(c)

	if !bytes.Equal(got, want) {
		t.Error("wiping the caller's key changed the keystream")
	}
}

func TestNewCipherReader_Invalid(t *testing.T) {
	key, nonce := testKeyNonce()

	tests := []struct {
		name     string
		r        io.Reader
		key      []byte
		nonce    []byte
		sentinel error
	}{
		{"nil reader", nil, key, nonce, ErrNilReader},
		{"short key", bytes.NewReader(nil), key[:16], nonce, ErrInvalidKey},
		{"standard nonce", bytes.NewReader(nil), key, nonce[:12], ErrInvalidNonce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCipherReader(tt.r, tt.key, tt.nonce)
			if !IsEncryptionError(err) {
				t.Errorf("error = %v, want EncryptionError", err)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want errors.Is %v", err, tt.sentinel)
			}
		})
	}
}

func TestGenerateNonce(t *testing.T) {
	n1, err := GenerateNonce()
	if err != nil {
		t.Fatal(err)
	}
	n2, err := GenerateNonce()
	if err != nil {
		t.Fatal(err)
	}
	if len(n1) != NonceSize {
		t.Errorf("nonce length = %d, want %d", len(n1), NonceSize)
	}
	if bytes.Equal(n1, n2) {
		t.Error("two nonces are identical")
	}
}
