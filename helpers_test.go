package zcrypt

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// useFastKDF replaces the format key provider with a cheap one for the
// duration of the test
func useFastKDF(t testing.TB) {
	t.Helper()
	saved := formatKeys
	formatKeys = NewArgon2idKeyProvider(Argon2idParams{
		Memory:      64,
		Iterations:  1,
		Parallelism: 1,
	})
	t.Cleanup(func() { formatKeys = saved })
}

// pw returns a fresh password slice; Encode and Decode zero what they get
func pw(s string) []byte {
	return []byte(s)
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// encodeBytes encodes plaintext with the given options and returns the container
func encodeBytes(t testing.TB, plaintext []byte, password string, opts Options) []byte {
	t.Helper()
	var out bytes.Buffer
	if _, err := Encode(bytes.NewReader(plaintext), &out, pw(password), opts); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return out.Bytes()
}

var errInjected = errors.New("injected failure")

// failingReader returns data, then err instead of EOF
type failingReader struct {
	data []byte
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, f.err
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

// failingWriter accepts limit bytes, then fails
type failingWriter struct {
	limit int
	n     int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	room := f.limit - f.n
	if room <= 0 {
		return 0, errInjected
	}
	if len(p) > room {
		f.n += room
		return room, errInjected
	}
	f.n += len(p)
	return len(p), nil
}

var _ io.Writer = (*failingWriter)(nil)
