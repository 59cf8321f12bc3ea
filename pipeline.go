package zcrypt

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Encode compresses src, encrypts the compressed stream with a key derived
// from password, and writes the container (nonce, salt, payload) to dst.
//
// Encode takes ownership of password and zeroes it before returning, on
// success and on failure. Memory use does not depend on the length of src.
func Encode(src io.Reader, dst io.Writer, password []byte, opts Options) (*Stats, error) {
	var scope secretScope
	defer scope.wipe()
	scope.hold(password)

	if src == nil {
		return nil, ErrNilReader
	}
	if dst == nil {
		return nil, ErrNilWriter
	}
	if err := ValidateThreads(opts.Threads); err != nil {
		return nil, err
	}

	in := &trackingReader{r: src}
	compressed, err := NewCompressReader(in, ClampLevel(opts.Level), opts.Threads)
	if err != nil {
		return nil, err
	}
	defer compressed.Close()

	header, err := NewHeader()
	if err != nil {
		return nil, err
	}

	key, err := DeriveKey(password, header.Salt[:])
	if err != nil {
		return nil, err
	}
	scope.hold(key)
	Wipe(password)

	// Compress, then encrypt: ciphertext does not compress.
	encrypted, err := NewCipherReader(compressed, key, header.Nonce[:])
	if err != nil {
		return nil, err
	}
	defer encrypted.Close()
	Wipe(key)

	out := &trackingWriter{w: dst}
	if _, err := header.WriteTo(out); err != nil {
		return nil, err
	}

	if _, err := io.Copy(out, encrypted); err != nil {
		if werr := out.failure(); werr != nil {
			return nil, &IOError{Operation: "write", Offset: out.count(), Message: werr.Error(), Err: werr}
		}
		if rerr := in.failure(); rerr != nil {
			return nil, &IOError{Operation: "read", Offset: in.count(), Message: rerr.Error(), Err: rerr}
		}
		if errors.Is(err, ErrKeystreamExhausted) {
			return nil, err
		}
		return nil, fmt.Errorf("compression failed: %w", err)
	}

	return &Stats{
		BytesIn:      in.count(),
		BytesOut:     out.count(),
		PayloadBytes: out.count() - HeaderSize,
	}, nil
}

// Decode reads a container from src, derives the key from password and the
// stored salt, and writes the decrypted, decompressed plaintext to dst.
//
// A wrong password and a corrupted payload both surface as a CorruptionError
// wrapping ErrInvalidPayload; the format carries no tag to tell them apart.
// Decode takes ownership of password and zeroes it before returning.
func Decode(src io.Reader, dst io.Writer, password []byte) (*Stats, error) {
	var scope secretScope
	defer scope.wipe()
	scope.hold(password)

	if src == nil {
		return nil, ErrNilReader
	}
	if dst == nil {
		return nil, ErrNilWriter
	}

	in := &trackingReader{r: src}
	var header Header
	if _, err := header.ReadFrom(in); err != nil {
		return nil, err
	}

	key, err := DeriveKey(password, header.Salt[:])
	if err != nil {
		return nil, err
	}
	scope.hold(key)
	Wipe(password)

	decrypted, err := NewCipherReader(in, key, header.Nonce[:])
	if err != nil {
		return nil, err
	}
	defer decrypted.Close()
	Wipe(key)

	plain, err := NewDecompressReader(decrypted)
	if err != nil {
		return nil, &CorruptionError{
			Offset:  -1,
			Message: err.Error(),
			Err:     fmt.Errorf("%w: %w", ErrInvalidPayload, err),
		}
	}

	out := &trackingWriter{w: dst}
	_, copyErr := io.Copy(out, plain)
	// Closing joins the decoder goroutines before the counters are read.
	plain.Close()

	payload := in.count() - HeaderSize
	if copyErr != nil {
		if werr := out.failure(); werr != nil {
			return nil, &IOError{Operation: "write", Offset: out.count(), Message: werr.Error(), Err: werr}
		}
		if rerr := in.failure(); rerr != nil {
			return nil, &IOError{Operation: "read", Offset: in.count(), Message: rerr.Error(), Err: rerr}
		}
		if payload <= 0 {
			return nil, NewCorruptionError(-1, ErrTruncatedPayload)
		}
		return nil, &CorruptionError{
			Offset:  payload,
			Message: copyErr.Error(),
			Err:     fmt.Errorf("%w: %w", ErrInvalidPayload, copyErr),
		}
	}
	if payload <= 0 {
		return nil, NewCorruptionError(-1, ErrTruncatedPayload)
	}

	return &Stats{
		BytesIn:      in.count(),
		BytesOut:     out.count(),
		PayloadBytes: payload,
	}, nil
}

// trackingReader counts bytes and remembers the first read failure so the
// orchestrator can tell source errors from codec errors. The codec may read
// from another goroutine, hence the lock.
type trackingReader struct {
	r   io.Reader
	mu  sync.Mutex
	n   int64
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.mu.Lock()
	t.n += int64(n)
	if err != nil && !errors.Is(err, io.EOF) && t.err == nil {
		t.err = err
	}
	t.mu.Unlock()
	return n, err
}

func (t *trackingReader) count() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.n
}

func (t *trackingReader) failure() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// trackingWriter counts bytes and remembers the first write failure
type trackingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	t.n += int64(n)
	if err != nil && t.err == nil {
		t.err = err
	}
	return n, err
}

func (t *trackingWriter) count() int64 {
	return t.n
}

func (t *trackingWriter) failure() error {
	return t.err
}
