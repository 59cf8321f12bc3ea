package zcrypt

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

var errCompressReaderClosed = errors.New("compress reader closed")

// ClampLevel limits level to [MinLevel, MaxLevel]
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// EncoderLevel maps a 0-9 compression level onto the zstd speed presets
func EncoderLevel(level int) zstd.EncoderLevel {
	switch l := ClampLevel(level); {
	case l <= 1:
		return zstd.SpeedFastest
	case l <= 4:
		return zstd.SpeedDefault
	case l <= 7:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// encoderOptions returns the zstd encoder settings for level and threads
func encoderOptions(level, threads int) []zstd.EOption {
	return []zstd.EOption{
		zstd.WithEncoderLevel(EncoderLevel(level)),
		zstd.WithEncoderConcurrency(resolveThreads(threads)),
		// Frame checksum, verified by the decoder.
		zstd.WithEncoderCRC(true),
		// Empty input still produces a frame so the payload is never empty.
		zstd.WithZeroFrames(true),
	}
}

// compressReader exposes a zstd encoder as a pull-based reader. The encoder
// runs in its own goroutine and writes into a pipe; compression only advances
// as fast as the pipe is drained.
type compressReader struct {
	pr   *io.PipeReader
	done chan struct{}
	eof  bool
}

// NewCompressReader returns a reader producing the zstd compression of src.
// level is clamped with ClampLevel; threads <= 0 selects DefaultThreads().
// The returned reader must be closed to release the encoder. Closing before
// the end of the stream does not wait for a blocked read on src; the encoder
// goroutine exits on its next read or write.
func NewCompressReader(src io.Reader, level, threads int) (io.ReadCloser, error) {
	if src == nil {
		return nil, ErrNilReader
	}

	pr, pw := io.Pipe()
	enc, err := zstd.NewWriter(pw, encoderOptions(level, threads)...)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	cr := &compressReader{
		pr:   pr,
		done: make(chan struct{}),
	}

	go func() {
		defer close(cr.done)
		_, err := enc.ReadFrom(src)
		if cerr := enc.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	return cr, nil
}

func (c *compressReader) Read(p []byte) (int, error) {
	n, err := c.pr.Read(p)
	if err != nil {
		c.eof = true
	}
	return n, err
}

// Close stops the encoder. Once the stream has ended the goroutine has
// already closed the pipe and is joined; otherwise it may be parked in a read
// on src, which Close cannot interrupt.
func (c *compressReader) Close() error {
	c.pr.CloseWithError(errCompressReaderClosed)
	if c.eof {
		<-c.done
	}
	return nil
}

// NewDecompressReader returns a reader producing the decompression of the
// zstd stream in src. Decoder concurrency is picked by the codec. Malformed
// frames and checksum mismatches surface as read errors.
func NewDecompressReader(src io.Reader) (io.ReadCloser, error) {
	if src == nil {
		return nil, ErrNilReader
	}

	// 0 lets the decoder size itself from GOMAXPROCS.
	dec, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return dec.IOReadCloser(), nil
}
