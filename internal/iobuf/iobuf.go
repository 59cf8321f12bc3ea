// Package iobuf resolves the input and output streams of one invocation:
// named files on an absfs.FileSystem, or stdin and stdout when no path is
// given. Interactive terminals are refused as data streams.
package iobuf

import (
	"bufio"
	"errors"
	"io"

	"github.com/absfs/absfs"
	"golang.org/x/term"

	"github.com/absfs/zcrypt"
)

// BufferSize is the size of the input and output buffers
const BufferSize = 64 * 1024

var (
	ErrNoInput  = errors.New("no input file specified")
	ErrNoOutput = errors.New("no output file specified")
)

// Options selects the streams to open
type Options struct {
	FS     absfs.FileSystem // Filesystem for named paths; defaults to the OS
	Input  string           // Input path; empty means Stdin
	Output string           // Output path; empty means Stdout
	Stdin  io.Reader
	Stdout io.Writer

	// IsTerminal reports whether a stream is an interactive terminal.
	// Defaults to term.IsTerminal on streams that expose a file descriptor.
	IsTerminal func(stream any) bool
}

// IOBufs holds the buffered streams of one invocation
type IOBufs struct {
	Input  *bufio.Reader
	Output *bufio.Writer

	closers []io.Closer
}

// Open resolves and opens input and output. Output files are created or
// truncated. On error, anything already opened is closed.
func Open(opts Options) (*IOBufs, error) {
	fs := opts.FS
	if fs == nil {
		fs = NewOSFS()
	}
	isTerminal := opts.IsTerminal
	if isTerminal == nil {
		isTerminal = IsTerminal
	}

	b := &IOBufs{}

	var input io.Reader
	if opts.Input == "" {
		if opts.Stdin == nil || isTerminal(opts.Stdin) {
			return nil, ErrNoInput
		}
		input = opts.Stdin
	} else {
		f, err := fs.Open(opts.Input)
		if err != nil {
			return nil, zcrypt.NewIOError("open", opts.Input, err)
		}
		b.closers = append(b.closers, f)
		input = f
	}

	var output io.Writer
	if opts.Output == "" {
		if opts.Stdout == nil || isTerminal(opts.Stdout) {
			b.closeAll()
			return nil, ErrNoOutput
		}
		output = opts.Stdout
	} else {
		f, err := fs.Create(opts.Output)
		if err != nil {
			b.closeAll()
			return nil, zcrypt.NewIOError("create", opts.Output, err)
		}
		b.closers = append(b.closers, f)
		output = f
	}

	b.Input = bufio.NewReaderSize(input, BufferSize)
	b.Output = bufio.NewWriterSize(output, BufferSize)
	return b, nil
}

// Close flushes the output buffer and closes any opened files. The first
// error is returned.
func (b *IOBufs) Close() error {
	var err error
	if b.Output != nil {
		if ferr := b.Output.Flush(); ferr != nil {
			err = zcrypt.NewIOError("flush", "", ferr)
		}
	}
	if cerr := b.closeAll(); err == nil {
		err = cerr
	}
	return err
}

func (b *IOBufs) closeAll() error {
	var first error
	for _, c := range b.closers {
		if err := c.Close(); err != nil && first == nil {
			first = zcrypt.NewIOError("close", "", err)
		}
	}
	b.closers = nil
	return first
}

// IsTerminal reports whether stream is backed by an interactive terminal
func IsTerminal(stream any) bool {
	f, ok := stream.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
