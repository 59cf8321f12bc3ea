// Package passphrase acquires the container password from a file, an
// environment variable, or the controlling terminal.
package passphrase

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/term"

	"github.com/absfs/zcrypt"
)

const (
	// Prompt is shown before reading the password from the terminal
	Prompt = "Enter Passphrase: "

	// ConfirmPrompt is shown before reading the confirmation
	ConfirmPrompt = "Confirm Passphrase: "
)

var (
	ErrEmpty    = errors.New("passphrase cannot be empty")
	ErrMismatch = errors.New("passphrases do not match")
	ErrNoSource = errors.New("no passphrase source available")
)

// Terminal reads a password without echo
type Terminal interface {
	ReadPassword(prompt string) ([]byte, error)
}

// Source resolves the password. Sources are tried in order: File, the
// environment variable named Env, then Terminal.
type Source struct {
	File     string
	Env      string
	Terminal Terminal

	// Overridable for tests
	Getenv   func(string) string
	ReadFile func(string) ([]byte, error)
}

// Read returns the password. The caller owns the returned slice and must
// wipe it. When confirm is set and the password comes from the terminal it
// is asked for twice.
func (s *Source) Read(confirm bool) ([]byte, error) {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	readFile := s.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	if s.File != "" {
		data, err := readFile(s.File)
		if err != nil {
			return nil, fmt.Errorf("failed to read passphrase file: %w", err)
		}
		password := trimNewline(data)
		if len(password) == 0 {
			zcrypt.Wipe(data)
			return nil, ErrEmpty
		}
		return password, nil
	}

	if s.Env != "" {
		if v := getenv(s.Env); v != "" {
			return []byte(v), nil
		}
	}

	if s.Terminal == nil {
		return nil, ErrNoSource
	}

	password, err := s.Terminal.ReadPassword(Prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	if len(password) == 0 {
		return nil, ErrEmpty
	}
	if !confirm {
		return password, nil
	}

	again, err := s.Terminal.ReadPassword(ConfirmPrompt)
	if err != nil {
		zcrypt.Wipe(password)
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	defer zcrypt.Wipe(again)
	if !bytes.Equal(password, again) {
		zcrypt.Wipe(password)
		return nil, ErrMismatch
	}
	return password, nil
}

// trimNewline drops one trailing line ending, wiping the dropped bytes
func trimNewline(b []byte) []byte {
	n := len(b)
	if n > 0 && b[n-1] == '\n' {
		n--
		if n > 0 && b[n-1] == '\r' {
			n--
		}
	}
	zcrypt.Wipe(b[n:])
	return b[:n]
}

// TTY reads passwords from the controlling terminal. When stdin carries data
// it falls back to /dev/tty.
type TTY struct {
	Stdin  *os.File
	Stderr io.Writer
}

// NewTTY returns a TTY bound to the process stdin and stderr
func NewTTY() *TTY {
	return &TTY{Stdin: os.Stdin, Stderr: os.Stderr}
}

// ReadPassword prints prompt and reads one line without echo
func (t *TTY) ReadPassword(prompt string) ([]byte, error) {
	fmt.Fprint(t.Stderr, prompt)
	defer fmt.Fprintln(t.Stderr)

	if fd := int(t.Stdin.Fd()); term.IsTerminal(fd) {
		return term.ReadPassword(fd)
	}

	tty, err := os.Open("/dev/tty")
	if err != nil {
		if runtime.GOOS == "windows" {
			return nil, fmt.Errorf("stdin is piped; set the passphrase environment variable or use a passphrase file")
		}
		return nil, fmt.Errorf("stdin is piped and /dev/tty is not available: %w", err)
	}
	defer tty.Close()

	return term.ReadPassword(int(tty.Fd()))
}
