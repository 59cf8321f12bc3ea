package iobuf

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/absfs/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absfs/zcrypt"
)

func never(any) bool  { return false }
func always(any) bool { return true }

func TestOpen_Files(t *testing.T) {
	fs, err := memfs.NewFS()
	require.NoError(t, err)

	f, err := fs.Create("/in.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("plaintext data"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	bufs, err := Open(Options{FS: fs, Input: "/in.txt", Output: "/out.bin", IsTerminal: never})
	require.NoError(t, err)

	data, err := io.ReadAll(bufs.Input)
	require.NoError(t, err)
	assert.Equal(t, "plaintext data", string(data))

	_, err = bufs.Output.WriteString("written through buffer")
	require.NoError(t, err)
	require.NoError(t, bufs.Close())

	out, err := fs.Open("/out.bin")
	require.NoError(t, err)
	defer out.Close()
	written, err := io.ReadAll(out)
	require.NoError(t, err)
	assert.Equal(t, "written through buffer", string(written))
}

func TestOpen_Stdio(t *testing.T) {
	stdin := strings.NewReader("piped")
	var stdout bytes.Buffer

	bufs, err := Open(Options{Stdin: stdin, Stdout: &stdout, IsTerminal: never})
	require.NoError(t, err)

	data, err := io.ReadAll(bufs.Input)
	require.NoError(t, err)
	assert.Equal(t, "piped", string(data))

	_, err = bufs.Output.WriteString("result")
	require.NoError(t, err)
	assert.Empty(t, stdout.String(), "output should stay buffered until Close")

	require.NoError(t, bufs.Close())
	assert.Equal(t, "result", stdout.String())
}

func TestOpen_TerminalRefused(t *testing.T) {
	var stdout bytes.Buffer

	_, err := Open(Options{Stdin: strings.NewReader(""), Stdout: &stdout, IsTerminal: always})
	assert.ErrorIs(t, err, ErrNoInput)

	fs, err := memfs.NewFS()
	require.NoError(t, err)
	f, err := fs.Create("/in.txt")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = Open(Options{FS: fs, Input: "/in.txt", Stdout: &stdout, IsTerminal: always})
	assert.ErrorIs(t, err, ErrNoOutput)
}

func TestOpen_MissingStreams(t *testing.T) {
	_, err := Open(Options{IsTerminal: never})
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = Open(Options{Stdin: strings.NewReader("x"), IsTerminal: never})
	assert.ErrorIs(t, err, ErrNoOutput)
}

func TestOpen_MissingInputFile(t *testing.T) {
	fs, err := memfs.NewFS()
	require.NoError(t, err)

	_, err = Open(Options{FS: fs, Input: "/does-not-exist", Stdout: &bytes.Buffer{}, IsTerminal: never})
	require.Error(t, err)
	assert.True(t, zcrypt.IsIOError(err))
	assert.Contains(t, err.Error(), "/does-not-exist")
}

func TestOpen_OSFS(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(in, []byte("on disk"), 0600))

	bufs, err := Open(Options{Input: in, Output: out})
	require.NoError(t, err)

	_, err = io.Copy(bufs.Output, bufs.Input)
	require.NoError(t, err)
	require.NoError(t, bufs.Close())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "on disk", string(data))
}

func TestOpen_OSFSCreateFails(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(in, []byte("x"), 0600))

	_, err := Open(Options{Input: in, Output: filepath.Join(dir, "missing", "out.txt")})
	require.Error(t, err)
	assert.True(t, zcrypt.IsIOError(err))
}

func TestIsTerminal_NonFile(t *testing.T) {
	assert.False(t, IsTerminal(strings.NewReader("")))
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
