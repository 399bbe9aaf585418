package prediction

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/banshee-data/pdwriter/internal/fsutil"
	"github.com/banshee-data/pdwriter/internal/monitoring"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingFS wraps a MemoryFileSystem and injects I/O errors.
type failingFS struct {
	*fsutil.MemoryFileSystem
	createErr error
	writeErr  error
	closeErr  error
}

func (f *failingFS) Create(name string) (io.WriteCloser, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	w, err := f.MemoryFileSystem.Create(name)
	if err != nil {
		return nil, err
	}
	return &failingWriter{WriteCloser: w, writeErr: f.writeErr, closeErr: f.closeErr}, nil
}

type failingWriter struct {
	io.WriteCloser
	writeErr error
	closeErr error
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.writeErr != nil {
		return 0, w.writeErr
	}
	return w.WriteCloser.Write(p)
}

func (w *failingWriter) Close() error {
	if err := w.WriteCloser.Close(); err != nil {
		return err
	}
	return w.closeErr
}

func TestWriteFile_ExampleThroughSink(t *testing.T) {
	_, restore := monitoring.Capture()
	defer restore()

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, WriteFile(mfs, DefaultOutputPath, ExampleObjects()))

	got, err := ReadFile(mfs, DefaultOutputPath)
	require.NoError(t, err)
	if diff := cmp.Diff(ExampleObjects(), got); diff != "" {
		t.Errorf("example mismatch after write/read (-want +got):\n%s", diff)
	}

	raw, err := mfs.ReadFile(DefaultOutputPath)
	require.NoError(t, err)
	assert.Equal(t, exampleWireBytes(), raw)
}

func TestWriteFile_OSFileSystem(t *testing.T) {
	_, restore := monitoring.Capture()
	defer restore()

	path := filepath.Join(t.TempDir(), "your_preds.bin")
	require.NoError(t, WriteFile(fsutil.OSFileSystem{}, path, ExampleObjects()))

	got, err := ReadFile(fsutil.OSFileSystem{}, path)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
}

func TestWriteFile_EmptyCollection(t *testing.T) {
	_, restore := monitoring.Capture()
	defer restore()

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, WriteFile(mfs, "/empty.bin", &Objects{}))
	assert.True(t, mfs.Exists("/empty.bin"))

	got, err := ReadFile(mfs, "/empty.bin")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestWriteFile_PropagatesIOErrors(t *testing.T) {
	errDisk := errors.New("disk full")
	cases := []struct {
		name string
		fs   *failingFS
	}{
		{"create", &failingFS{MemoryFileSystem: fsutil.NewMemoryFileSystem(), createErr: errDisk}},
		{"write", &failingFS{MemoryFileSystem: fsutil.NewMemoryFileSystem(), writeErr: errDisk}},
		{"close", &failingFS{MemoryFileSystem: fsutil.NewMemoryFileSystem(), closeErr: errDisk}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := WriteFile(tc.fs, "/out.bin", ExampleObjects())
			require.Error(t, err)
			assert.ErrorIs(t, err, errDisk)
			assert.Contains(t, err.Error(), "/out.bin")
		})
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(fsutil.NewMemoryFileSystem(), "/nope.bin")
	assert.Error(t, err)
}

func TestReadFile_Corrupt(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	w, _ := mfs.Create("/bad.bin")
	w.Write([]byte{0x0a, 0x7f})
	w.Close()

	_, err := ReadFile(mfs, "/bad.bin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/bad.bin")
}

func TestWriteTo(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteTo(&buf, ExampleObjects())
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, exampleWireBytes(), buf.Bytes())
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestWriteTo_Error(t *testing.T) {
	_, err := WriteTo(brokenWriter{}, ExampleObjects())
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}
