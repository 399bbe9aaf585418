package prediction

import (
	"fmt"
	"io"

	"github.com/banshee-data/pdwriter/internal/fsutil"
	"github.com/banshee-data/pdwriter/internal/monitoring"
)

// WriteTo serializes objs and writes the bytes to w in one call.
func WriteTo(w io.Writer, objs *Objects) (int64, error) {
	data, err := Marshal(objs)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	if err != nil {
		return int64(n), fmt.Errorf("write objects: %w", err)
	}
	return int64(n), nil
}

// WriteFile creates or truncates path and writes the serialized collection.
// Serialization happens before the file is created, so a marshal failure
// leaves no file behind. There is no retry; I/O errors are returned as is.
func WriteFile(fsys fsutil.FileSystem, path string, objs *Objects) error {
	data, err := Marshal(objs)
	if err != nil {
		return err
	}

	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	monitoring.Logf("[Predictions] wrote %d objects (%d bytes) to %s", objs.Len(), len(data), path)
	return nil
}

// ReadFile reads and decodes a file written by WriteFile or any other
// producer of waymo.open_dataset.Objects.
func ReadFile(fsys fsutil.FileSystem, path string) (*Objects, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	objs, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return objs, nil
}
