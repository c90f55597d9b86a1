package churn

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// SelectedFile is an opaque, re-openable handle to the CSV the user picked.
// It is opened once per upload so the same selection can be resubmitted.
type SelectedFile interface {
	Name() string
	Open() (io.ReadCloser, error)
}

type memoryFile struct {
	name string
	data []byte
}

// MemoryFile holds an uploaded CSV in memory. data is copied.
func MemoryFile(name string, data []byte) SelectedFile {
	return &memoryFile{name: filepath.Base(name), data: bytes.Clone(data)}
}

func (f *memoryFile) Name() string { return f.name }

func (f *memoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

type localFile struct {
	path string
}

// LocalFile refers to a CSV on disk; it is read at upload time.
func LocalFile(path string) SelectedFile {
	return &localFile{path: path}
}

func (f *localFile) Name() string { return filepath.Base(f.path) }

func (f *localFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}
