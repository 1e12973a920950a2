package domain

import (
	"bytes"
	"io"
	"strings"
)

// FileHandle is an opaque binary file delivered by the chat transport.
type FileHandle interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

type PendingAttachment struct {
	ID      string
	File    FileHandle
	Preview string
	Name    string
	Size    int64
}

// MemoryFile is a FileHandle backed by a byte slice.
type MemoryFile struct {
	FileName string
	MimeType string
	Data     []byte
}

func NewMemoryFile(name, mimeType string, data []byte) *MemoryFile {
	return &MemoryFile{FileName: name, MimeType: mimeType, Data: data}
}

func (f *MemoryFile) Name() string { return f.FileName }

func (f *MemoryFile) Size() int64 { return int64(len(f.Data)) }

func (f *MemoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.Data)), nil
}

// IsImageMime reports whether a MIME type names an image.
func IsImageMime(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), "image/")
}
