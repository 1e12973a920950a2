package preview

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/set-night/jewelbot/internal/domain"
)

// DiskStore keeps attachment previews as files in a scratch directory.
// A preview reference is the file's base name.
type DiskStore struct {
	dir string

	mu   sync.Mutex
	live map[string]struct{}
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create preview dir: %w", err)
	}
	return &DiskStore{dir: dir, live: make(map[string]struct{})}, nil
}

func (s *DiskStore) Create(f domain.FileHandle) (string, error) {
	src, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer src.Close()

	ref := uuid.NewString() + extension(f.Name())
	path := filepath.Join(s.dir, ref)

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create preview: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("write preview: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close preview: %w", err)
	}

	s.mu.Lock()
	s.live[ref] = struct{}{}
	s.mu.Unlock()
	return ref, nil
}

// Release deletes the preview. Releasing twice returns
// domain.ErrPreviewReleased.
func (s *DiskStore) Release(ref string) error {
	s.mu.Lock()
	if _, ok := s.live[ref]; !ok {
		s.mu.Unlock()
		return domain.ErrPreviewReleased
	}
	delete(s.live, ref)
	s.mu.Unlock()

	if err := os.Remove(filepath.Join(s.dir, ref)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove preview: %w", err)
	}
	return nil
}

// Open reads a live preview.
func (s *DiskStore) Open(ref string) (io.ReadCloser, error) {
	s.mu.Lock()
	_, ok := s.live[ref]
	s.mu.Unlock()
	if !ok {
		return nil, domain.ErrPreviewReleased
	}
	f, err := os.Open(filepath.Join(s.dir, ref))
	if err != nil {
		return nil, fmt.Errorf("open preview: %w", err)
	}
	return f, nil
}

// Live returns the number of previews not yet released.
func (s *DiskStore) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Sweep removes preview files left behind by a previous process.
func (s *DiskStore) Sweep() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read preview dir: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := s.live[e.Name()]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

func extension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || len(ext) > 6 {
		return ".bin"
	}
	return ext
}
