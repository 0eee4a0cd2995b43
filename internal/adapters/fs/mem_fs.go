package fs

import (
	iofs "io/fs"
	"path/filepath"
	"sync"
)

// MemFileSystem is an in-memory FileSystem for build-engine tests.
type MemFileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemFileSystem() *MemFileSystem {
	return &MemFileSystem{files: make(map[string][]byte)}
}

func (fs *MemFileSystem) ReadFile(path string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	data, ok := fs.files[filepath.Clean(path)]
	if !ok {
		return nil, &iofs.PathError{Op: "open", Path: path, Err: iofs.ErrNotExist}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (fs *MemFileSystem) FileExists(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, ok := fs.files[filepath.Clean(path)]
	return ok
}

func (fs *MemFileSystem) WriteFile(path string, data []byte, perm iofs.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	fs.files[filepath.Clean(path)] = stored
	return nil
}

func (fs *MemFileSystem) MkdirAll(path string, perm iofs.FileMode) error {
	return nil
}

// Paths lists every written file, for assertions.
func (fs *MemFileSystem) Paths() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	paths := make([]string, 0, len(fs.files))
	for p := range fs.files {
		paths = append(paths, p)
	}
	return paths
}
