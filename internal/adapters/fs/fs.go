package fs

import (
	iofs "io/fs"
)

// FileSystem is the persistence port of the build pipeline and the
// manifest loader.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	FileExists(path string) bool
	WriteFile(path string, data []byte, perm iofs.FileMode) error
	MkdirAll(path string, perm iofs.FileMode) error
}
