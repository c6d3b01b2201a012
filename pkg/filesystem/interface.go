// Package filesystem abstracts the file operations used for save files and
// working-directory resolution.
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileSystemInterface defines the contract for file system operations
type FileSystemInterface interface {
	// File operations
	Remove(name string) error

	// Directory operations
	MkdirAll(path string, perm os.FileMode) error
	ReadDir(dirname string) ([]os.DirEntry, error)

	// File content operations
	ReadFile(filename string) ([]byte, error)
	WriteFileAtomic(filename string, data []byte, perm os.FileMode) error

	// Path operations
	Getwd() (string, error)
	EvalSymlinks(path string) (string, error)

	// Utility operations
	Exists(path string) bool
	IsDir(path string) bool
}

// StandardFileSystem implements FileSystemInterface using standard library
type StandardFileSystem struct{}

// NewStandardFileSystem creates a new StandardFileSystem
func NewStandardFileSystem() *StandardFileSystem {
	return &StandardFileSystem{}
}

// Remove removes a file
func (fs *StandardFileSystem) Remove(name string) error {
	return os.Remove(name)
}

// MkdirAll creates a directory path
func (fs *StandardFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// ReadDir reads directory contents
func (fs *StandardFileSystem) ReadDir(dirname string) ([]os.DirEntry, error) {
	return os.ReadDir(dirname)
}

// ReadFile reads file contents
func (fs *StandardFileSystem) ReadFile(filename string) ([]byte, error) {
	return os.ReadFile(filename)
}

// WriteFileAtomic writes data to a temporary sibling of filename and renames
// it into place, so readers observe either the old or the new content.
func (fs *StandardFileSystem) WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filename)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, filename); err != nil {
		cleanup()
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}
	return nil
}

// Getwd returns current working directory
func (fs *StandardFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

// EvalSymlinks returns the path after following all symbolic links
func (fs *StandardFileSystem) EvalSymlinks(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}

// Exists checks if a path exists
func (fs *StandardFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir checks if a path is a directory
func (fs *StandardFileSystem) IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
