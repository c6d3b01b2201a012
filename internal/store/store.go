// Package store persists save files. Writes go through a sibling temp file
// and a rename so readers never observe a partial file.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/d-kuro/tici/internal/codec"
	"github.com/d-kuro/tici/internal/identity"
	"github.com/d-kuro/tici/pkg/filesystem"
	"github.com/d-kuro/tici/pkg/models"
	"github.com/d-kuro/tici/pkg/utils"
	"go.uber.org/zap"
)

const (
	dirPerm  os.FileMode = 0755
	filePerm os.FileMode = 0644
)

// ErrNoSavedSession is returned when a save file does not exist.
var ErrNoSavedSession = errors.New("no saved session found")

// IOError reports a failed filesystem operation on a save file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s", e.Op, e.Path)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Store reads and writes save files.
type Store struct {
	fs        filesystem.FileSystemInterface
	extension string
	logger    *zap.Logger
}

// New creates a Store for save files with the given extension.
func New(fsys filesystem.FileSystemInterface, extension string, logger *zap.Logger) *Store {
	if fsys == nil {
		fsys = filesystem.NewStandardFileSystem()
	}
	if extension == "" {
		extension = identity.DefaultExtension
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		fs:        fsys,
		extension: strings.TrimPrefix(extension, "."),
		logger:    logger,
	}
}

// EnsureDir creates the directory that will hold path.
func (s *Store) EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, dirPerm); err != nil {
		return &IOError{Op: "create directory", Path: dir, Err: err}
	}
	return nil
}

// Write replaces the save file at path with data.
func (s *Store) Write(path string, data []byte) error {
	if err := s.EnsureDir(path); err != nil {
		return err
	}
	if err := s.fs.WriteFileAtomic(path, data, filePerm); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	s.logger.Debug("wrote save file", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// Read returns the raw contents of the save file at path.
func (s *Store) Read(path string) ([]byte, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNoSavedSession, path)
		}
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// Load reads and parses the save file at path.
func (s *Store) Load(path string) (*models.Session, error) {
	data, err := s.Read(path)
	if err != nil {
		return nil, err
	}
	session, err := codec.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return session, nil
}

// Exists reports whether a save file exists at path.
func (s *Store) Exists(path string) bool {
	return s.fs.Exists(path)
}

// Remove deletes the save file at path.
func (s *Store) Remove(path string) error {
	if err := s.fs.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w at %s", ErrNoSavedSession, path)
		}
		return &IOError{Op: "remove", Path: path, Err: err}
	}
	s.logger.Debug("removed save file", zap.String("path", path))
	return nil
}

// List describes every save file in dir, sorted by session name. A missing
// directory yields an empty list. Files that fail to parse are still listed
// with Err set.
func (s *Store) List(dir string) ([]models.SavedSession, error) {
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &IOError{Op: "list", Path: dir, Err: err}
	}

	files := utils.Filter(entries, func(e os.DirEntry) bool {
		if e.IsDir() {
			return false
		}
		_, _, ok := identity.ParseFileName(e.Name(), s.extension)
		return ok
	})

	sessions := make([]models.SavedSession, 0, len(files))
	for _, entry := range files {
		sessions = append(sessions, s.describe(dir, entry))
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].Name != sessions[j].Name {
			return sessions[i].Name < sessions[j].Name
		}
		return sessions[i].Hash < sessions[j].Hash
	})
	return sessions, nil
}

func (s *Store) describe(dir string, entry os.DirEntry) models.SavedSession {
	hash, name, _ := identity.ParseFileName(entry.Name(), s.extension)
	saved := models.SavedSession{
		Path: filepath.Join(dir, entry.Name()),
		Hash: hash,
		Name: name,
	}

	if info, err := entry.Info(); err == nil {
		saved.ModTime = info.ModTime()
	}

	session, err := s.Load(saved.Path)
	if err != nil {
		s.logger.Debug("unreadable save file", zap.String("path", saved.Path), zap.Error(err))
		saved.Err = err.Error()
		return saved
	}
	saved.Windows = len(session.Windows)
	saved.Panes = session.PaneCount()
	return saved
}
