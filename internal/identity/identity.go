// Package identity derives, from a working directory, the canonical directory,
// the save file path and the tmux session name used for that directory.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/d-kuro/tici/pkg/filesystem"
	"github.com/d-kuro/tici/pkg/system"
)

const (
	// DefaultDirName is the save directory created under $HOME.
	DefaultDirName = ".tici"
	// DefaultExtension is the save file extension.
	DefaultExtension = "tmux"
	// HashLength is the number of hex characters of the directory hash kept
	// in the file name.
	HashLength = 16

	filePrefix = "session_"
)

// reservedChars may not appear in a session name. ':' and '.' separate tmux
// target components; '|' separates save file fields.
const reservedChars = ":.|"

// ErrInvalidSessionName is returned when a directory's basename cannot be
// used as a tmux session name.
var ErrInvalidSessionName = errors.New("invalid session name")

// PathResolutionError reports a working directory that does not exist or
// cannot be canonicalized.
type PathResolutionError struct {
	Path string
	Err  error
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve directory %s", e.Path)
}

func (e *PathResolutionError) Unwrap() error {
	return e.Err
}

// Identity ties a working directory to its save file and session name.
type Identity struct {
	Dir         string // Canonical absolute directory
	Hash        string // First HashLength hex characters of SHA-256(Dir)
	SessionName string // Basename of Dir
	SavePath    string // $HOME/<dirname>/session_<hash>_<name>.<ext>
}

// Options customise the save file location.
type Options struct {
	DirName   string
	Extension string
}

// Resolver builds identities. It is the only component that reads $HOME and
// the process working directory.
type Resolver struct {
	fs   filesystem.FileSystemInterface
	sys  system.SystemInterface
	opts Options
}

// NewResolver creates a Resolver. Empty option fields fall back to defaults.
func NewResolver(fs filesystem.FileSystemInterface, sys system.SystemInterface, opts Options) *Resolver {
	if opts.DirName == "" {
		opts.DirName = DefaultDirName
	}
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	opts.Extension = strings.TrimPrefix(opts.Extension, ".")
	return &Resolver{fs: fs, sys: sys, opts: opts}
}

// Resolve computes the identity of workingDir. An empty workingDir means the
// current directory; relative paths are resolved against it.
func (r *Resolver) Resolve(workingDir string) (*Identity, error) {
	dir, err := r.canonicalize(workingDir)
	if err != nil {
		return nil, err
	}

	name, err := SessionNameFor(dir)
	if err != nil {
		return nil, err
	}

	home, err := r.Home()
	if err != nil {
		return nil, err
	}

	hash := HashDir(dir)
	return &Identity{
		Dir:         dir,
		Hash:        hash,
		SessionName: name,
		SavePath:    filepath.Join(r.SaveDir(home), FileName(hash, name, r.opts.Extension)),
	}, nil
}

// SaveDir returns the directory holding save files for the given home.
func (r *Resolver) SaveDir(home string) string {
	return filepath.Join(home, r.opts.DirName)
}

// Extension returns the configured save file extension without a dot.
func (r *Resolver) Extension() string {
	return r.opts.Extension
}

// Home returns $HOME.
func (r *Resolver) Home() (string, error) {
	return system.RequireEnv(r.sys, "HOME")
}

// HomeSaveDir returns the save directory under $HOME.
func (r *Resolver) HomeSaveDir() (string, error) {
	home, err := r.Home()
	if err != nil {
		return "", err
	}
	return r.SaveDir(home), nil
}

func (r *Resolver) canonicalize(workingDir string) (string, error) {
	path := workingDir
	if path == "" || !filepath.IsAbs(path) {
		cwd, err := r.fs.Getwd()
		if err != nil {
			return "", &PathResolutionError{Path: workingDir, Err: err}
		}
		path = filepath.Join(cwd, path)
	}

	resolved, err := r.fs.EvalSymlinks(filepath.Clean(path))
	if err != nil {
		return "", &PathResolutionError{Path: path, Err: err}
	}
	if !r.fs.IsDir(resolved) {
		return "", &PathResolutionError{Path: path, Err: errors.New("not a directory")}
	}
	return resolved, nil
}

// SessionNameFor returns the session name derived from a canonical directory.
func SessionNameFor(dir string) (string, error) {
	name := filepath.Base(dir)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("%w: directory %s has no usable basename", ErrInvalidSessionName, dir)
	}
	if i := strings.IndexAny(name, reservedChars); i >= 0 {
		return "", fmt.Errorf("%w: %q contains reserved character %q", ErrInvalidSessionName, name, name[i])
	}
	return name, nil
}

// HashDir returns the first HashLength lowercase hex characters of the
// SHA-256 digest of dir.
func HashDir(dir string) string {
	sum := sha256.Sum256([]byte(dir))
	return hex.EncodeToString(sum[:])[:HashLength]
}

// FileName composes the save file name for a hash and session name.
func FileName(hash, name, ext string) string {
	return fmt.Sprintf("%s%s_%s.%s", filePrefix, hash, name, ext)
}

// ParseFileName splits a save file name back into its hash and session name.
func ParseFileName(base, ext string) (hash, name string, ok bool) {
	suffix := "." + ext
	if !strings.HasPrefix(base, filePrefix) || !strings.HasSuffix(base, suffix) {
		return "", "", false
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(base, filePrefix), suffix)
	if len(rest) < HashLength+2 || rest[HashLength] != '_' {
		return "", "", false
	}
	hash, name = rest[:HashLength], rest[HashLength+1:]
	for _, c := range hash {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return "", "", false
		}
	}
	return hash, name, true
}
