package system

import (
	"errors"
	"fmt"
	"os"
)

// ErrEnvironmentMissing reports a required environment variable or binary
// that is not available to the process.
var ErrEnvironmentMissing = errors.New("required environment missing")

// SystemInterface provides an abstraction layer over the process environment.
// This enables easier testing and mocking of system-level operations
type SystemInterface interface {
	// LookupEnv retrieves the value of the environment variable named by the key
	LookupEnv(key string) (string, bool)
}

// StandardSystem implements SystemInterface using standard Go library functions
type StandardSystem struct{}

// NewStandardSystem creates a new StandardSystem instance
func NewStandardSystem() SystemInterface {
	return &StandardSystem{}
}

// LookupEnv reads the process environment
func (s *StandardSystem) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapSystem is a SystemInterface backed by a fixed map. It is used where the
// environment must be pinned, such as in tests.
type MapSystem map[string]string

// LookupEnv returns the mapped value
func (m MapSystem) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// RequireEnv returns the non-empty value of key or an error wrapping
// ErrEnvironmentMissing.
func RequireEnv(sys SystemInterface, key string) (string, error) {
	v, ok := sys.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: $%s is not set", ErrEnvironmentMissing, key)
	}
	return v, nil
}

// InsideTmux reports whether the process runs inside a tmux client.
func InsideTmux(sys SystemInterface) bool {
	v, ok := sys.LookupEnv("TMUX")
	return ok && v != ""
}
