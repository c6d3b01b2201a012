// Package models defines the core data structures used throughout the tici application.
package models

import (
	"slices"
	"time"
)

// Session is the structural snapshot of one tmux session.
type Session struct {
	Name    string   `json:"name" yaml:"name"`       // tmux session name
	Windows []Window `json:"windows" yaml:"windows"` // Windows in file or enumeration order
}

// Window is a tmux window and the panes it contains.
type Window struct {
	SessionName string `json:"session_name" yaml:"session_name"` // Owning session
	Index       int    `json:"index" yaml:"index"`               // Window index, unique within the session
	Name        string `json:"name" yaml:"name"`                 // Window name, possibly empty
	Active      bool   `json:"active" yaml:"active"`             // Whether this is the session's current window
	Layout      string `json:"layout" yaml:"layout"`             // Opaque tmux layout token
	Panes       []Pane `json:"panes" yaml:"panes"`               // Panes in index order
}

// Pane is a single terminal view inside a window.
type Pane struct {
	Index          int    `json:"index" yaml:"index"`
	Active         bool   `json:"active" yaml:"active"`
	Title          string `json:"title" yaml:"title"`
	CurrentPath    string `json:"current_path" yaml:"current_path"`
	CurrentCommand string `json:"current_command" yaml:"current_command"`
	PID            int    `json:"pid" yaml:"pid"`
	HistorySize    int    `json:"history_size" yaml:"history_size"`
}

// ActiveWindow returns the first window marked active.
func (s *Session) ActiveWindow() (*Window, bool) {
	for i := range s.Windows {
		if s.Windows[i].Active {
			return &s.Windows[i], true
		}
	}
	return nil, false
}

// SortedWindows returns the windows ordered by ascending index.
func (s *Session) SortedWindows() []Window {
	windows := slices.Clone(s.Windows)
	slices.SortStableFunc(windows, func(a, b Window) int {
		return a.Index - b.Index
	})
	return windows
}

// PaneCount returns the total number of panes across all windows.
func (s *Session) PaneCount() int {
	n := 0
	for _, w := range s.Windows {
		n += len(w.Panes)
	}
	return n
}

// ActivePane returns the first pane marked active.
func (w *Window) ActivePane() (*Pane, bool) {
	for i := range w.Panes {
		if w.Panes[i].Active {
			return &w.Panes[i], true
		}
	}
	return nil, false
}

// StartDirectory returns the working directory of the window's first pane.
func (w *Window) StartDirectory() string {
	if len(w.Panes) == 0 {
		return ""
	}
	return w.Panes[0].CurrentPath
}

// SavedSession describes a save file found in the save directory.
type SavedSession struct {
	Path    string    `json:"path"`            // Absolute path of the save file
	Hash    string    `json:"hash"`            // Directory hash embedded in the file name
	Name    string    `json:"name"`            // Session name embedded in the file name
	ModTime time.Time `json:"mod_time"`        // Last write time
	Windows int       `json:"windows"`         // Number of window records
	Panes   int       `json:"panes"`           // Number of pane records
	Err     string    `json:"error,omitempty"` // Parse error, if the file is unreadable
}

// Config represents the application configuration.
type Config struct {
	Tmux    TmuxConfig    `mapstructure:"tmux"`    // Multiplexer configuration
	Storage StorageConfig `mapstructure:"storage"` // Save file location
	Finder  FinderConfig  `mapstructure:"finder"`  // Fuzzy finder configuration
	UI      UIConfig      `mapstructure:"ui"`      // UI-related configuration
	Log     LogConfig     `mapstructure:"log"`     // Logging configuration
}

// TmuxConfig contains multiplexer options.
type TmuxConfig struct {
	Command string `mapstructure:"command"` // tmux binary name or path
}

// StorageConfig contains save file options.
type StorageConfig struct {
	DirName   string `mapstructure:"dirname"`   // Directory under $HOME holding save files
	Extension string `mapstructure:"extension"` // Save file extension without dot
}

// FinderConfig contains fuzzy finder configuration options.
type FinderConfig struct {
	Preview bool `mapstructure:"preview"` // Enable preview window
}

// UIConfig contains UI-related configuration options.
type UIConfig struct {
	Color     bool `mapstructure:"color"`      // Enable colored output
	Icons     bool `mapstructure:"icons"`      // Enable icon display
	TildeHome bool `mapstructure:"tilde_home"` // Show $HOME as ~
}

// LogConfig contains logger options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // zap level name
	Development bool   `mapstructure:"development"` // Caller info and colored levels
}
