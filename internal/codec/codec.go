// Package codec reads and writes the line-oriented save file format.
//
// Each window is written as
//
//	# Window: <session>|<index>|<name>|<active>|<layout>
//
// followed by one line per pane:
//
//	# Pane: <index>|<active>|<title>|<path>|<command>|<pid>|<history_size>
//
// Fields are not escaped. Values containing '|' or line breaks are refused
// when writing, so a file produced here always parses back to the same tree.
// Lines without a known tag are ignored when reading.
package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/d-kuro/tici/pkg/models"
)

// Record tags and the field separator.
const (
	WindowTag = "# Window: "
	PaneTag   = "# Pane: "
	Separator = "|"
)

const (
	windowFields = 5
	paneFields   = 6

	maxLineSize = 1 << 20
)

// ErrEmptySession is returned when a save file contains no window records.
var ErrEmptySession = errors.New("no windows found in saved session")

// MalformedRecordError reports a tagged line that cannot be decoded.
type MalformedRecordError struct {
	LineNo int
	Line   string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record on line %d (%s): %q", e.LineNo, e.Reason, e.Line)
}

// UnserializableFieldError reports a value that would corrupt the file format.
type UnserializableFieldError struct {
	Record string
	Field  string
	Value  string
}

func (e *UnserializableFieldError) Error() string {
	return fmt.Sprintf("%s field %s cannot be saved: %q contains '|' or a line break", e.Record, e.Field, e.Value)
}

// Marshal serializes s. Nothing is produced if any field is unserializable.
func Marshal(s *models.Session) ([]byte, error) {
	var buf bytes.Buffer
	for _, w := range s.Windows {
		sessionName := w.SessionName
		if sessionName == "" {
			sessionName = s.Name
		}
		record := fmt.Sprintf("window %d", w.Index)
		if err := checkFields(record,
			"session", sessionName,
			"name", w.Name,
			"layout", w.Layout,
		); err != nil {
			return nil, err
		}

		buf.WriteString(WindowTag)
		buf.WriteString(strings.Join([]string{
			sessionName,
			strconv.Itoa(w.Index),
			w.Name,
			formatBool(w.Active),
			w.Layout,
		}, Separator))
		buf.WriteByte('\n')

		for _, p := range w.Panes {
			record := fmt.Sprintf("pane %d.%d", w.Index, p.Index)
			if err := checkFields(record,
				"title", p.Title,
				"path", p.CurrentPath,
				"command", p.CurrentCommand,
			); err != nil {
				return nil, err
			}

			buf.WriteString(PaneTag)
			buf.WriteString(strings.Join([]string{
				strconv.Itoa(p.Index),
				formatBool(p.Active),
				p.Title,
				p.CurrentPath,
				p.CurrentCommand,
				strconv.Itoa(p.PID),
				strconv.Itoa(p.HistorySize),
			}, Separator))
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}

// Unmarshal parses a save file.
func Unmarshal(data []byte) (*models.Session, error) {
	return Decode(bytes.NewReader(data))
}

// Decode parses a save file from r.
func Decode(r io.Reader) (*models.Session, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	session := &models.Session{}
	current := -1
	windowSeen := map[int]bool{}
	var paneSeen map[int]bool

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")

		switch {
		case strings.HasPrefix(line, WindowTag):
			w, err := parseWindow(strings.TrimPrefix(line, WindowTag))
			if err != nil {
				return nil, &MalformedRecordError{LineNo: lineNo, Line: line, Reason: err.Error()}
			}
			if windowSeen[w.Index] {
				return nil, &MalformedRecordError{LineNo: lineNo, Line: line, Reason: "duplicate window index"}
			}
			windowSeen[w.Index] = true
			paneSeen = map[int]bool{}

			if session.Name == "" {
				session.Name = w.SessionName
			}
			session.Windows = append(session.Windows, w)
			current = len(session.Windows) - 1

		case strings.HasPrefix(line, PaneTag):
			if current < 0 {
				// Pane before any window has no owner.
				continue
			}
			p, err := parsePane(strings.TrimPrefix(line, PaneTag))
			if err != nil {
				return nil, &MalformedRecordError{LineNo: lineNo, Line: line, Reason: err.Error()}
			}
			if paneSeen[p.Index] {
				return nil, &MalformedRecordError{LineNo: lineNo, Line: line, Reason: "duplicate pane index"}
			}
			paneSeen[p.Index] = true
			session.Windows[current].Panes = append(session.Windows[current].Panes, p)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading save file: %w", err)
	}

	if len(session.Windows) == 0 {
		return nil, ErrEmptySession
	}
	return session, nil
}

func parseWindow(data string) (models.Window, error) {
	fields := strings.Split(data, Separator)
	if len(fields) < windowFields {
		return models.Window{}, fmt.Errorf("expected %d fields, got %d", windowFields, len(fields))
	}
	index, err := parseIndex(fields[1])
	if err != nil {
		return models.Window{}, fmt.Errorf("window index: %w", err)
	}
	return models.Window{
		SessionName: fields[0],
		Index:       index,
		Name:        fields[2],
		Active:      parseBool(fields[3]),
		Layout:      fields[4],
	}, nil
}

func parsePane(data string) (models.Pane, error) {
	fields := strings.Split(data, Separator)
	if len(fields) < paneFields {
		return models.Pane{}, fmt.Errorf("expected at least %d fields, got %d", paneFields, len(fields))
	}
	index, err := parseIndex(fields[0])
	if err != nil {
		return models.Pane{}, fmt.Errorf("pane index: %w", err)
	}
	p := models.Pane{
		Index:          index,
		Active:         parseBool(fields[1]),
		Title:          fields[2],
		CurrentPath:    fields[3],
		CurrentCommand: fields[4],
		PID:            parseOptionalInt(fields[5]),
	}
	if len(fields) > paneFields {
		p.HistorySize = parseOptionalInt(fields[6])
	}
	return p, nil
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative index %d", n)
	}
	return n, nil
}

func parseOptionalInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseBool(s string) bool {
	return s == "1"
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// checkFields takes alternating field names and values.
func checkFields(record string, kv ...string) error {
	for i := 0; i+1 < len(kv); i += 2 {
		if strings.ContainsAny(kv[i+1], Separator+"\r\n") {
			return &UnserializableFieldError{Record: record, Field: kv[i], Value: kv[i+1]}
		}
	}
	return nil
}
