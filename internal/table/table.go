// Package table renders column-aligned listings with lipgloss/table.
package table

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Builder accumulates headers and rows and renders them as one table.
type Builder struct {
	headers []string
	rows    [][]string
	style   Style
	output  io.Writer
}

// Style defines the visual styling options for tables.
type Style struct {
	Border lipgloss.Border
	// Borderless hides every border line, leaving aligned columns only.
	Borderless bool
	// HeaderStyle applies to the header row.
	HeaderStyle lipgloss.Style
	// CellStyle applies to data cells.
	CellStyle lipgloss.Style
	// PaddingLeft and PaddingRight pad every cell.
	PaddingLeft  int
	PaddingRight int
}

// DefaultStyle returns a rounded-border table with a bold header.
func DefaultStyle() Style {
	return Style{
		Border: lipgloss.RoundedBorder(),
		HeaderStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0EA5E9")),
		CellStyle:    lipgloss.NewStyle(),
		PaddingLeft:  1,
		PaddingRight: 1,
	}
}

// PlainStyle returns a borderless style without colors, suitable for pipes.
func PlainStyle() Style {
	return Style{
		Border:       lipgloss.HiddenBorder(),
		Borderless:   true,
		HeaderStyle:  lipgloss.NewStyle(),
		CellStyle:    lipgloss.NewStyle(),
		PaddingLeft:  0,
		PaddingRight: 2,
	}
}

// New creates a table builder writing to stdout.
func New(style Style) *Builder {
	return &Builder{
		style:  style,
		output: os.Stdout,
	}
}

// SetOutput sets the output writer for the table.
func (b *Builder) SetOutput(w io.Writer) *Builder {
	b.output = w
	return b
}

// Headers sets the table headers.
func (b *Builder) Headers(headers ...string) *Builder {
	b.headers = append([]string(nil), headers...)
	return b
}

// Row adds a data row.
func (b *Builder) Row(columns ...string) *Builder {
	b.rows = append(b.rows, append([]string(nil), columns...))
	return b
}

// RowCount returns the number of data rows.
func (b *Builder) RowCount() int {
	return len(b.rows)
}

// Build renders the table to a string.
func (b *Builder) Build() string {
	t := table.New().
		Border(b.style.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := b.style.CellStyle
			if row == table.HeaderRow {
				base = b.style.HeaderStyle
			}
			return base.
				PaddingLeft(b.style.PaddingLeft).
				PaddingRight(b.style.PaddingRight)
		})

	if b.style.Borderless {
		t.BorderTop(false).
			BorderBottom(false).
			BorderLeft(false).
			BorderRight(false).
			BorderColumn(false).
			BorderHeader(false)
	}

	if len(b.headers) > 0 {
		t.Headers(b.headers...)
	}
	for _, row := range b.rows {
		t.Row(row...)
	}
	return t.Render()
}

// Println writes the table followed by a newline.
func (b *Builder) Println() error {
	_, err := fmt.Fprintln(b.output, b.Build())
	return err
}
