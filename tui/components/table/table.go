// Package table renders pilot's listings with lipgloss tables.
package table

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/grovetools/pilot/tui/theme"
)

// Options configures a table.
type Options struct {
	Bordered    bool
	HeaderStyle lipgloss.Style
	RowStyle    lipgloss.Style
	Theme       *theme.Theme
}

// DefaultOptions returns the default table options: borderless columns in
// the default theme.
func DefaultOptions() Options {
	return Options{
		Bordered:    false,
		HeaderStyle: theme.DefaultTheme.TableHeader,
		RowStyle:    theme.DefaultTheme.TableRow,
		Theme:       theme.DefaultTheme,
	}
}

// Builder provides a fluent interface for creating styled tables
type Builder struct {
	table      *ltable.Table
	options    Options
	hasHeaders bool
}

// NewBuilder creates a new table builder
func NewBuilder() *Builder {
	return &Builder{
		table:   ltable.New(),
		options: DefaultOptions(),
	}
}

// WithTheme sets the theme
func (b *Builder) WithTheme(t *theme.Theme) *Builder {
	b.options.Theme = t
	b.options.HeaderStyle = t.TableHeader
	b.options.RowStyle = t.TableRow
	return b
}

// WithBorder enables or disables the border
func (b *Builder) WithBorder(bordered bool) *Builder {
	b.options.Bordered = bordered
	return b
}

// WithHeaders sets the table headers
func (b *Builder) WithHeaders(headers ...string) *Builder {
	b.table = b.table.Headers(headers...)
	b.hasHeaders = len(headers) > 0
	return b
}

// WithRows appends rows
func (b *Builder) WithRows(rows ...[]string) *Builder {
	for _, row := range rows {
		b.table = b.table.Row(row...)
	}
	return b
}

// WithWidth caps the rendered width
func (b *Builder) WithWidth(width int) *Builder {
	if width > 0 {
		b.table = b.table.Width(width)
	}
	return b
}

// Build creates the styled table
func (b *Builder) Build() *ltable.Table {
	opts := b.options
	if opts.Bordered {
		b.table = b.table.
			Border(lipgloss.RoundedBorder()).
			BorderStyle(opts.Theme.TableBorder)
	} else {
		b.table = b.table.
			Border(lipgloss.HiddenBorder()).
			BorderTop(false).
			BorderBottom(false).
			BorderLeft(false).
			BorderRight(false).
			BorderColumn(false)
		// Without headers the header border line is never drawn, but lipgloss
		// still counts it when capping the height. Leaving it off would cut
		// the last row.
		b.table = b.table.BorderHeader(!b.hasHeaders)
	}

	b.table = b.table.StyleFunc(func(row, col int) lipgloss.Style {
		if row == ltable.HeaderRow {
			return opts.HeaderStyle
		}
		return opts.RowStyle
	})
	return b.table
}

// SimpleTable renders headers and rows as aligned columns.
func SimpleTable(headers []string, rows [][]string) string {
	return NewBuilder().
		WithHeaders(headers...).
		WithRows(rows...).
		Build().
		String()
}

// KeyValue renders label/value pairs with muted labels.
func KeyValue(items [][2]string) string {
	t := theme.DefaultTheme
	table := NewBuilder().Build()
	for _, item := range items {
		table = table.Row(t.Muted.Render(item[0]+":"), item[1])
	}
	return table.String()
}
