package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const columnGap = "  "

// maxTableWidth caps rendered table lines. Zero means unlimited.
var maxTableWidth int

// SetWidth sets the line width tables shrink their flexible column to fit.
// Zero or a negative value disables fitting.
func SetWidth(w int) {
	maxTableWidth = max(w, 0)
}

// Table renders rows of cells in aligned columns under a header and a rule.
// Cells may carry ANSI styling; widths are measured in terminal cells.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
	right   map[int]bool
	flex    int
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	t := &Table{headers: headers, widths: make([]int, len(headers)), right: map[int]bool{}, flex: -1}
	for i, h := range headers {
		t.widths[i] = lipgloss.Width(h)
	}
	return t
}

// AlignRight right-aligns the given zero-based columns, for numeric values.
func (t *Table) AlignRight(cols ...int) *Table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

// Flex marks the column that gets truncated when the table is wider than the
// width set with SetWidth.
func (t *Table) Flex(col int) *Table {
	if col >= 0 && col < len(t.headers) {
		t.flex = col
	}
	return t
}

// AddRow appends a row. Missing cells are blank; extra values are dropped.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.headers))
	copy(row, values)
	for i, cell := range row {
		t.widths[i] = max(t.widths[i], lipgloss.Width(cell))
	}
	t.rows = append(t.rows, row)
}

// Render returns the formatted table.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}
	var sb strings.Builder
	widths := t.fitWidths()

	header := make([]string, len(t.headers))
	rule := make([]string, len(t.headers))
	for i, h := range t.headers {
		header[i] = StyleHeader.Render(t.align(i, truncate(h, widths[i]), widths[i]))
		rule[i] = StyleMuted.Render(strings.Repeat("─", widths[i]))
	}
	t.writeLine(&sb, header)
	t.writeLine(&sb, rule)

	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i == t.flex {
				cell = truncate(cell, widths[i])
			}
			cells[i] = t.align(i, cell, widths[i])
		}
		t.writeLine(&sb, cells)
	}
	return sb.String()
}

// fitWidths returns the column widths to render with, shrinking the flexible
// column so lines stay within maxTableWidth. The flexible column never drops
// below minFlexWidth.
func (t *Table) fitWidths() []int {
	widths := append([]int(nil), t.widths...)
	if maxTableWidth == 0 || t.flex < 0 {
		return widths
	}
	total := len(columnGap) * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}
	if over := total - maxTableWidth; over > 0 {
		widths[t.flex] = max(widths[t.flex]-over, min(widths[t.flex], minFlexWidth))
	}
	return widths
}

const minFlexWidth = 6

// truncate shortens s to width terminal cells, marking the cut with "...".
// Styling is preserved.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 3 {
		return lipgloss.NewStyle().MaxWidth(width).Render(s)
	}
	return lipgloss.NewStyle().MaxWidth(width-3).Render(s) + "..."
}

func (t *Table) writeLine(sb *strings.Builder, cells []string) {
	sb.WriteString(strings.TrimRight(strings.Join(cells, columnGap), " "))
	sb.WriteString("\n")
}

func (t *Table) align(col int, s string, width int) string {
	if t.right[col] {
		return padLeft(s, width)
	}
	return pad(s, width)
}

// String implements fmt.Stringer.
func (t *Table) String() string {
	return t.Render()
}

// Fprint writes the table to w.
func (t *Table) Fprint(w io.Writer) error {
	_, err := io.WriteString(w, t.Render())
	return err
}

// Print writes the table to stdout.
func (t *Table) Print() {
	if err := t.Fprint(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "output:", err)
	}
}

// pad right-pads s with spaces to the given visual width.
func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// padLeft left-pads s with spaces to the given visual width.
func padLeft(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}
