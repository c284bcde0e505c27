package grid

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iliyamo/openday-seat-reservation/internal/model"
)

var (
	cellBase = lipgloss.NewStyle().Width(5).Align(lipgloss.Center).Bold(true)

	cellStyles = map[string]lipgloss.Style{
		model.SeatAvailable: cellBase.Foreground(lipgloss.Color("#0b3d0b")).Background(lipgloss.Color("#8fd18f")),
		model.SeatReserved:  cellBase.Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#c0392b")),
		model.CellBlocked:   cellBase.Foreground(lipgloss.Color("#777777")),
	}
)

// Render writes the layout as a coloured terminal grid followed by a
// one-line summary. An accent colour, when set, is used for the title.
func Render(w io.Writer, title, accent string, l Layout) error {
	titleStyle := lipgloss.NewStyle().Bold(true)
	if accent != "" {
		titleStyle = titleStyle.Foreground(lipgloss.Color(accent))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	for _, row := range l.Cells {
		rendered := make([]string, 0, len(row))
		for _, c := range row {
			style, ok := cellStyles[c.State]
			if !ok {
				style = cellBase
			}
			rendered = append(rendered, style.Render(c.Label))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\navailable %d · reserved %d · blocked %d\n",
		l.Count(model.SeatAvailable), l.Count(model.SeatReserved), l.Count(model.CellBlocked))

	_, err := io.WriteString(w, b.String())
	return err
}
