package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/hayeah/fdl/internal/selection"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.mode == modePreview {
		return m.viewPreview()
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")

	h := m.listHeight()
	end := min(len(m.rows), m.top+h)
	for i := m.top; i < end; i++ {
		b.WriteString(m.viewRow(i))
		b.WriteString("\n")
	}
	for i := end - m.top; i < h; i++ {
		b.WriteString("\n")
	}

	b.WriteString(m.viewFooter())
	return b.String()
}

func (m Model) viewHeader() string {
	sel := m.tree.Root().SelectedStats()
	total := m.tree.Totals()
	text := fmt.Sprintf(" FDL | Selected: %s (%d) | Total: %s (%d) | Sort: %s",
		humanize.Bytes(uint64(sel.TotalBytes)), sel.FileCount,
		humanize.Bytes(uint64(total.TotalBytes)), total.FileCount,
		sortLabel(m.tree.SortKey()))
	return headerStyle.Width(m.width).Render(truncate(text, m.width))
}

func (m Model) viewRow(i int) string {
	n := m.rows[i]

	var mark string
	switch {
	case !n.Selectable():
		mark = dimStyle.Render("[ ]")
	case n.State() == selection.Selected:
		mark = selectedMark.Render("[✓]")
	case n.State() == selection.PartiallySelected:
		mark = partialMark.Render("[~]")
	default:
		mark = "[ ]"
	}

	icon := "  "
	name := n.Name()
	if n.IsDir() {
		icon = "▸ "
		if m.expanded[n.Path()] {
			icon = "▾ "
		}
		if n.Parent() != nil {
			name += "/"
		}
	}

	indent := strings.Repeat("  ", n.Depth())
	size := humanize.Bytes(uint64(n.Size()))
	left := truncate(indent+icon+name, max(1, m.width-len(size)-6))
	pad := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(size)-5)
	line := left + strings.Repeat(" ", pad) + size

	if i == m.cursor {
		return mark + " " + cursorStyle.Render(line)
	}
	if !n.IsDir() && !n.IsText() {
		return mark + " " + dimStyle.Render(line)
	}
	return mark + " " + line
}

func (m Model) viewFooter() string {
	switch {
	case m.mode == modeConfirmQuit:
		return statusStyle.Render("Are you sure you want to quit? [y/N] ")
	case m.mode == modeSearch:
		return m.search.View()
	case m.status != "" && m.statusErr:
		return errorStyle.Render(truncate(m.status, m.width))
	case m.status != "":
		return statusStyle.Render(truncate(m.status, m.width))
	}
	return m.help.View(m.keys)
}

func (m Model) viewPreview() string {
	n := m.previewNode
	title := previewTitle.Render(fmt.Sprintf("%s (%s)", n.Path(), humanize.Bytes(uint64(n.Size()))))

	line := m.preview.YOffset + 1
	info := previewInfo.Render(fmt.Sprintf(" Ln %d/%d ", min(line, m.previewLen), m.previewLen))
	hint := dimStyle.Render("[↑↓ Scroll, p/q/Esc Close]")

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.preview.View(),
		lipgloss.JoinHorizontal(lipgloss.Top, info, " ", hint),
	)
	box := previewBorder.Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r)) > width-1 {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
