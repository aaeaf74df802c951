package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/reviewz/internal/ui/theme"
)

const titleFull = `┬─┐┌─┐┬  ┬┬┌─┐┬ ┬┌─┐
├┬┘├┤ └┐┌┘│├┤ │││┌─┘
┴└─└─┘ └┘ ┴└─┘└┴┘└─┘`

const titleCompact = "R · E · V · I · E · W · Z"

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	// Leave room for the frame border (2) and inner padding (4).
	w := frameWidth - 6
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Accent).
		Bold(true)

	art := titleFull
	if compact {
		art = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(art))
}

// renderDeckLine renders the deck name and its card total.
func renderDeckLine(name string, cards, cw int) string {
	nameStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	line := nameStyle.Render(name) + dimStyle.Render(fmt.Sprintf("  %d cards", cards))
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(line)
}

// renderStatsBar renders the queue counts in a bordered box matching
// content width.
func renderStatsBar(st stats, cw int, compact bool) string {
	dueStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	newStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var line string
	if !st.loaded {
		line = dimStyle.Render("counting cards...")
	} else if compact {
		line = fmt.Sprintf("%s %s",
			countText(st.due, "⚡%d", dueStyle, dimStyle),
			countText(st.fresh, "✚%d", newStyle, dimStyle),
		)
	} else {
		line = fmt.Sprintf("%s  %s",
			countText(st.due, "⚡ %d DUE", dueStyle, dimStyle),
			countText(st.fresh, "✚ %d NEW", newStyle, dimStyle),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(line)
}

func countText(n int, format string, active, dim lipgloss.Style) string {
	if n == 0 {
		return dim.Render(fmt.Sprintf(format, 0))
	}
	return active.Render(fmt.Sprintf(format, n))
}

// renderHistory renders a dim line about the review log.
func renderHistory(st stats, cw int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(cw).
		Align(lipgloss.Center)
	if st.history == nil || st.history.Answers == 0 {
		return style.Render("No reviews yet")
	}
	return style.Render(fmt.Sprintf("%d answers over %d sessions, last %s",
		st.history.Answers, st.history.Sessions, st.history.LastReview.Format("Jan 2 15:04")))
}

// renderMediaNote renders the result of the last media check.
func renderMediaNote(m mediaResult, cw int) string {
	style := lipgloss.NewStyle().Width(cw).Align(lipgloss.Center)
	switch {
	case !m.checked:
		return ""
	case m.err != nil:
		return style.Foreground(theme.Error).Render("Media check failed: " + m.err.Error())
	case len(m.missing) == 0:
		return style.Foreground(theme.Success).Render("All media files are present")
	}
	names := make([]string, 0, len(m.missing))
	for i, mm := range m.missing {
		if i == 3 {
			names = append(names, fmt.Sprintf("and %d more", len(m.missing)-3))
			break
		}
		names = append(names, mm.Name)
	}
	return style.Foreground(theme.Accent).
		Render(fmt.Sprintf("%d missing: %s", len(m.missing), strings.Join(names, ", ")))
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderMenu renders each menu item as a fixed-width button.
func renderMenu(items []string, selected int, cw int, disabled map[int]bool) string {
	selectedBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(theme.BgDark).
		Background(theme.Accent).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Accent).
		Padding(0, 1)

	normalBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	disabledBtn := normalBtn.Foreground(theme.TextDim)

	var buttons []string
	for i, label := range items {
		switch {
		case disabled[i]:
			buttons = append(buttons, disabledBtn.Render(label))
		case i == selected:
			buttons = append(buttons, selectedBtn.Render("▸ "+label))
		default:
			buttons = append(buttons, normalBtn.Render(label))
		}
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderMenuCompact renders menu items as plain lines for terminals where
// bordered buttons would overflow.
func renderMenuCompact(items []string, selected int, cw int, disabled map[int]bool) string {
	var lines []string
	for i, label := range items {
		var line string
		switch {
		case disabled[i]:
			line = lipgloss.NewStyle().
				Foreground(theme.TextDim).
				Render("   " + label)
		case i == selected:
			line = lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.Accent).
				Bold(true).
				Render(" ▸ " + label + " ")
		default:
			line = lipgloss.NewStyle().
				Foreground(theme.Text).
				Render("   " + label)
		}
		lines = append(lines, line)
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// renderFrame wraps content in a double-border frame, centered in the
// given dimensions.
func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// renderMascotBox renders the card art centered at content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}
