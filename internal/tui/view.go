package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"class-booking/internal/usecase/reservation"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	view := m.booker.View()
	sections := []string{m.viewHeader(), m.viewSlots(view)}
	if m.mode == modeName {
		sections = append(sections, m.viewForm(view))
	}
	if m.status != "" {
		style := statusStyle
		if m.statusErr {
			style = errorStyle
		}
		sections = append(sections, style.Render(m.status))
	}
	sections = append(sections, "", m.viewHelp())

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) viewHeader() string {
	sync := "live updates"
	if m.syncMode == reservation.SyncPoll {
		sync = "press r to refresh"
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Class Booking"),
		"  ",
		syncStyle.Render(sync),
	)
}

func (m Model) viewSlots(view reservation.View) string {
	if len(view.Slots) == 0 {
		return syncStyle.Render("No classes scheduled.")
	}

	var b strings.Builder
	for i, s := range view.Slots {
		cursor := "  "
		if i == m.cursor && m.mode == modeBrowse {
			cursor = cursorStyle.Render("> ")
		}
		line := fmt.Sprintf("%-10s %-8s %3d left  %s", s.Day, s.Time, s.DisplaySlotsLeft, slotAction(s))
		if s.Selected {
			line = selectedRowStyle.Render(line)
		}
		b.WriteString(cursor + line)
		if i < len(view.Slots)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func slotAction(s reservation.SlotView) string {
	switch {
	case s.Selected:
		return "Selected"
	case s.Bookable:
		return bookableStyle.Render("Book Now")
	default:
		return fullStyle.Render("Fully Booked")
	}
}

func (m Model) viewForm(view reservation.View) string {
	title := "Booking"
	if s, ok := view.Slot(view.PendingSlotID); ok {
		title = fmt.Sprintf("Booking %s %s", s.Day, s.Time)
	}
	return formStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.input.View()))
}

func (m Model) viewHelp() string {
	if m.mode == modeName {
		return m.help.ShortHelpView(m.keys.nameHelp())
	}
	return m.help.View(m.keys)
}
