package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"class-booking/internal/pkg/errs"
	"class-booking/internal/usecase/shared"
)

const refreshTimeout = 10 * time.Second

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case SlotsChangedMsg:
		m.clampCursor()
		return m, nil

	case refreshDoneMsg:
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus("Slots refreshed")
		}
		m.clampCursor()
		return m, nil

	case submitDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.mode = modeBrowse
		m.input.Reset()
		m.input.Blur()
		m.setStatus("Booking confirmed")
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.submitting {
			return m, nil
		}
		if m.mode == modeName {
			return m.updateName(msg)
		}
		return m.updateBrowse(msg)
	}

	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.booker.View().Slots)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.Select):
		view := m.booker.View()
		if m.cursor >= len(view.Slots) {
			return m, nil
		}
		if err := m.booker.Select(view.Slots[m.cursor].ID); err != nil {
			m.setError(err)
			return m, nil
		}
		m.mode = modeName
		m.status = ""
		m.input.SetValue(view.StudentName)
		cmd := m.input.Focus()
		return m, cmd
	}
	return m, nil
}

func (m Model) updateName(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		if err := m.booker.Cancel(); err != nil {
			m.setError(err)
			return m, nil
		}
		m.mode = modeBrowse
		m.input.Reset()
		m.input.Blur()
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		name := m.input.Value()
		if err := m.booker.SetStudentName(name); err != nil {
			m.setError(err)
			return m, nil
		}
		m.submitting = true
		m.setStatus("Submitting…")
		return m, m.submit(name)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(name string) tea.Cmd {
	ctx, booker := m.ctx, m.booker
	return func() tea.Msg {
		return submitDoneMsg{err: booker.Submit(ctx, name)}
	}
}

func (m Model) refresh() tea.Cmd {
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		lctx, cancel := context.WithTimeout(ctx, refreshTimeout)
		defer cancel()
		return refreshDoneMsg{err: loader.Load(lctx)}
	}
}

func (m *Model) clampCursor() {
	n := len(m.booker.View().Slots)
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = describeError(err)
	m.statusErr = true
}

func describeError(err error) string {
	var submitErr *shared.SubmitError
	var fetchErr *shared.FetchError
	switch {
	case errs.Is(err, errs.ErrSlotFull):
		return "That class is fully booked"
	case errs.Is(err, errs.ErrStaleSlot):
		return "That class changed while you were booking, please try again"
	case errs.Is(err, errs.ErrSlotNotFound):
		return "That class is no longer offered"
	case errs.Is(err, errs.ErrStudentNameRequired):
		return "Please enter your name"
	case errors.As(err, &submitErr):
		return "Error submitting booking"
	case errors.As(err, &fetchErr):
		return "Error fetching slots"
	}
	return err.Error()
}
