package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"class-booking/internal/usecase/reservation"
)

// Booker is the slice of reservation.Controller the screen drives.
type Booker interface {
	Select(slotID string) error
	SetStudentName(name string) error
	Cancel() error
	Submit(ctx context.Context, studentName string) error
	View() reservation.View
}

type Loader interface {
	Load(ctx context.Context) error
}

type mode int

const (
	modeBrowse mode = iota
	modeName
)

// SlotsChangedMsg is sent by the caller whenever the slot list changes.
type SlotsChangedMsg struct {
	Version uint64
}

type submitDoneMsg struct {
	err error
}

type refreshDoneMsg struct {
	err error
}

type Model struct {
	ctx      context.Context
	booker   Booker
	loader   Loader
	syncMode reservation.SyncMode

	keys  KeyMap
	help  help.Model
	input textinput.Model

	mode       mode
	cursor     int
	submitting bool
	status     string
	statusErr  bool
	width      int
	quitting   bool
}

func NewModel(ctx context.Context, loader Loader, booker Booker, syncMode reservation.SyncMode) Model {
	input := textinput.New()
	input.Placeholder = "Your name"
	input.CharLimit = 100
	input.Width = 40

	return Model{
		ctx:      ctx,
		booker:   booker,
		loader:   loader,
		syncMode: syncMode,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		input:    input,
	}
}

// WithError opens the screen showing err, typically a failed initial fetch.
func (m Model) WithError(err error) Model {
	if err != nil {
		m.setError(err)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}
