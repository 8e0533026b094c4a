package slot

import (
	"errors"
	"strings"
)

var ErrEmptyID = errors.New("slot id cannot be empty")

// Slot is a bookable class time-block. Only slotsLeft changes after creation.
type Slot struct {
	id        string
	day       Label
	time      Label
	slotsLeft SlotsLeft
}

// NewSlot validates raw values loaded from the store.
func NewSlot(id, day, time string, slotsLeft int) (*Slot, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrEmptyID
	}
	d, err := NewLabel(day)
	if err != nil {
		return nil, err
	}
	t, err := NewLabel(time)
	if err != nil {
		return nil, err
	}
	left, err := NewSlotsLeft(slotsLeft)
	if err != nil {
		return nil, err
	}
	return &Slot{id: id, day: d, time: t, slotsLeft: left}, nil
}

func (s *Slot) CanBook() bool {
	return !s.slotsLeft.IsZero()
}

// Tentative returns the count a booking of this slot would leave behind.
func (s *Slot) Tentative() (SlotsLeft, error) {
	return s.slotsLeft.Decrement()
}

// WithSlotsLeft returns a copy carrying a confirmed count.
func (s *Slot) WithSlotsLeft(left SlotsLeft) *Slot {
	cp := *s
	cp.slotsLeft = left
	return &cp
}

func (s *Slot) ID() string           { return s.id }
func (s *Slot) Day() string          { return s.day.String() }
func (s *Slot) Time() string         { return s.time.String() }
func (s *Slot) SlotsLeft() SlotsLeft { return s.slotsLeft }
