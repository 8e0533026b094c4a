package slot

import (
	"errors"
	"strings"
)

var (
	ErrNegativeSlotsLeft = errors.New("slots left cannot be negative")
	ErrFullyBooked       = errors.New("slot is fully booked")
	ErrEmptyLabel        = errors.New("label cannot be empty")
	ErrLabelTooLong      = errors.New("label is too long (max 64 characters)")
)

const MaxLabelLength = 64

// SlotsLeft is the remaining capacity of a class slot. The zero value is a full slot.
type SlotsLeft struct {
	value int
}

func NewSlotsLeft(n int) (SlotsLeft, error) {
	if n < 0 {
		return SlotsLeft{}, ErrNegativeSlotsLeft
	}
	return SlotsLeft{value: n}, nil
}

func (s SlotsLeft) Int() int {
	return s.value
}

func (s SlotsLeft) IsZero() bool {
	return s.value == 0
}

// Decrement never goes below zero.
func (s SlotsLeft) Decrement() (SlotsLeft, error) {
	if s.value == 0 {
		return s, ErrFullyBooked
	}
	return SlotsLeft{value: s.value - 1}, nil
}

// Label is a display label such as a day name or a time of day.
type Label struct {
	value string
}

func NewLabel(v string) (Label, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return Label{}, ErrEmptyLabel
	}
	if len([]rune(v)) > MaxLabelLength {
		return Label{}, ErrLabelTooLong
	}
	return Label{value: v}, nil
}

func (l Label) String() string {
	return l.value
}
