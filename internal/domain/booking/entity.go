package booking

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"class-booking/internal/domain/slot"
)

var (
	ErrEmptyStudentName   = errors.New("student name cannot be empty")
	ErrStudentNameTooLong = errors.New("student name is too long (max 100 characters)")
)

const MaxStudentNameLength = 100

type StudentName struct {
	value string
}

func NewStudentName(v string) (StudentName, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return StudentName{}, ErrEmptyStudentName
	}
	if utf8.RuneCountInString(v) > MaxStudentNameLength {
		return StudentName{}, ErrStudentNameTooLong
	}
	return StudentName{value: v}, nil
}

func (n StudentName) String() string {
	return n.value
}

// Record is written once per successful submission and never changed afterwards.
type Record struct {
	id          string
	studentName StudentName
	day         string
	time        string
	slotID      string
	bookedAt    time.Time
}

// NewRecord copies the labels of the selected slot at booking time.
func NewRecord(name StudentName, s *slot.Slot, bookedAt time.Time) *Record {
	return &Record{
		studentName: name,
		day:         s.Day(),
		time:        s.Time(),
		slotID:      s.ID(),
		bookedAt:    bookedAt.UTC(),
	}
}

func ReconstructRecord(id, studentName, day, time, slotID string, bookedAt time.Time) *Record {
	return &Record{
		id:          id,
		studentName: StudentName{value: studentName},
		day:         day,
		time:        time,
		slotID:      slotID,
		bookedAt:    bookedAt,
	}
}

func (r *Record) ID() string               { return r.id }
func (r *Record) StudentName() StudentName { return r.studentName }
func (r *Record) Day() string              { return r.day }
func (r *Record) Time() string             { return r.time }
func (r *Record) SlotID() string           { return r.slotID }
func (r *Record) BookedAt() time.Time      { return r.bookedAt }
