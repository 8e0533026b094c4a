//go:build unit || e2e

package builder

import (
	"time"

	dombooking "class-booking/internal/domain/booking"
	domslot "class-booking/internal/domain/slot"
	reqdto "class-booking/internal/handler/dto/request"
)

type BookingBuilder struct {
	StudentName string
	Slot        *SlotBuilder
	BookedAt    time.Time
}

func NewBookingBuilder() *BookingBuilder {
	return &BookingBuilder{
		StudentName: "Ada Lovelace",
		Slot:        NewSlotBuilder(),
		BookedAt:    time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC),
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) BuildDomain() (*dombooking.Record, error) {
	name, err := dombooking.NewStudentName(b.StudentName)
	if err != nil {
		return nil, err
	}
	s, err := b.buildSlot()
	if err != nil {
		return nil, err
	}
	return dombooking.NewRecord(name, s, b.BookedAt), nil
}

func (b *BookingBuilder) BuildSubmitRequestDTO() reqdto.SubmitRequest {
	return reqdto.SubmitRequest{StudentName: b.StudentName}
}

func (b *BookingBuilder) WithStudentName(name string) *BookingBuilder {
	b.StudentName = name
	return b
}

func (b *BookingBuilder) WithSlot(s *SlotBuilder) *BookingBuilder {
	b.Slot = s
	return b
}

func (b *BookingBuilder) WithBookedAt(t time.Time) *BookingBuilder {
	b.BookedAt = t
	return b
}

func (b *BookingBuilder) buildSlot() (*domslot.Slot, error) {
	return b.Slot.BuildDomain()
}
