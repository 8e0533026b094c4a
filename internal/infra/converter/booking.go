package converter

import (
	"time"

	"class-booking/internal/domain/booking"
	"class-booking/internal/usecase/shared"
)

func BookingToFields(r *booking.Record) shared.Fields {
	return shared.Fields{
		FieldStudentName: r.StudentName().String(),
		FieldDay:         r.Day(),
		FieldTime:        r.Time(),
		FieldSlotID:      r.SlotID(),
		FieldBookedAt:    r.BookedAt().Format(time.RFC3339Nano),
	}
}

// BookingFromDocument tolerates records written by the original client, which
// only carried studentName, day and time.
func BookingFromDocument(doc shared.Document) (*booking.Record, error) {
	name, err := StringField(doc.Fields, FieldStudentName)
	if err != nil {
		return nil, err
	}
	day, err := StringField(doc.Fields, FieldDay)
	if err != nil {
		return nil, err
	}
	tm, err := StringField(doc.Fields, FieldTime)
	if err != nil {
		return nil, err
	}
	slotID, _ := StringField(doc.Fields, FieldSlotID)
	bookedAt, _ := TimeField(doc.Fields, FieldBookedAt)
	return booking.ReconstructRecord(doc.ID, name, day, tm, slotID, bookedAt), nil
}
