package response

import (
	"time"

	"class-booking/internal/domain/booking"
)

type BookingResponse struct {
	ID          string     `json:"id"`
	StudentName string     `json:"studentName"`
	Day         string     `json:"day"`
	Time        string     `json:"time"`
	SlotID      string     `json:"slotId,omitempty"`
	BookedAt    *time.Time `json:"bookedAt,omitempty"`
}

func FromBookings(records []*booking.Record) []BookingResponse {
	out := make([]BookingResponse, 0, len(records))
	for _, r := range records {
		item := BookingResponse{
			ID:          r.ID(),
			StudentName: r.StudentName().String(),
			Day:         r.Day(),
			Time:        r.Time(),
			SlotID:      r.SlotID(),
		}
		if !r.BookedAt().IsZero() {
			t := r.BookedAt()
			item.BookedAt = &t
		}
		out = append(out, item)
	}
	return out
}
