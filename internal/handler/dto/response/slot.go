package response

import (
	"class-booking/internal/domain/slot"
	"class-booking/internal/usecase/catalog"
)

type SlotResponse struct {
	ID        string `json:"id"`
	Day       string `json:"day"`
	Time      string `json:"time"`
	SlotsLeft int    `json:"slotsLeft"`
	Bookable  bool   `json:"bookable"`
}

type SlotListResponse struct {
	Slots   []SlotResponse `json:"slots"`
	Version uint64         `json:"version"`
}

type ImportResponse struct {
	Imported int                `json:"imported"`
	Skipped  []catalog.RowError `json:"skipped"`
}

func FromSlot(s *slot.Slot) SlotResponse {
	return SlotResponse{
		ID:        s.ID(),
		Day:       s.Day(),
		Time:      s.Time(),
		SlotsLeft: s.SlotsLeft().Int(),
		Bookable:  s.CanBook(),
	}
}

func FromSlots(slots []*slot.Slot, version uint64) SlotListResponse {
	out := SlotListResponse{Slots: make([]SlotResponse, 0, len(slots)), Version: version}
	for _, s := range slots {
		out.Slots = append(out.Slots, FromSlot(s))
	}
	return out
}

func FromImportResult(r *catalog.ImportResult) ImportResponse {
	skipped := r.Skipped
	if skipped == nil {
		skipped = []catalog.RowError{}
	}
	return ImportResponse{Imported: r.Imported, Skipped: skipped}
}
