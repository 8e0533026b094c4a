package response

import (
	"class-booking/internal/usecase/reservation"

	"github.com/jinzhu/copier"
)

type SessionSlotResponse struct {
	ID               string `json:"id"`
	Day              string `json:"day"`
	Time             string `json:"time"`
	SlotsLeft        int    `json:"slotsLeft"`
	DisplaySlotsLeft int    `json:"displaySlotsLeft"`
	Bookable         bool   `json:"bookable"`
	Selected         bool   `json:"selected"`
}

type SessionResponse struct {
	ID            string                `json:"id"`
	State         string                `json:"state"`
	PendingSlotID string                `json:"pendingSlotId,omitempty"`
	StudentName   string                `json:"studentName"`
	LastError     string                `json:"lastError,omitempty"`
	CanSubmit     bool                  `json:"canSubmit"`
	Slots         []SessionSlotResponse `json:"slots"`
}

func FromSessionView(id string, v reservation.View) (*SessionResponse, error) {
	resp := &SessionResponse{
		ID:            id,
		State:         string(v.State),
		PendingSlotID: v.PendingSlotID,
		StudentName:   v.StudentName,
		LastError:     v.LastError,
		CanSubmit:     v.CanSubmit,
		Slots:         []SessionSlotResponse{},
	}
	if len(v.Slots) == 0 {
		return resp, nil
	}
	if err := copier.Copy(&resp.Slots, &v.Slots); err != nil {
		return nil, err
	}
	return resp, nil
}
