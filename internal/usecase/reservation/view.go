package reservation

// SlotView is one row of the booking screen.
type SlotView struct {
	ID        string
	Day       string
	Time      string
	SlotsLeft int
	// DisplaySlotsLeft includes the optimistic decrement of a pending selection.
	DisplaySlotsLeft int
	// Bookable is false exactly when DisplaySlotsLeft is 0. A submit in
	// flight is reported through View.State and CanSubmit instead.
	Bookable         bool
	Selected         bool
}

// View is an immutable snapshot handed to presentation layers.
type View struct {
	State         State
	PendingSlotID string
	StudentName   string
	LastError     string
	CanSubmit     bool
	Slots         []SlotView
}

func (v View) Slot(id string) (SlotView, bool) {
	for _, s := range v.Slots {
		if s.ID == id {
			return s, true
		}
	}
	return SlotView{}, false
}
