package converter

import (
	"class-booking/internal/domain/slot"
	"class-booking/internal/usecase/shared"
)

func SlotFromDocument(doc shared.Document) (*slot.Slot, error) {
	day, err := StringField(doc.Fields, FieldDay)
	if err != nil {
		return nil, err
	}
	tm, err := StringField(doc.Fields, FieldTime)
	if err != nil {
		return nil, err
	}
	left, err := IntField(doc.Fields, FieldSlotsLeft)
	if err != nil {
		return nil, err
	}
	return slot.NewSlot(doc.ID, day, tm, left)
}

func SlotToFields(day, tm string, left slot.SlotsLeft) shared.Fields {
	return shared.Fields{
		FieldDay:       day,
		FieldTime:      tm,
		FieldSlotsLeft: left.Int(),
	}
}

func SlotsLeftPatch(left slot.SlotsLeft) shared.Fields {
	return shared.Fields{FieldSlotsLeft: left.Int()}
}
