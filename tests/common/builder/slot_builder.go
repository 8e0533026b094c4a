//go:build unit || e2e

package builder

import (
	"context"
	"testing"

	domslot "class-booking/internal/domain/slot"
	reqdto "class-booking/internal/handler/dto/request"
	"class-booking/internal/infra/converter"
	"class-booking/internal/usecase/shared"

	"github.com/stretchr/testify/require"
)

type SlotBuilder struct {
	ID        string
	Day       string
	Time      string
	SlotsLeft int
}

func NewSlotBuilder() *SlotBuilder {
	return &SlotBuilder{
		ID:        "slot-mon-10",
		Day:       "Monday",
		Time:      "10:00",
		SlotsLeft: 3,
	}
}

func (b *SlotBuilder) With(mutate func(*SlotBuilder)) *SlotBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *SlotBuilder) BuildDomain() (*domslot.Slot, error) {
	return domslot.NewSlot(b.ID, b.Day, b.Time, b.SlotsLeft)
}

func (b *SlotBuilder) MustBuildDomain(t *testing.T) *domslot.Slot {
	t.Helper()
	s, err := b.BuildDomain()
	require.NoError(t, err)
	return s
}

// BuildFields skips domain validation so tests can store malformed slots.
func (b *SlotBuilder) BuildFields() shared.Fields {
	return shared.Fields{
		converter.FieldDay:       b.Day,
		converter.FieldTime:      b.Time,
		converter.FieldSlotsLeft: b.SlotsLeft,
	}
}

func (b *SlotBuilder) BuildDocument() shared.Document {
	return shared.Document{ID: b.ID, Fields: b.BuildFields()}
}

func (b *SlotBuilder) BuildCreateRequestDTO() reqdto.CreateSlotRequest {
	left := b.SlotsLeft
	return reqdto.CreateSlotRequest{
		Day:       b.Day,
		Time:      b.Time,
		SlotsLeft: &left,
	}
}

// Fluent builder methods
func (b *SlotBuilder) WithID(id string) *SlotBuilder {
	b.ID = id
	return b
}

func (b *SlotBuilder) WithDay(day string) *SlotBuilder {
	b.Day = day
	return b
}

func (b *SlotBuilder) WithTime(tm string) *SlotBuilder {
	b.Time = tm
	return b
}

func (b *SlotBuilder) WithSlotsLeft(n int) *SlotBuilder {
	b.SlotsLeft = n
	return b
}

func (b *SlotBuilder) AsFull() *SlotBuilder {
	b.SlotsLeft = 0
	return b
}

func (b *SlotBuilder) AsLastSeat() *SlotBuilder {
	b.SlotsLeft = 1
	return b
}

// Putter is implemented by stores that accept caller-chosen ids.
type Putter interface {
	Put(ctx context.Context, collection, id string, fields shared.Fields) error
}

// Seed stores every builder under its own id.
func Seed(t *testing.T, store Putter, collection string, slots ...*SlotBuilder) {
	t.Helper()
	for _, s := range slots {
		require.NoError(t, store.Put(context.Background(), collection, s.ID, s.BuildFields()))
	}
}
