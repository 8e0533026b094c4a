//go:build unit

package converter_test

import (
	"encoding/json"
	"testing"
	"time"

	"class-booking/internal/domain/slot"
	"class-booking/internal/infra/converter"
	"class-booking/internal/usecase/shared"
	"class-booking/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntField(t *testing.T) {
	cases := []struct {
		name    string
		raw     any
		want    int
		wantErr bool
	}{
		{name: "int", raw: 4, want: 4},
		{name: "int64", raw: int64(5), want: 5},
		{name: "float64 from JSON", raw: float64(6), want: 6},
		{name: "json.Number", raw: json.Number("7"), want: 7},
		{name: "numeric string", raw: "8", want: 8},
		{name: "fractional float", raw: 2.5, wantErr: true},
		{name: "non numeric string", raw: "many", wantErr: true},
		{name: "bool", raw: true, wantErr: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := converter.IntField(map[string]any{"n": c.raw}, "n")
			if c.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}

	t.Run("missing key", func(t *testing.T) {
		_, err := converter.IntField(map[string]any{}, "n")
		assert.ErrorContains(t, err, "missing")
	})
}

func TestSlotFromDocument(t *testing.T) {
	t.Run("decodes stored fields", func(t *testing.T) {
		doc := builder.NewSlotBuilder().WithID("abc").WithSlotsLeft(2).BuildDocument()
		doc.Fields[converter.FieldSlotsLeft] = float64(2)

		actual, err := converter.SlotFromDocument(doc)
		require.NoError(t, err)
		assert.Equal(t, "abc", actual.ID())
		assert.Equal(t, "Monday", actual.Day())
		assert.Equal(t, 2, actual.SlotsLeft().Int())
	})

	t.Run("rejects negative counts", func(t *testing.T) {
		doc := builder.NewSlotBuilder().WithSlotsLeft(-2).BuildDocument()

		_, err := converter.SlotFromDocument(doc)
		assert.ErrorIs(t, err, slot.ErrNegativeSlotsLeft)
	})

	t.Run("rejects missing day", func(t *testing.T) {
		doc := builder.NewSlotBuilder().BuildDocument()
		delete(doc.Fields, converter.FieldDay)

		_, err := converter.SlotFromDocument(doc)
		assert.Error(t, err)
	})
}

func TestSlotToFields(t *testing.T) {
	left, err := slot.NewSlotsLeft(9)
	require.NoError(t, err)

	got := converter.SlotToFields("Wed", "12:00", left)
	want := shared.Fields{"day": "Wed", "time": "12:00", "slots_left": 9}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SlotToFields mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, shared.Fields{"slots_left": 9}, converter.SlotsLeftPatch(left))
}

func TestBooking_RoundTrip(t *testing.T) {
	record, err := builder.NewBookingBuilder().BuildDomain()
	require.NoError(t, err)

	fields := converter.BookingToFields(record)
	actual, err := converter.BookingFromDocument(shared.Document{ID: "b1", Fields: fields})
	require.NoError(t, err)

	assert.Equal(t, "b1", actual.ID())
	assert.Equal(t, record.StudentName(), actual.StudentName())
	assert.Equal(t, record.SlotID(), actual.SlotID())
	assert.True(t, record.BookedAt().Equal(actual.BookedAt()))
}

func TestBookingFromDocument_LegacyRecord(t *testing.T) {
	// Legacy clients only wrote the name and the slot labels.
	doc := shared.Document{ID: "old", Fields: shared.Fields{
		"studentName": "Ken",
		"day":         "Thursday",
		"time":        "16:00",
	}}

	actual, err := converter.BookingFromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, "Ken", actual.StudentName().String())
	assert.Empty(t, actual.SlotID())
	assert.Equal(t, time.Time{}, actual.BookedAt())
}
