//go:build unit

package catalog_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"class-booking/internal/infra/converter"
	"class-booking/internal/pkg/errs"
	"class-booking/internal/usecase/catalog"
	"class-booking/internal/usecase/shared"
	"class-booking/tests/common/builder"
	"class-booking/tests/common/docstoretest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const (
	slotsColl    = "class"
	bookingsColl = "bookings"
)

func newCatalog(t *testing.T) (catalog.Catalog, *docstoretest.Faulty) {
	t.Helper()
	docs := docstoretest.NewFaulty()
	return catalog.NewCatalog(docs, slotsColl, bookingsColl, nil), docs
}

// workbook builds an .xlsx file with one sheet holding rows.
func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))
	return buf
}

func readSheet(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestCatalog_CreateSlot(t *testing.T) {
	t.Run("stores a trimmed slot", func(t *testing.T) {
		cat, docs := newCatalog(t)

		s, err := cat.CreateSlot(context.Background(), " Monday ", "10:00", 4)
		require.NoError(t, err)
		assert.NotEmpty(t, s.ID())
		assert.Equal(t, "Monday", s.Day())

		stored, err := docs.ListAll(context.Background(), slotsColl)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, s.ID(), stored[0].ID)
		assert.Equal(t, "Monday", stored[0].Fields[converter.FieldDay])
	})

	cases := []struct {
		name      string
		day, tm   string
		slotsLeft int
	}{
		{name: "negative count", day: "Mon", tm: "10:00", slotsLeft: -1},
		{name: "missing day", day: "", tm: "10:00", slotsLeft: 1},
		{name: "blank time", day: "Mon", tm: "   ", slotsLeft: 1},
		{name: "day too long", day: strings.Repeat("x", 65), tm: "10:00", slotsLeft: 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cat, docs := newCatalog(t)

			_, err := cat.CreateSlot(context.Background(), c.day, c.tm, c.slotsLeft)
			assert.True(t, errs.Is(err, errs.ErrDomainValidation), "got %v", err)
			inserts, _ := docs.Writes()
			assert.Zero(t, inserts)
		})
	}

	t.Run("store failure", func(t *testing.T) {
		cat, docs := newCatalog(t)
		docs.FailInsert(errors.New("offline"))

		_, err := cat.CreateSlot(context.Background(), "Mon", "10:00", 1)
		assert.True(t, errs.Is(err, errs.ErrStoreOperationFailed), "got %v", err)
	})
}

func TestCatalog_ListSlots(t *testing.T) {
	cat, docs := newCatalog(t)
	builder.Seed(t, docs, slotsColl,
		builder.NewSlotBuilder().WithID("a"),
		builder.NewSlotBuilder().WithID("broken").WithSlotsLeft(-1),
		builder.NewSlotBuilder().WithID("b").WithDay("Friday"),
	)

	slots, err := cat.ListSlots(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "a", slots[0].ID())
	assert.Equal(t, "b", slots[1].ID())

	docs.FailList(errors.New("offline"))
	_, err = cat.ListSlots(context.Background())
	var fetchErr *shared.FetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func TestCatalog_ImportSlots(t *testing.T) {
	cat, docs := newCatalog(t)
	file := workbook(t,
		[]any{"Day", "Time", "Slots Left"},
		[]any{"Monday", "10:00", 3},
		[]any{"Tuesday", "18:30", "0"},
		[]any{"", "", ""},
		[]any{"Wednesday", "09:00", "many"},
		[]any{"Thursday", "", 2},
		[]any{"Friday", "07:00", -2},
	)

	res, err := cat.ImportSlots(context.Background(), file)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Imported)
	require.Len(t, res.Skipped, 3)
	assert.Equal(t, 5, res.Skipped[0].Row)
	assert.Contains(t, res.Skipped[0].Reason, "not a number")
	assert.Equal(t, 6, res.Skipped[1].Row)
	assert.Equal(t, 7, res.Skipped[2].Row)

	slots, err := cat.ListSlots(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "Tuesday", slots[1].Day())
	assert.False(t, slots[1].CanBook())

	inserts, _ := docs.Writes()
	assert.Equal(t, 2, inserts)
}

func TestCatalog_ImportSlots_Errors(t *testing.T) {
	t.Run("not a workbook", func(t *testing.T) {
		cat, _ := newCatalog(t)

		_, err := cat.ImportSlots(context.Background(), strings.NewReader("day,time,slots\n"))
		assert.True(t, errs.Is(err, errs.ErrDomainValidation), "got %v", err)
	})

	t.Run("store failures are reported per row", func(t *testing.T) {
		cat, docs := newCatalog(t)
		docs.FailInsert(errors.New("offline"))

		res, err := cat.ImportSlots(context.Background(), workbook(t,
			[]any{"Day", "Time", "Slots Left"},
			[]any{"Monday", "10:00", 3},
		))
		require.NoError(t, err)
		assert.Zero(t, res.Imported)
		require.Len(t, res.Skipped, 1)
		assert.Equal(t, "store write failed", res.Skipped[0].Reason)
	})
}

func TestCatalog_ExportSlots(t *testing.T) {
	cat, docs := newCatalog(t)
	builder.Seed(t, docs, slotsColl,
		builder.NewSlotBuilder().WithID("a").WithSlotsLeft(2),
		builder.NewSlotBuilder().WithID("b").WithDay("Friday").WithTime("07:00").AsFull(),
	)

	buf := &bytes.Buffer{}
	n, err := cat.ExportSlots(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows := readSheet(t, buf.Bytes(), "Slots")
	assert.Equal(t, [][]string{
		{"Day", "Time", "Slots Left"},
		{"Monday", "10:00", "2"},
		{"Friday", "07:00", "0"},
	}, rows)

	// an export can be imported again
	again, _ := newCatalog(t)
	res, err := again.ImportSlots(context.Background(), bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Empty(t, res.Skipped)
}

func TestCatalog_Bookings(t *testing.T) {
	cat, docs := newCatalog(t)
	record, err := builder.NewBookingBuilder().BuildDomain()
	require.NoError(t, err)
	_, err = docs.Insert(context.Background(), bookingsColl, converter.BookingToFields(record))
	require.NoError(t, err)
	_, err = docs.Insert(context.Background(), bookingsColl, shared.Fields{"studentName": "Legacy", "day": "Sunday", "time": "08:00"})
	require.NoError(t, err)
	_, err = docs.Insert(context.Background(), bookingsColl, shared.Fields{"day": "no name"})
	require.NoError(t, err)

	records, err := cat.ListBookings(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Ada Lovelace", records[0].StudentName().String())
	assert.Equal(t, "Legacy", records[1].StudentName().String())

	buf := &bytes.Buffer{}
	n, err := cat.ExportBookings(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows := readSheet(t, buf.Bytes(), "Bookings")
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Student", "Day", "Time", "Slot ID", "Booked At"}, rows[0])
	assert.Equal(t, []string{"Ada Lovelace", "Monday", "10:00", "slot-mon-10", record.BookedAt().Format(time.RFC3339)}, rows[1])
	require.GreaterOrEqual(t, len(rows[2]), 3)
	assert.Equal(t, []string{"Legacy", "Sunday", "08:00"}, rows[2][:3])
}
