package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"class-booking/internal/domain/slot"
	"class-booking/internal/infra/converter"
	"class-booking/internal/pkg/errs"

	"github.com/xuri/excelize/v2"
)

const (
	slotsSheet    = "Slots"
	bookingsSheet = "Bookings"
)

var (
	slotsHeader    = []any{"Day", "Time", "Slots Left"}
	bookingsHeader = []any{"Student", "Day", "Time", "Slot ID", "Booked At"}
)

// ImportSlots reads the first sheet; row 1 is a header. Rows that fail
// validation are skipped and reported, the rest are inserted one by one.
func (c *catalogImpl) ImportSlots(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "open workbook"), errs.ErrDomainValidation)
	}
	defer func() {
		if err := f.Close(); err != nil {
			c.logger.Warn("failed to close workbook", slog.String("error", err.Error()))
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errs.Mark(errs.New("workbook does not contain any sheets"), errs.ErrDomainValidation)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errs.Mark(errs.Wrapf(err, "read sheet %s", sheet), errs.ErrDomainValidation)
	}

	result := &ImportResult{Skipped: []RowError{}}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		rowNum := i + 1
		if isBlankRow(row) {
			continue
		}

		s, err := c.parseSlotRow(row)
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, err := c.docs.Insert(ctx, c.slotsCollection,
			converter.SlotToFields(s.Day(), s.Time(), s.SlotsLeft())); err != nil {
			c.logger.Error("failed to insert imported slot",
				slog.Int("row", rowNum),
				slog.String("error", err.Error()))
			result.Skipped = append(result.Skipped, RowError{Row: rowNum, Reason: "store write failed"})
			continue
		}
		result.Imported++
	}

	c.logger.Info("slots imported",
		slog.Int("imported", result.Imported),
		slog.Int("skipped", len(result.Skipped)))
	return result, nil
}

func (c *catalogImpl) parseSlotRow(row []string) (*slot.Slot, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	in := slotInput{Day: cell(0), Time: cell(1)}
	n, err := strconv.Atoi(cell(2))
	if err != nil {
		return nil, fmt.Errorf("slots left %q is not a number", cell(2))
	}
	in.SlotsLeft = n
	if err := c.validate.Struct(in); err != nil {
		return nil, err
	}
	return slot.NewSlot("import", in.Day, in.Time, in.SlotsLeft)
}

func (c *catalogImpl) ExportSlots(ctx context.Context, w io.Writer) (int, error) {
	slots, err := c.ListSlots(ctx)
	if err != nil {
		return 0, err
	}
	rows := make([][]any, 0, len(slots))
	for _, s := range slots {
		rows = append(rows, []any{s.Day(), s.Time(), s.SlotsLeft().Int()})
	}
	if err := writeWorkbook(w, slotsSheet, slotsHeader, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (c *catalogImpl) ExportBookings(ctx context.Context, w io.Writer) (int, error) {
	records, err := c.ListBookings(ctx)
	if err != nil {
		return 0, err
	}
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		bookedAt := ""
		if !r.BookedAt().IsZero() {
			bookedAt = r.BookedAt().Format(time.RFC3339)
		}
		rows = append(rows, []any{r.StudentName().String(), r.Day(), r.Time(), r.SlotID(), bookedAt})
	}
	if err := writeWorkbook(w, bookingsSheet, bookingsHeader, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func writeWorkbook(w io.Writer, sheet string, header []any, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return errs.Wrap(err, "rename sheet")
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errs.Wrap(err, "write header")
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errs.Wrap(err, "cell name")
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errs.Wrapf(err, "write row %d", i+2)
		}
	}
	if err := f.Write(w); err != nil {
		return errs.Wrap(err, "write workbook")
	}
	return nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
