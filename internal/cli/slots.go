package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"class-booking/internal/domain/slot"
)

type SlotsListCmd struct{}

func (c *SlotsListCmd) Run(ctx *Context) error {
	cat, err := ctx.Catalog()
	if err != nil {
		return err
	}
	rctx, cancel := ctx.Timeout()
	defer cancel()
	slots, err := cat.ListSlots(rctx)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Println("No slots found.")
		return nil
	}
	fmt.Println(renderSlots(slots))
	return nil
}

func renderSlots(slots []*slot.Slot) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "DAY", "TIME", "LEFT", "STATUS")
	for _, s := range slots {
		status := "Book Now"
		if !s.CanBook() {
			status = "Fully Booked"
		}
		t.Row(s.ID(), s.Day(), s.Time(), strconv.Itoa(s.SlotsLeft().Int()), status)
	}
	return t.String()
}

type SlotsAddCmd struct {
	Day       string `arg:"" help:"Day label, e.g. Monday."`
	Time      string `arg:"" help:"Time label, e.g. 10:00."`
	SlotsLeft int    `arg:"" help:"Seats available."`
}

func (c *SlotsAddCmd) Run(ctx *Context) error {
	cat, err := ctx.Catalog()
	if err != nil {
		return err
	}
	rctx, cancel := ctx.Timeout()
	defer cancel()
	s, err := cat.CreateSlot(rctx, c.Day, c.Time, c.SlotsLeft)
	if err != nil {
		return err
	}
	fmt.Printf("Added slot %s (%s %s, %d left)\n", s.ID(), s.Day(), s.Time(), s.SlotsLeft().Int())
	return nil
}

type SlotsImportCmd struct {
	File string `arg:"" type:"existingfile" help:"Spreadsheet with Day, Time and Slots Left columns."`
}

func (c *SlotsImportCmd) Run(ctx *Context) error {
	cat, err := ctx.Catalog()
	if err != nil {
		return err
	}
	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.File, err)
	}
	defer f.Close()

	rctx, cancel := ctx.Timeout()
	defer cancel()
	res, err := cat.ImportSlots(rctx, f)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d slot(s).\n", res.Imported)
	for _, skipped := range res.Skipped {
		fmt.Printf("  row %d skipped: %s\n", skipped.Row, skipped.Reason)
	}
	return nil
}

type SlotsExportCmd struct {
	File string `arg:"" type:"path" help:"Destination .xlsx file."`
}

func (c *SlotsExportCmd) Run(ctx *Context) error {
	cat, err := ctx.Catalog()
	if err != nil {
		return err
	}
	f, err := os.Create(c.File)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", c.File, err)
	}
	defer f.Close()

	rctx, cancel := ctx.Timeout()
	defer cancel()
	n, err := cat.ExportSlots(rctx, f)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d slot(s) to %s\n", n, c.File)
	return nil
}
