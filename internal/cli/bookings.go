package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

type BookingsListCmd struct{}

func (c *BookingsListCmd) Run(ctx *Context) error {
	cat, err := ctx.Catalog()
	if err != nil {
		return err
	}
	rctx, cancel := ctx.Timeout()
	defer cancel()
	records, err := cat.ListBookings(rctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No bookings found.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STUDENT", "DAY", "TIME", "SLOT", "BOOKED AT")
	for _, r := range records {
		bookedAt := ""
		if !r.BookedAt().IsZero() {
			bookedAt = r.BookedAt().Local().Format(time.DateTime)
		}
		t.Row(r.StudentName().String(), r.Day(), r.Time(), r.SlotID(), bookedAt)
	}
	fmt.Println(t.String())
	return nil
}

type BookingsExportCmd struct {
	File string `arg:"" type:"path" help:"Destination .xlsx file."`
}

func (c *BookingsExportCmd) Run(ctx *Context) error {
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
	n, err := cat.ExportBookings(rctx, f)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d booking(s) to %s\n", n, c.File)
	return nil
}
