package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"class-booking/internal/cli"
	"class-booking/internal/pkg/config"
)

var CLI struct {
	cli.Globals

	Version kong.VersionFlag

	Migrate cli.MigrateCmd `cmd:"" help:"Apply the store schema."`
	Tui     cli.TuiCmd     `cmd:"" help:"Launch the interactive booking screen." default:"1"`
	Book    cli.BookCmd    `cmd:"" help:"Book a seat in a class."`
	Slots   struct {
		List   cli.SlotsListCmd   `cmd:"" help:"List class slots."`
		Add    cli.SlotsAddCmd    `cmd:"" help:"Add a class slot."`
		Import cli.SlotsImportCmd `cmd:"" help:"Import slots from a spreadsheet."`
		Export cli.SlotsExportCmd `cmd:"" help:"Export slots to a spreadsheet."`
	} `cmd:"" help:"Manage class slots."`
	Bookings struct {
		List   cli.BookingsListCmd   `cmd:"" help:"List booking records."`
		Export cli.BookingsExportCmd `cmd:"" help:"Export booking records to a spreadsheet."`
	} `cmd:"" help:"Inspect booking records."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("classctl"),
		kong.Description("Browse and book class slots"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	cfg, err := config.LoadCLIConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	CLI.Globals.Apply(&cfg)

	logger, logCloser := cli.NewLogger(cli.LoggerOptions{
		Debug: CLI.Debug,
		File:  CLI.LogFile,
		Quiet: kctx.Command() == "tui",
	})
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := cli.NewContext(ctx, cfg, logger)
	err = kctx.Run(appCtx)
	if closeErr := appCtx.Close(); closeErr != nil {
		logger.Warn("failed to close store", "error", closeErr)
	}
	if err != nil {
		stop()
		logCloser.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
