package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vsinha/jobshop/pkg/interfaces/cli/commands"
)

// Command is a parsed subcommand
type Command interface {
	Execute(ctx context.Context) error
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd, err := parse(os.Args[1], os.Args[2:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parse(name string, args []string) (Command, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)

	switch name {
	case "calc":
		var config commands.CalcConfig
		fs.StringVar(&config.CatalogDir, "catalog", "", "Catalog directory containing parts.csv")
		fs.StringVar(&config.PartID, "part", "", "Part to calculate")
		fs.StringVar(&config.Dash, "dash", "", "Quantities per variant, e.g. -01=2,-02=4")
		fs.StringVar(&config.Format, "format", "text", "Output format: text, json, csv")
		fs.StringVar(&config.OutputDir, "output", "", "Output directory for results (optional)")
		fs.BoolVar(&config.Verbose, "verbose", false, "Enable verbose output")
		fs.BoolVar(&config.Help, "help", false, "Show help message")
		fs.Parse(args)
		return commands.NewCalcCommand(config), nil

	case "quote":
		var config commands.QuoteConfig
		fs.StringVar(&config.ConfigFile, "config", "", "Config file with default rates")
		fs.StringVar(&config.CatalogDir, "catalog", "", "Catalog directory containing parts.csv")
		fs.StringVar(&config.PartID, "part", "", "Part to quote")
		fs.Int64Var(&config.Quantity, "qty", 0, "Order quantity")
		fs.StringVar(&config.Dash, "dash", "", "Quantities per variant, overrides -qty split")
		fs.StringVar(&config.LaborRate, "labor-rate", "", "Labor rate per hour")
		fs.StringVar(&config.MachineRate, "machine-rate", "", "Machine rate per hour")
		fs.StringVar(&config.MarkupPercent, "markup", "", "Markup percent")
		fs.StringVar(&config.Format, "format", "text", "Output format: text, json, csv")
		fs.StringVar(&config.OutputDir, "output", "", "Output directory for results (optional)")
		fs.BoolVar(&config.Verbose, "verbose", false, "Enable verbose output")
		fs.BoolVar(&config.Help, "help", false, "Show help message")
		fs.Parse(args)
		return commands.NewQuoteCommand(config), nil

	case "inventory":
		var config commands.InventoryConfig
		fs.StringVar(&config.ConfigFile, "config", "", "Config file")
		fs.StringVar(&config.CatalogDir, "catalog", "", "Catalog directory containing inventory.csv")
		fs.StringVar(&config.Format, "format", "text", "Output format: text, json, csv")
		fs.StringVar(&config.OutputDir, "output", "", "Output directory for results (optional)")
		fs.BoolVar(&config.Verbose, "verbose", false, "Enable verbose output")
		fs.BoolVar(&config.Help, "help", false, "Show help message")
		fs.Parse(args)
		return commands.NewInventoryCommand(config), nil

	case "serve":
		var config commands.ServeConfig
		fs.StringVar(&config.ConfigFile, "config", "", "Config file")
		fs.StringVar(&config.CatalogDir, "catalog", "", "Catalog directory to load")
		fs.StringVar(&config.Addr, "addr", "", "Listen address")
		fs.BoolVar(&config.Help, "help", false, "Show help message")
		fs.Parse(args)
		return commands.NewServeCommand(config), nil

	default:
		usage()
		return nil, fmt.Errorf("unknown command %q", name)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `jobshop - Job materials and inventory reconciliation

USAGE:
    jobshop <command> [options]

COMMANDS:
    calc        Labor, machine and material figures for a part
    quote       Price an order of a part
    inventory   Stock, allocation and reorder report for a catalog
    serve       Run the HTTP API

Run 'jobshop <command> -help' for command options.
`)
}
