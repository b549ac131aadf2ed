package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/vsinha/jobshop/pkg/domain/services"
	"github.com/vsinha/jobshop/pkg/infrastructure/config"
	"github.com/vsinha/jobshop/pkg/infrastructure/metrics"
	"github.com/vsinha/jobshop/pkg/interfaces/cli/output"
)

// QuoteConfig holds configuration for the quote command.
// Empty rates fall back to the values in the config file.
type QuoteConfig struct {
	ConfigFile    string
	CatalogDir    string
	PartID        string
	Quantity      int64
	Dash          string
	LaborRate     string
	MachineRate   string
	MarkupPercent string
	Format        string
	OutputDir     string
	Verbose       bool
	Help          bool
}

// QuoteCommand prices an order of a part from the catalog
type QuoteCommand struct {
	config QuoteConfig
	out    io.Writer
}

// NewQuoteCommand creates a new quote command with the given configuration
func NewQuoteCommand(config QuoteConfig) *QuoteCommand {
	return &QuoteCommand{config: config, out: os.Stdout}
}

// Execute runs the quote command
func (c *QuoteCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	cfg, err := config.Load(c.config.ConfigFile)
	if err != nil {
		return err
	}
	rates, err := cfg.QuoteDefaults()
	if err != nil {
		return err
	}
	if err := c.applyRateFlags(&rates); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	catalog, part, err := loadPart(c.config.CatalogDir, c.config.PartID)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	raw, err := parseDash(c.config.Dash)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if c.config.Quantity <= 0 && len(raw) == 0 {
		return fmt.Errorf("validation error: quantity or dash quantities are required")
	}

	if c.config.Verbose {
		fmt.Fprintf(c.out, "💰 Pricing %s with labor %s, machine %s, markup %s%%\n\n",
			part.ID, rates.LaborRate, rates.MachineRate, rates.MarkupPercent)
	}

	quote := services.CalculateQuote(services.QuoteRequest{
		Part:           part,
		Quantity:       c.config.Quantity,
		DashQuantities: services.NormalizeDashQuantities(raw),
	}, services.InventoryPrices(catalog.Inventory), rates)
	metrics.RecordQuote(quote != nil)
	if quote == nil {
		return fmt.Errorf("part %s has no labor or material definition to quote", part.ID)
	}

	if c.config.Verbose {
		for _, line := range quote.Lines {
			if line.PriceMissing {
				fmt.Fprintf(c.out, "⚠️  No customer price for %s, costed at zero\n", line.InventoryID)
			}
		}
	}

	return output.Quote(c.out, quote, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
	})
}

func (c *QuoteCommand) applyRateFlags(rates *services.QuoteConfig) error {
	overrides := []struct {
		name  string
		value string
		dest  *decimal.Decimal
	}{
		{"labor-rate", c.config.LaborRate, &rates.LaborRate},
		{"machine-rate", c.config.MachineRate, &rates.MachineRate},
		{"markup", c.config.MarkupPercent, &rates.MarkupPercent},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		d, err := decimal.NewFromString(o.value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", o.name, o.value, err)
		}
		if d.IsNegative() {
			return fmt.Errorf("%s cannot be negative, got %s", o.name, o.value)
		}
		*o.dest = d
	}
	return nil
}

func (c *QuoteCommand) showHelp() {
	fmt.Fprintf(c.out, `jobshop quote - Price an order of a part

USAGE:
    jobshop quote -catalog <dir> -part <id> (-qty <n> | -dash <suffix=qty,...>) [options]

OPTIONS:
    -config <file>        Config file with default rates (default: ./configs/config.yaml)
    -catalog <dir>        Catalog directory containing parts.csv and inventory.csv
    -part <id>            Part to quote
    -qty <n>              Order quantity (complete sets for kitted parts)
    -dash <list>          Explicit quantities per variant, overrides -qty split
    -labor-rate <rate>    Labor rate per hour
    -machine-rate <rate>  Machine rate per hour (0 = labor rate)
    -markup <percent>     Markup percent applied to the subtotal
    -format <fmt>         Output format: text, json, csv (default: text)
    -output <dir>         Write json or csv results to this directory
    -verbose              Show rates and unpriced materials
    -help                 Show this help message

EXAMPLES:
    jobshop quote -catalog ./example/catalog -part BRKT-100 -qty 5 -labor-rate 65 -markup 15
`)
}
