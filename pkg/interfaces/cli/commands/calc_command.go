package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vsinha/jobshop/pkg/application/services/calculation"
	"github.com/vsinha/jobshop/pkg/domain/services"
	"github.com/vsinha/jobshop/pkg/interfaces/cli/output"
)

// CalcConfig holds configuration for the calc command
type CalcConfig struct {
	CatalogDir string
	PartID     string
	Dash       string // e.g. "-01=2,-02=4"
	Format     string
	OutputDir  string
	Verbose    bool
	Help       bool
}

// CalcCommand computes labor, machine and material figures for a part
type CalcCommand struct {
	config CalcConfig
	out    io.Writer
}

// NewCalcCommand creates a new calc command with the given configuration
func NewCalcCommand(config CalcConfig) *CalcCommand {
	return &CalcCommand{config: config, out: os.Stdout}
}

// Execute runs the calc command
func (c *CalcCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	_, part, err := loadPart(c.config.CatalogDir, c.config.PartID)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	raw, err := parseDash(c.config.Dash)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintf(c.out, "🔍 Validating part %s...\n", part.ID)
	}
	validation := services.NewPartValidator().ValidatePart(part)
	if !validation.Valid() {
		return fmt.Errorf("part validation failed: %s", strings.Join(validation.Errors, "; "))
	}
	if c.config.Verbose {
		for _, warning := range validation.Warnings {
			fmt.Fprintf(c.out, "⚠️  %s\n", warning)
		}
		fmt.Fprintln(c.out)
	}

	result := calculation.Calculate(part, raw)
	return output.Calculation(c.out, result, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
	})
}

func (c *CalcCommand) showHelp() {
	fmt.Fprintf(c.out, `jobshop calc - Labor, machine and material figures for a part

USAGE:
    jobshop calc -catalog <dir> -part <id> -dash <suffix=qty,...> [options]

OPTIONS:
    -catalog <dir>    Catalog directory containing parts.csv and related files
    -part <id>        Part to calculate
    -dash <list>      Requested quantities per variant, e.g. -01=2,-02=4
    -format <fmt>     Output format: text, json, csv (default: text)
    -output <dir>     Write json or csv results to this directory
    -verbose          Show validation warnings
    -help             Show this help message

EXAMPLES:
    jobshop calc -catalog ./example/catalog -part BRKT-100 -dash -01=2,-02=4
    jobshop calc -catalog ./example/catalog -part PANEL-200 -dash 01=3 -format json
`)
}
