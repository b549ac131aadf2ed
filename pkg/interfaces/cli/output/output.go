package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/vsinha/jobshop/pkg/application/dto"
	"github.com/vsinha/jobshop/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format    string // text, json or csv
	OutputDir string // csv files and json are written here when set
	Verbose   bool
}

// Calculation writes an allocation and material requirement report
func Calculation(w io.Writer, result dto.CalculationResult, config Config) error {
	switch config.Format {
	case "", "text":
		return calculationText(w, result)
	case "json":
		return writeJSON(w, result, config, "calculation.json")
	case "csv":
		return writeCSV(w, config, "requirements.csv", requirementRows(result.Requirements))
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// Quote writes a customer quote
func Quote(w io.Writer, quote *entities.Quote, config Config) error {
	switch config.Format {
	case "", "text":
		return quoteText(w, quote)
	case "json":
		return writeJSON(w, quote, config, "quote.json")
	case "csv":
		return writeCSV(w, config, "quote_lines.csv", quoteRows(quote))
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// Inventory writes an inventory snapshot
func Inventory(w io.Writer, snapshots []entities.InventorySnapshot, config Config) error {
	switch config.Format {
	case "", "text":
		return inventoryText(w, snapshots)
	case "json":
		return writeJSON(w, snapshots, config, "inventory.json")
	case "csv":
		return writeCSV(w, config, "inventory.csv", inventoryRows(snapshots))
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func calculationText(w io.Writer, result dto.CalculationResult) error {
	fmt.Fprintf(w, "📊 Calculation for %s\n", result.PartID)
	fmt.Fprintf(w, "======================\n\n")

	suffixes := sortedKeys(result.DashQuantities)
	if len(suffixes) == 0 {
		fmt.Fprintln(w, "No variants requested.")
		return nil
	}

	fmt.Fprintf(w, "🔧 Variants:\n")
	fmt.Fprintf(w, "%-8s %-8s %-12s %-12s %-12s\n", "Dash", "Qty", "Labor/Unit", "CNC/Unit", "Print/Unit")
	fmt.Fprintf(w, "%-8s %-8s %-12s %-12s %-12s\n", "--------", "--------", "------------", "------------", "------------")
	for _, suffix := range suffixes {
		machine := result.Allocation.MachinePerUnit[suffix]
		fmt.Fprintf(w, "%-8s %-8d %-12s %-12s %-12s\n",
			suffix,
			result.DashQuantities[suffix],
			result.Allocation.LaborPerUnit[suffix].StringFixed(2),
			machine.CNCHoursPerUnit.StringFixed(2),
			machine.Printer3DHoursPerUnit.StringFixed(2))
	}
	fmt.Fprintln(w)

	totals := result.Allocation.Totals
	fmt.Fprintf(w, "Labor Hours: %s\n", totals.LaborHours.StringFixed(2))
	fmt.Fprintf(w, "CNC Hours: %s\n", totals.CNCHours.StringFixed(2))
	fmt.Fprintf(w, "3D Print Hours: %s\n", totals.Printer3DHours.StringFixed(2))
	fmt.Fprintf(w, "Set Multiplier: %d\n\n", result.SetMultiplier)

	if len(result.Requirements) > 0 {
		fmt.Fprintf(w, "📦 Material Requirements:\n")
		fmt.Fprintf(w, "%-15s %-12s %-6s\n", "Inventory", "Quantity", "Unit")
		fmt.Fprintf(w, "%-15s %-12s %-6s\n", "---------------", "------------", "------")
		for _, id := range result.Requirements.InventoryIDs() {
			req := result.Requirements[id]
			fmt.Fprintf(w, "%-15s %-12s %-6s\n", id, req.Quantity.String(), req.Unit)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func quoteText(w io.Writer, quote *entities.Quote) error {
	fmt.Fprintf(w, "💰 Quote for %s x %d\n", quote.PartID, quote.OrderQuantity)
	fmt.Fprintf(w, "======================\n\n")

	if len(quote.Lines) > 0 {
		fmt.Fprintf(w, "%-15s %-12s %-6s %-10s %-10s\n", "Inventory", "Quantity", "Unit", "Price", "Cost")
		fmt.Fprintf(w, "%-15s %-12s %-6s %-10s %-10s\n", "---------------", "------------", "------", "----------", "----------")
		for _, line := range quote.Lines {
			price := line.UnitPrice.StringFixed(2)
			if line.PriceMissing {
				price = "n/a"
			}
			fmt.Fprintf(w, "%-15s %-12s %-6s %-10s %-10s\n",
				line.InventoryID, line.Quantity.String(), line.Unit, price, line.Cost.StringFixed(2))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Materials: %s\n", quote.MaterialCostCustomer.StringFixed(2))
	fmt.Fprintf(w, "Labor: %s h = %s\n", quote.LaborHours.StringFixed(2), quote.LaborCost.StringFixed(2))
	fmt.Fprintf(w, "Machine: %s h = %s\n", quote.MachineHours.StringFixed(2), quote.MachineCost.StringFixed(2))
	fmt.Fprintf(w, "Subtotal: %s\n", quote.Subtotal.StringFixed(2))
	fmt.Fprintf(w, "Markup (%s%%): %s\n", quote.MarkupPercent.String(), quote.MarkupAmount.StringFixed(2))
	fmt.Fprintf(w, "Total: %s\n", quote.Total.StringFixed(2))
	fmt.Fprintf(w, "Unit Price: %s\n", quote.UnitPrice.StringFixed(2))
	return nil
}

func inventoryText(w io.Writer, snapshots []entities.InventorySnapshot) error {
	fmt.Fprintf(w, "📦 Inventory\n")
	fmt.Fprintf(w, "======================\n\n")
	fmt.Fprintf(w, "%-15s %-10s %-10s %-10s %-8s\n", "Inventory", "In Stock", "Allocated", "Available", "Reorder")
	fmt.Fprintf(w, "%-15s %-10s %-10s %-10s %-8s\n", "---------------", "----------", "----------", "----------", "--------")
	for _, s := range snapshots {
		reorder := ""
		if s.NeedsReorder {
			reorder = "⚠️"
		}
		fmt.Fprintf(w, "%-15s %-10s %-10s %-10s %-8s\n",
			s.Item.ID, s.Item.InStock.String(), s.Allocated.String(), s.DisplayAvailable.String(), reorder)
	}
	return nil
}

func writeJSON(w io.Writer, value any, config Config, filename string) error {
	jsonData, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		_, err = fmt.Fprintln(w, string(jsonData))
		return err
	}

	path, err := outputPath(config, filename)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(w, "💾 JSON results saved to: %s\n", path)
	}
	return nil
}

// writeCSV writes rows to w, or to filename under the output directory when one is set
func writeCSV(w io.Writer, config Config, filename string, rows [][]string) error {
	target := w
	if config.OutputDir != "" {
		path, err := outputPath(config, filename)
		if err != nil {
			return err
		}
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create CSV file: %w", err)
		}
		defer file.Close()
		target = file
		if config.Verbose {
			fmt.Fprintf(w, "💾 CSV results saved to: %s\n", path)
		}
	}

	writer := csv.NewWriter(target)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

func outputPath(config Config, filename string) (string, error) {
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return filepath.Join(config.OutputDir, filename), nil
}

func requirementRows(requirements entities.Requirements) [][]string {
	rows := [][]string{{"inventory_id", "quantity", "unit"}}
	for _, id := range requirements.InventoryIDs() {
		req := requirements[id]
		rows = append(rows, []string{id, req.Quantity.String(), req.Unit})
	}
	return rows
}

func quoteRows(quote *entities.Quote) [][]string {
	rows := [][]string{{"inventory_id", "quantity", "unit", "unit_price", "cost", "price_missing"}}
	for _, line := range quote.Lines {
		rows = append(rows, []string{
			line.InventoryID,
			line.Quantity.String(),
			line.Unit,
			line.UnitPrice.String(),
			line.Cost.String(),
			fmt.Sprint(line.PriceMissing),
		})
	}
	return rows
}

func inventoryRows(snapshots []entities.InventorySnapshot) [][]string {
	rows := [][]string{{"inventory_id", "in_stock", "allocated", "available", "needs_reorder"}}
	for _, s := range snapshots {
		rows = append(rows, []string{
			s.Item.ID,
			s.Item.InStock.String(),
			s.Allocated.String(),
			s.Available.String(),
			fmt.Sprint(s.NeedsReorder),
		})
	}
	return rows
}

func sortedKeys(dash entities.DashQuantities) []string {
	keys := make([]string, 0, len(dash))
	for k := range dash {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
