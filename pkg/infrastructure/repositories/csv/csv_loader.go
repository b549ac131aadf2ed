package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vsinha/jobshop/pkg/domain/entities"
)

// Catalog file names inside a catalog directory. Only parts.csv is required.
const (
	PartsFile          = "parts.csv"
	VariantsFile       = "variants.csv"
	MaterialsFile      = "materials.csv"
	SetCompositionFile = "set_composition.csv"
	InventoryFile      = "inventory.csv"
	JobsFile           = "jobs.csv"
)

var (
	partsHeader          = []string{"part_id", "name", "labor_hours", "requires_cnc", "cnc_time_hours", "requires_3d_print", "printer_3d_time_hours"}
	variantsHeader       = []string{"part_id", "variant_suffix", "labor_hours"}
	materialsHeader      = []string{"part_id", "variant_suffix", "inventory_id", "quantity_per_unit", "unit", "usage_type"}
	setCompositionHeader = []string{"part_id", "variant_suffix", "units_per_set"}
	inventoryHeader      = []string{"inventory_id", "name", "unit", "in_stock", "disposed", "on_order", "reorder_point", "customer_price"}
	jobsHeader           = []string{"job_id", "name", "part_id", "status", "dash_quantities"}
)

// Catalog holds the parts, inventory and jobs read from a catalog directory
type Catalog struct {
	Parts     map[string]*entities.Part
	Inventory []entities.InventoryItem
	Jobs      []entities.Job
}

// Part returns a part by id
func (c *Catalog) Part(id string) (*entities.Part, bool) {
	part, ok := c.Parts[id]
	return part, ok
}

// PartIDs returns the part ids in sorted order
func (c *Catalog) PartIDs() []string {
	ids := make([]string, 0, len(c.Parts))
	for id := range c.Parts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Loader handles loading catalog data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadCatalog reads every catalog file present in dir
func (l *Loader) LoadCatalog(dir string) (*Catalog, error) {
	parts, err := l.LoadParts(filepath.Join(dir, PartsFile))
	if err != nil {
		return nil, err
	}

	catalog := &Catalog{Parts: make(map[string]*entities.Part, len(parts))}
	for _, part := range parts {
		if _, dup := catalog.Parts[part.ID]; dup {
			return nil, fmt.Errorf("parts CSV: duplicate part_id %s", part.ID)
		}
		catalog.Parts[part.ID] = part
	}

	if err := l.loadVariants(filepath.Join(dir, VariantsFile), catalog); err != nil {
		return nil, err
	}
	if err := l.loadMaterials(filepath.Join(dir, MaterialsFile), catalog); err != nil {
		return nil, err
	}
	if err := l.loadSetComposition(filepath.Join(dir, SetCompositionFile), catalog); err != nil {
		return nil, err
	}

	inventory, err := l.LoadInventory(filepath.Join(dir, InventoryFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	catalog.Inventory = inventory

	jobs, err := l.LoadJobs(filepath.Join(dir, JobsFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	catalog.Jobs = jobs

	return catalog, nil
}

// LoadParts loads part headers from a CSV file
func (l *Loader) LoadParts(filename string) ([]*entities.Part, error) {
	rows, err := readRows(filename, "parts", partsHeader, true)
	if err != nil {
		return nil, err
	}

	parts := make([]*entities.Part, 0, len(rows))
	for i, record := range rows {
		part, err := parsePart(record)
		if err != nil {
			return nil, fmt.Errorf("parts CSV row %d: %w", i+2, err)
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// LoadInventory loads inventory items from a CSV file
func (l *Loader) LoadInventory(filename string) ([]entities.InventoryItem, error) {
	rows, err := readRows(filename, "inventory", inventoryHeader, false)
	if err != nil {
		return nil, err
	}

	items := make([]entities.InventoryItem, 0, len(rows))
	for i, record := range rows {
		item, err := parseInventoryItem(record)
		if err != nil {
			return nil, fmt.Errorf("inventory CSV row %d: %w", i+2, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// LoadJobs loads jobs from a CSV file.
// dash_quantities is a ;-separated list of suffix=quantity pairs and may be blank.
func (l *Loader) LoadJobs(filename string) ([]entities.Job, error) {
	rows, err := readRows(filename, "jobs", jobsHeader, false)
	if err != nil {
		return nil, err
	}

	jobs := make([]entities.Job, 0, len(rows))
	for i, record := range rows {
		status, err := entities.ParseJobStatus(record[3])
		if err != nil {
			return nil, fmt.Errorf("jobs CSV row %d: %w", i+2, err)
		}
		if strings.TrimSpace(record[0]) == "" {
			return nil, fmt.Errorf("jobs CSV row %d: job_id cannot be empty", i+2)
		}
		dash, err := parseJobDash(record[4])
		if err != nil {
			return nil, fmt.Errorf("jobs CSV row %d: %w", i+2, err)
		}
		jobs = append(jobs, entities.Job{
			ID:             strings.TrimSpace(record[0]),
			Name:           record[1],
			PartID:         strings.TrimSpace(record[2]),
			Status:         status,
			DashQuantities: dash,
		})
	}
	return jobs, nil
}

func (l *Loader) loadVariants(filename string, catalog *Catalog) error {
	rows, err := readRows(filename, "variants", variantsHeader, false)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	for i, record := range rows {
		part, err := lookupPart(catalog, record[0])
		if err != nil {
			return fmt.Errorf("variants CSV row %d: %w", i+2, err)
		}
		suffix := entities.CanonicalSuffix(record[1])
		if suffix == "" {
			return fmt.Errorf("variants CSV row %d: variant_suffix cannot be empty", i+2)
		}

		variant := entities.PartVariant{
			ID:            part.ID + suffix,
			PartID:        part.ID,
			VariantSuffix: suffix,
		}
		if strings.TrimSpace(record[2]) != "" {
			labor, err := parseDecimal("labor_hours", record[2])
			if err != nil {
				return fmt.Errorf("variants CSV row %d: %w", i+2, err)
			}
			variant.LaborHours = &labor
		}
		part.Variants = append(part.Variants, variant)
	}
	return nil
}

func (l *Loader) loadMaterials(filename string, catalog *Catalog) error {
	rows, err := readRows(filename, "materials", materialsHeader, false)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	for i, record := range rows {
		part, err := lookupPart(catalog, record[0])
		if err != nil {
			return fmt.Errorf("materials CSV row %d: %w", i+2, err)
		}
		qty, err := parseDecimal("quantity_per_unit", record[3])
		if err != nil {
			return fmt.Errorf("materials CSV row %d: %w", i+2, err)
		}
		line, err := entities.NewMaterialLine(strings.TrimSpace(record[2]), qty, strings.TrimSpace(record[4]), entities.UsageType(strings.ToLower(strings.TrimSpace(record[5]))))
		if err != nil {
			return fmt.Errorf("materials CSV row %d: %w", i+2, err)
		}

		if strings.TrimSpace(record[1]) == "" {
			part.Materials = append(part.Materials, *line)
			continue
		}
		variant, ok := part.Variant(record[1])
		if !ok {
			return fmt.Errorf("materials CSV row %d: part %s has no variant %s", i+2, part.ID, record[1])
		}
		variant.Materials = append(variant.Materials, *line)
	}
	return nil
}

func (l *Loader) loadSetComposition(filename string, catalog *Catalog) error {
	rows, err := readRows(filename, "set composition", setCompositionHeader, false)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	for i, record := range rows {
		part, err := lookupPart(catalog, record[0])
		if err != nil {
			return fmt.Errorf("set composition CSV row %d: %w", i+2, err)
		}
		units, err := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
		if err != nil || units <= 0 {
			return fmt.Errorf("set composition CSV row %d: invalid units_per_set: %s", i+2, record[2])
		}
		if part.SetComposition == nil {
			part.SetComposition = make(map[string]int64)
		}
		part.SetComposition[entities.CanonicalSuffix(record[1])] = units
	}
	return nil
}

// Helper functions for parsing CSV records

// readRows opens a CSV file, checks its header and returns the data rows.
// A missing file returns an error wrapping fs.ErrNotExist.
func readRows(filename, label string, expectedHeader []string, requireData bool) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", label, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", label, err)
	}

	if len(records) == 0 || (requireData && len(records) < 2) {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", label)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", label, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", label, i+2, len(expectedHeader), len(record))
		}
	}
	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func lookupPart(catalog *Catalog, id string) (*entities.Part, error) {
	part, ok := catalog.Parts[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("unknown part_id: %s", id)
	}
	return part, nil
}

func parsePart(record []string) (*entities.Part, error) {
	id := strings.TrimSpace(record[0])
	if id == "" {
		return nil, fmt.Errorf("part_id cannot be empty")
	}

	labor, err := parseDecimal("labor_hours", record[2])
	if err != nil {
		return nil, err
	}
	requiresCNC, err := parseBool("requires_cnc", record[3])
	if err != nil {
		return nil, err
	}
	cnc, err := parseDecimal("cnc_time_hours", record[4])
	if err != nil {
		return nil, err
	}
	requiresPrint, err := parseBool("requires_3d_print", record[5])
	if err != nil {
		return nil, err
	}
	printHours, err := parseDecimal("printer_3d_time_hours", record[6])
	if err != nil {
		return nil, err
	}

	return &entities.Part{
		ID:                 id,
		Name:               record[1],
		LaborHours:         labor,
		RequiresCNC:        requiresCNC,
		CNCTimeHours:       cnc,
		Requires3DPrint:    requiresPrint,
		Printer3DTimeHours: printHours,
	}, nil
}

func parseInventoryItem(record []string) (entities.InventoryItem, error) {
	inStock, err := parseSignedDecimal("in_stock", record[3])
	if err != nil {
		return entities.InventoryItem{}, err
	}
	item, err := entities.NewInventoryItem(strings.TrimSpace(record[0]), record[1], strings.TrimSpace(record[2]), inStock)
	if err != nil {
		return entities.InventoryItem{}, err
	}

	targets := []struct {
		name string
		raw  string
		dest *decimal.Decimal
	}{
		{"disposed", record[4], &item.Disposed},
		{"on_order", record[5], &item.OnOrder},
		{"reorder_point", record[6], &item.ReorderPoint},
		{"customer_price", record[7], &item.CustomerPrice},
	}
	for _, target := range targets {
		value, err := parseDecimal(target.name, target.raw)
		if err != nil {
			return entities.InventoryItem{}, err
		}
		*target.dest = value
	}
	return *item, nil
}

// parseDecimal reads a non-negative decimal. An empty cell reads as zero.
func parseDecimal(name, raw string) (decimal.Decimal, error) {
	d, err := parseSignedDecimal(name, raw)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s cannot be negative: %s", name, raw)
	}
	return d, nil
}

func parseSignedDecimal(name, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %s", name, raw)
	}
	return d, nil
}

func parseJobDash(raw string) (entities.DashQuantities, error) {
	dash := entities.DashQuantities{}
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		suffix, qty, ok := strings.Cut(pair, "=")
		key := entities.CanonicalSuffix(strings.TrimSpace(suffix))
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid dash_quantities entry %q", pair)
		}
		units, err := strconv.ParseInt(strings.TrimSpace(qty), 10, 64)
		if err != nil || units < 0 {
			return nil, fmt.Errorf("invalid dash_quantities entry %q", pair)
		}
		if units > 0 {
			dash[key] += units
		}
	}
	return dash, nil
}

func parseBool(name, raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "false", "no", "0":
		return false, nil
	case "true", "yes", "1":
		return true, nil
	default:
		return false, fmt.Errorf("invalid %s: %s (expected true or false)", name, raw)
	}
}
