package csv

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/services"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(strings.TrimLeft(body, "\n")), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadCatalog_Example(t *testing.T) {
	catalog, err := NewLoader().LoadCatalog(filepath.Join("..", "..", "..", "..", "example", "catalog"))
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}

	if got := catalog.PartIDs(); len(got) != 2 || got[0] != "BRKT-100" {
		t.Fatalf("Unexpected parts: %v", got)
	}
	kit, _ := catalog.Part("BRKT-100")
	if len(kit.Variants) != 2 || kit.SetComposition["-02"] != 2 {
		t.Fatalf("Unexpected kit definition: %+v", kit)
	}
	if kit.Variants[1].LaborHours != nil {
		t.Error("Blank labor_hours must inherit the part's base labor")
	}

	// The example kit at 2 sets
	req := services.CalculateMaterialRequirements(kit, entities.DashQuantities{"-01": 2, "-02": 4})
	want := map[string]string{"AL-6061": "0.7", "M4-SCREW": "16", "PLA": "50", "BOX-S": "2"}
	for id, qty := range want {
		if !req[id].Quantity.Equal(decimal.RequireFromString(qty)) {
			t.Errorf("%s: expected %s, got %s", id, qty, req[id].Quantity)
		}
	}

	if len(catalog.Inventory) != 4 {
		t.Errorf("Expected 4 inventory items, got %d", len(catalog.Inventory))
	}
	if len(catalog.Jobs) != 2 || catalog.Jobs[0].Status != entities.JobInProgress {
		t.Fatalf("Unexpected jobs: %+v", catalog.Jobs)
	}
	if got := catalog.Jobs[0].DashQuantities; got["-01"] != 2 || got["-02"] != 4 {
		t.Errorf("Expected JOB-1001 dash quantities -01=2 -02=4, got %v", got)
	}
	if len(catalog.Jobs[1].DashQuantities) != 0 {
		t.Errorf("Blank dash_quantities should load empty, got %v", catalog.Jobs[1].DashQuantities)
	}
}

func TestLoadCatalog_OptionalFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		PartsFile: `
part_id,name,labor_hours,requires_cnc,cnc_time_hours,requires_3d_print,printer_3d_time_hours
SOLO,Single part,2,no,,no,
`,
	})

	catalog, err := NewLoader().LoadCatalog(dir)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	solo, ok := catalog.Part("SOLO")
	if !ok || !solo.LaborHours.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("Unexpected part: %+v", solo)
	}
	if len(catalog.Inventory) != 0 || len(catalog.Jobs) != 0 {
		t.Error("Missing optional files should load as empty")
	}
}

func TestLoadCatalog_Errors(t *testing.T) {
	parts := `
part_id,name,labor_hours,requires_cnc,cnc_time_hours,requires_3d_print,printer_3d_time_hours
P1,Part one,1,false,0,false,0
`
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "missing parts",
			files: map[string]string{},
			want:  "failed to open parts file",
		},
		{
			name: "bad header",
			files: map[string]string{PartsFile: `
id,name
P1,Part one
`},
			want: "header mismatch",
		},
		{
			name: "negative labor",
			files: map[string]string{PartsFile: `
part_id,name,labor_hours,requires_cnc,cnc_time_hours,requires_3d_print,printer_3d_time_hours
P1,Part one,-1,false,0,false,0
`},
			want: "labor_hours cannot be negative",
		},
		{
			name: "material for unknown variant",
			files: map[string]string{PartsFile: parts, MaterialsFile: `
part_id,variant_suffix,inventory_id,quantity_per_unit,unit,usage_type
P1,-07,PLA,1,g,per_unit
`},
			want: "has no variant -07",
		},
		{
			name: "unknown usage type",
			files: map[string]string{PartsFile: parts, MaterialsFile: `
part_id,variant_suffix,inventory_id,quantity_per_unit,unit,usage_type
P1,,PLA,1,g,per_batch
`},
			want: "unknown usage type",
		},
		{
			name: "bad set composition",
			files: map[string]string{PartsFile: parts, SetCompositionFile: `
part_id,variant_suffix,units_per_set
P1,-01,0
`},
			want: "invalid units_per_set",
		},
		{
			name: "unknown job status",
			files: map[string]string{PartsFile: parts, JobsFile: `
job_id,name,part_id,status,dash_quantities
J1,Job,P1,shipped,
`},
			want: "unknown job status",
		},
		{
			name: "bad job dash quantities",
			files: map[string]string{PartsFile: parts, JobsFile: `
job_id,name,part_id,status,dash_quantities
J1,Job,P1,pending,-01=two
`},
			want: "invalid dash_quantities",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().LoadCatalog(writeFiles(t, tt.files))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadInventory_AllowsNegativeStock(t *testing.T) {
	dir := writeFiles(t, map[string]string{InventoryFile: `
inventory_id,name,unit,in_stock,disposed,on_order,reorder_point,customer_price
PLA,PLA filament,g,-25,0,0,0,0.04
`})

	items, err := NewLoader().LoadInventory(filepath.Join(dir, InventoryFile))
	if err != nil {
		t.Fatalf("LoadInventory failed: %v", err)
	}
	if !items[0].InStock.Equal(decimal.NewFromInt(-25)) {
		t.Errorf("Expected -25 in stock, got %s", items[0].InStock)
	}

	_, err = NewLoader().LoadInventory(filepath.Join(dir, "absent.csv"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist, got %v", err)
	}
}
