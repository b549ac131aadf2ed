// Package records maps between stored records and domain entities.
// Quantities are written as decimal strings so they survive JSON storage exactly,
// and read back from any numeric representation a store may return.
package records

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
	"github.com/vsinha/jobshop/pkg/domain/services"
)

// Field names of the job_inventory collection
const (
	FieldJob       = "job"
	FieldInventory = "inventory"
	FieldQuantity  = "quantity"
	FieldUnit      = "unit"
)

// Field names of the inventory collection
const (
	FieldName          = "name"
	FieldInStock       = "in_stock"
	FieldDisposed      = "disposed"
	FieldOnOrder       = "on_order"
	FieldReorderPoint  = "reorder_point"
	FieldCustomerPrice = "customer_price"
)

// Field names of the jobs collection
const (
	FieldPart           = "part"
	FieldStatus         = "status"
	FieldDashQuantities = "dash_quantities"
)

// Field names of the inventory_transactions collection
const (
	FieldChangeAmount = "change_amount"
	FieldNewInStock   = "new_in_stock"
	FieldDirection    = "direction"
)

// JobInventoryLineFields encodes a line for storage
func JobInventoryLineFields(line entities.JobInventoryLine) map[string]any {
	return map[string]any{
		FieldJob:       line.JobID,
		FieldInventory: line.InventoryID,
		FieldQuantity:  line.Quantity.String(),
		FieldUnit:      line.Unit,
	}
}

// JobInventoryLineFromRecord decodes a stored line
func JobInventoryLineFromRecord(record *repositories.Record) (entities.JobInventoryLine, error) {
	qty, err := Decimal(record.Fields[FieldQuantity])
	if err != nil {
		return entities.JobInventoryLine{}, fmt.Errorf("job inventory %s: %w", record.ID, err)
	}
	return entities.JobInventoryLine{
		ID:          record.ID,
		JobID:       String(record.Fields[FieldJob]),
		InventoryID: String(record.Fields[FieldInventory]),
		Quantity:    qty,
		Unit:        String(record.Fields[FieldUnit]),
	}, nil
}

// InventoryItemFields encodes an inventory item for storage
func InventoryItemFields(item entities.InventoryItem) map[string]any {
	return map[string]any{
		FieldName:          item.Name,
		FieldUnit:          item.Unit,
		FieldInStock:       item.InStock.String(),
		FieldDisposed:      item.Disposed.String(),
		FieldOnOrder:       item.OnOrder.String(),
		FieldReorderPoint:  item.ReorderPoint.String(),
		FieldCustomerPrice: item.CustomerPrice.String(),
	}
}

// InventoryItemFromRecord decodes a stored inventory item
func InventoryItemFromRecord(record *repositories.Record) (entities.InventoryItem, error) {
	item := entities.InventoryItem{
		ID:   record.ID,
		Name: String(record.Fields[FieldName]),
		Unit: String(record.Fields[FieldUnit]),
	}

	targets := []struct {
		field string
		dest  *decimal.Decimal
	}{
		{FieldInStock, &item.InStock},
		{FieldDisposed, &item.Disposed},
		{FieldOnOrder, &item.OnOrder},
		{FieldReorderPoint, &item.ReorderPoint},
		{FieldCustomerPrice, &item.CustomerPrice},
	}
	for _, target := range targets {
		value, err := Decimal(record.Fields[target.field])
		if err != nil {
			return entities.InventoryItem{}, fmt.Errorf("inventory %s field %s: %w", record.ID, target.field, err)
		}
		*target.dest = value
	}
	return item, nil
}

// JobFields encodes a job for storage
func JobFields(job entities.Job) map[string]any {
	dash := make(map[string]any, len(job.DashQuantities))
	for suffix, qty := range job.DashQuantities {
		dash[suffix] = qty
	}
	return map[string]any{
		FieldName:           job.Name,
		FieldPart:           job.PartID,
		FieldStatus:         string(job.Status),
		FieldDashQuantities: dash,
	}
}

// JobFromRecord decodes a stored job. Unknown statuses are rejected.
func JobFromRecord(record *repositories.Record) (entities.Job, error) {
	status, err := entities.ParseJobStatus(String(record.Fields[FieldStatus]))
	if err != nil {
		return entities.Job{}, fmt.Errorf("job %s: %w", record.ID, err)
	}
	return entities.Job{
		ID:             record.ID,
		Name:           String(record.Fields[FieldName]),
		PartID:         String(record.Fields[FieldPart]),
		Status:         status,
		DashQuantities: dashQuantities(record.Fields[FieldDashQuantities]),
	}, nil
}

// TransactionFields encodes the audit record written for an applied stock mutation
func TransactionFields(jobID string, direction entities.ReconcileDirection, m entities.InventoryMutation) map[string]any {
	return map[string]any{
		FieldJob:          jobID,
		FieldInventory:    m.InventoryID,
		FieldChangeAmount: m.ChangeAmount.String(),
		FieldNewInStock:   m.NewInStock.String(),
		FieldDirection:    direction.String(),
	}
}

func dashQuantities(value any) entities.DashQuantities {
	switch v := value.(type) {
	case entities.DashQuantities:
		return services.CleanDashQuantities(v)
	case map[string]int64:
		return services.CleanDashQuantities(v)
	case map[string]any:
		return services.NormalizeDashQuantities(v)
	case entities.RawDashQuantities:
		return services.NormalizeDashQuantities(v)
	default:
		return entities.DashQuantities{}
	}
}

// Decimal reads a numeric field. A missing field reads as zero.
func Decimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return v, nil
	case string:
		if v == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(v)
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported numeric value %v (%T)", value, value)
	}
}

// String reads a text field. A missing field reads as "".
func String(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
