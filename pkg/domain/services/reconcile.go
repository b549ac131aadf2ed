package services

import (
	"github.com/shopspring/decimal"
	"github.com/vsinha/jobshop/pkg/domain/entities"
)

// Reconcile computes the stock adjustments for a job's recorded material lines.
//
// Consume subtracts each line's quantity from the matching item's InStock, Restore adds it back.
// Stock is allowed to go negative. Lines that reference the same item collapse into one mutation
// for that item, in order of first appearance. Lines without a matching item are skipped.
// Which status changes call for which direction is decided by the caller.
func Reconcile(
	lines []entities.JobInventoryLine,
	inventory []entities.InventoryItem,
	direction entities.ReconcileDirection,
) []entities.InventoryMutation {
	stock := make(map[string]decimal.Decimal, len(inventory))
	for _, item := range inventory {
		stock[item.ID] = item.InStock
	}

	changes := make(map[string]decimal.Decimal)
	order := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := stock[line.InventoryID]; !ok {
			continue
		}
		change := line.Quantity
		if direction == entities.Consume {
			change = change.Neg()
		}
		existing, seen := changes[line.InventoryID]
		if !seen {
			order = append(order, line.InventoryID)
			changes[line.InventoryID] = change
			continue
		}
		changes[line.InventoryID] = existing.Add(change)
	}

	mutations := make([]entities.InventoryMutation, 0, len(order))
	for _, id := range order {
		change := changes[id]
		mutations = append(mutations, entities.InventoryMutation{
			InventoryID:  id,
			NewInStock:   stock[id].Add(change),
			ChangeAmount: change,
		})
	}
	return mutations
}

// ApplyMutations returns a copy of inventory with the mutations' new stock levels applied
func ApplyMutations(inventory []entities.InventoryItem, mutations []entities.InventoryMutation) []entities.InventoryItem {
	next := make(map[string]decimal.Decimal, len(mutations))
	for _, m := range mutations {
		next[m.InventoryID] = m.NewInStock
	}

	result := make([]entities.InventoryItem, len(inventory))
	for i, item := range inventory {
		if stock, ok := next[item.ID]; ok {
			item.InStock = stock
		}
		result[i] = item
	}
	return result
}

// AllocatedQuantities sums the recorded lines of open jobs per inventory item.
// Jobs already in a consuming status have drawn their material from InStock and cancelled jobs
// hold nothing, so neither counts.
func AllocatedQuantities(
	jobs []entities.Job,
	lines []entities.JobInventoryLine,
	policy entities.StatusPolicy,
) map[string]decimal.Decimal {
	open := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		if policy.IsOpen(job.Status) {
			open[job.ID] = true
		}
	}

	allocated := make(map[string]decimal.Decimal)
	for _, line := range lines {
		if !open[line.JobID] {
			continue
		}
		allocated[line.InventoryID] = allocated[line.InventoryID].Add(line.Quantity)
	}
	return allocated
}
