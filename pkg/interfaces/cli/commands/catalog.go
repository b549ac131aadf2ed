package commands

import (
	"fmt"
	"strings"

	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
	"github.com/vsinha/jobshop/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/jobshop/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/jobshop/pkg/infrastructure/repositories/records"
)

// loadPart reads the catalog and returns the requested part
func loadPart(catalogDir, partID string) (*csv.Catalog, *entities.Part, error) {
	if catalogDir == "" {
		return nil, nil, fmt.Errorf("catalog directory is required")
	}
	if partID == "" {
		return nil, nil, fmt.Errorf("part id is required")
	}

	catalog, err := csv.NewLoader().LoadCatalog(catalogDir)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading catalog: %w", err)
	}
	part, ok := catalog.Part(partID)
	if !ok {
		return nil, nil, fmt.Errorf("part %s not found in catalog (known: %s)", partID, strings.Join(catalog.PartIDs(), ", "))
	}
	return catalog, part, nil
}

// parseDash parses "-01=2,-02=4" into raw dash quantities.
// Values stay strings so the normalizer applies its usual coercion rules.
func parseDash(list string) (entities.RawDashQuantities, error) {
	raw := make(entities.RawDashQuantities)
	for _, pair := range strings.Split(list, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		suffix, qty, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(suffix) == "" {
			return nil, fmt.Errorf("invalid dash quantity %q, expected suffix=quantity", pair)
		}
		raw[strings.TrimSpace(suffix)] = strings.TrimSpace(qty)
	}
	return raw, nil
}

// seedStore loads the catalog's inventory and jobs into a memory store under their catalog ids
func seedStore(store *memory.RecordStore, catalog *csv.Catalog) {
	for _, item := range catalog.Inventory {
		store.Seed(repositories.InventoryCollection, item.ID, records.InventoryItemFields(item))
	}
	for _, job := range catalog.Jobs {
		store.Seed(repositories.JobsCollection, job.ID, records.JobFields(job))
	}
}
