package services

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vsinha/jobshop/pkg/domain/entities"
)

var maxUnits = decimal.NewFromInt(math.MaxInt64)

// NormalizeDashQuantities canonicalizes user-entered quantities.
// Suffixes are folded with entities.CanonicalSuffix, values are coerced to whole units and
// anything that is not a positive number is dropped. Keys folding to the same suffix are summed,
// capped at math.MaxInt64 units.
func NormalizeDashQuantities(raw entities.RawDashQuantities) entities.DashQuantities {
	sums := make(map[string]decimal.Decimal, len(raw))
	for suffix, value := range raw {
		key := entities.CanonicalSuffix(suffix)
		if key == "" {
			continue
		}
		qty, ok := coerceUnits(value)
		if !ok {
			continue
		}
		sums[key] = sums[key].Add(decimal.NewFromInt(qty))
	}
	return capUnits(sums)
}

// CleanDashQuantities applies the same rules as NormalizeDashQuantities to an already typed mapping
func CleanDashQuantities(dq entities.DashQuantities) entities.DashQuantities {
	sums := make(map[string]decimal.Decimal, len(dq))
	for suffix, qty := range dq {
		key := entities.CanonicalSuffix(suffix)
		if key == "" || qty <= 0 {
			continue
		}
		sums[key] = sums[key].Add(decimal.NewFromInt(qty))
	}
	return capUnits(sums)
}

func capUnits(sums map[string]decimal.Decimal) entities.DashQuantities {
	result := make(entities.DashQuantities, len(sums))
	for key, sum := range sums {
		result[key] = decimal.Min(sum, maxUnits).IntPart()
	}
	return result
}

// coerceUnits converts a form value into a positive whole unit count
func coerceUnits(value any) (int64, bool) {
	var d decimal.Decimal

	switch v := value.(type) {
	case nil:
		return 0, false
	case int:
		d = decimal.NewFromInt(int64(v))
	case int8:
		d = decimal.NewFromInt(int64(v))
	case int16:
		d = decimal.NewFromInt(int64(v))
	case int32:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case uint:
		d = decimal.NewFromUint64(uint64(v))
	case uint8:
		d = decimal.NewFromUint64(uint64(v))
	case uint16:
		d = decimal.NewFromUint64(uint64(v))
	case uint32:
		d = decimal.NewFromUint64(uint64(v))
	case uint64:
		d = decimal.NewFromUint64(v)
	case float32:
		return coerceFloat(float64(v))
	case float64:
		return coerceFloat(v)
	case decimal.Decimal:
		d = v
	case json.Number:
		return coerceString(v.String())
	case string:
		return coerceString(v)
	default:
		return 0, false
	}

	return wholeUnits(d)
}

func coerceFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return wholeUnits(decimal.NewFromFloat(f))
}

func coerceString(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return wholeUnits(d)
}

func wholeUnits(d decimal.Decimal) (int64, bool) {
	d = d.Floor()
	if !d.IsPositive() || d.GreaterThan(maxUnits) {
		return 0, false
	}
	return d.IntPart(), true
}
