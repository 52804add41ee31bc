package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Report summarizes an import batch.
type Report struct {
	// Accepted counts records merged into the catalog.
	Accepted int `json:"accepted"`

	// Duplicates counts records skipped because their (store, item) key
	// already existed in the catalog or earlier in the same batch.
	Duplicates int `json:"duplicates"`

	// Invalid counts records skipped for an empty store or item name.
	Invalid int `json:"invalid"`
}

// storeFields and nameFields are the accepted field-name variants, tried as
// exact matches in order before falling back to a case-insensitive scan.
var (
	storeFields = []string{"store", "Store", "STORE"}
	nameFields  = []string{"item", "name", "Item", "Name"}
	idFields    = []string{"id", "ID", "Id"}
	priceFields = []string{"price", "Price", "PRICE"}
)

// MergeImport merges a raw parsed JSON payload into an existing catalog.
//
// The payload must be a top-level array; anything else is an error. Bad
// records never abort the batch: a record with an empty store or name is
// counted invalid, a record whose (store, item) key already exists -
// in the catalog or earlier in the batch - is counted duplicate, and the
// rest are accepted. A supplied id is preserved when it collides with
// nothing; otherwise a fresh id is synthesized, unique against both the
// existing catalog and ids assigned earlier in the batch.
//
// The merged slice holds the existing items in their original order
// followed by accepted items in input order. The input slice is not
// mutated. MergeImport performs no I/O.
func MergeImport(existing []Item, raw any) ([]Item, Report, error) {
	records, ok := raw.([]any)
	if !ok {
		return nil, Report{}, fmt.Errorf("import payload must be a JSON array, got %T", raw)
	}

	merged := make([]Item, len(existing), len(existing)+len(records))
	copy(merged, existing)

	keys := make(map[string]bool, len(existing))
	usedIDs := make(map[string]bool, len(existing))
	for _, it := range existing {
		keys[it.Key()] = true
		usedIDs[it.ID] = true
	}

	var report Report
	for _, rec := range records {
		obj, ok := rec.(map[string]any)
		if !ok {
			report.Invalid++
			continue
		}

		store := strings.TrimSpace(fieldString(obj, storeFields))
		name := strings.TrimSpace(fieldString(obj, nameFields))
		if store == "" || name == "" {
			report.Invalid++
			continue
		}

		key := ItemKey(store, name)
		if keys[key] {
			report.Duplicates++
			continue
		}

		id := strings.TrimSpace(fieldString(obj, idFields))
		if id == "" || usedIDs[id] {
			id = synthesizeID(usedIDs, time.Now())
		}

		merged = append(merged, Item{
			ID:    id,
			Store: store,
			Name:  name,
			Price: fieldPrice(obj, priceFields),
		})
		keys[key] = true
		usedIDs[id] = true
		report.Accepted++
	}

	return merged, report, nil
}

// fieldString extracts a string field, trying exact key matches in
// preference order and then a case-insensitive scan. Non-string values
// yield "".
func fieldString(obj map[string]any, variants []string) string {
	for _, k := range variants {
		if v, ok := obj[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
			return ""
		}
	}
	for k, v := range obj {
		for _, variant := range variants {
			if strings.EqualFold(k, variant) {
				if s, ok := v.(string); ok {
					return s
				}
				return ""
			}
		}
	}
	return ""
}

// fieldPrice extracts the price, accepting a number or numeric string.
// Absent, non-finite, or unparseable values default to 0.
func fieldPrice(obj map[string]any, variants []string) float64 {
	var v any
	found := false
	for _, k := range variants {
		if value, ok := obj[k]; ok {
			v, found = value, true
			break
		}
	}
	if !found {
		for k, value := range obj {
			if strings.EqualFold(k, "price") {
				v, found = value, true
				break
			}
		}
	}
	if !found {
		return 0
	}

	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
