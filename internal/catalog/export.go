package catalog

import (
	"encoding/json"
	"fmt"
	"time"
)

// Export serializes the catalog as an indented JSON array of items, ids
// always included. The output round-trips through MergeImport with every
// id preserved.
func Export(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export catalog: %w", err)
	}
	return data, nil
}

// ExportFilename returns the conventional export file name,
// groceries-items-YYYYMMDD-HHMMSS.json, in the local time of now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("groceries-items-%s.json", now.Format("20060102-150405"))
}
