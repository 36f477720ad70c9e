package datasets

import (
	"fmt"
	"strings"
)

// headerIndex builds a column-name -> position map from a CSV header row.
// Column names are matched case-insensitively with surrounding whitespace
// ignored, so "Mover_ID " and "mover_id" resolve to the same column.
func headerIndex(header []string) map[string]int {
	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.TrimSpace(strings.ToLower(col))] = i
	}
	return colIndex
}

// requireColumns verifies that every named column is present in the index.
func requireColumns(colIndex map[string]int, names ...string) error {
	for _, name := range names {
		if _, ok := colIndex[name]; !ok {
			return fmt.Errorf("required column %q not found in CSV", name)
		}
	}
	return nil
}
