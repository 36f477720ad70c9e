package datasets

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Fixed file names of the two lookup tables expected inside the CSV directory.
const (
	realLookupName     = "movers_images_lookup.csv"
	rejectedLookupName = "rejected_movers_images_lookup.csv"
)

// Labels assigned to rows based on which lookup table they came from.
const (
	LabelReal     float32 = 1
	LabelRejected float32 = 0
)

// LookupRow is one detection entry from a mover lookup table. The label is
// not stored in the CSVs; it is injected from table membership (1 for the
// confirmed-movers table, 0 for the rejected-movers table).
type LookupRow struct {
	MoverID  string
	FileName string
	Label    float32
}

// MoverGroups holds the pooled lookup rows of both tables grouped by mover
// identifier. Row order within a mover is the order the rows appeared in
// their source file, which is the temporal order of the detection sequence.
type MoverGroups struct {
	groups map[string][]LookupRow
	ids    []string
}

// ReadMoverLookup reads the two fixed-named lookup CSVs from dir, labels
// their rows (1 for confirmed movers, 0 for rejected ones), pools them and
// groups them by mover identifier.
//
// Both files must exist and carry at least the "mover_id" and "file_name"
// columns; a missing file or malformed CSV is returned as an error.
func ReadMoverLookup(dir string) (*MoverGroups, error) {
	realRows, err := readLookupCSV(filepath.Join(dir, realLookupName), LabelReal)
	if err != nil {
		return nil, err
	}
	rejectedRows, err := readLookupCSV(filepath.Join(dir, rejectedLookupName), LabelRejected)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]LookupRow)
	for _, row := range realRows {
		groups[row.MoverID] = append(groups[row.MoverID], row)
	}
	for _, row := range rejectedRows {
		groups[row.MoverID] = append(groups[row.MoverID], row)
	}

	// Iteration over the map is not stable across runs; keep a sorted id
	// list so callers always see the movers in the same order.
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return &MoverGroups{groups: groups, ids: ids}, nil
}

// readLookupCSV reads one lookup table and tags every row with label.
func readLookupCSV(path string, label float32) ([]LookupRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lookup CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	colIndex := headerIndex(header)
	if err := requireColumns(colIndex, "mover_id", "file_name"); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	moverCol := colIndex["mover_id"]
	fileCol := colIndex["file_name"]

	var rows []LookupRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", path, err)
		}
		rows = append(rows, LookupRow{
			MoverID:  record[moverCol],
			FileName: record[fileCol],
			Label:    label,
		})
	}

	return rows, nil
}

// Len returns the number of distinct movers across both lookup tables.
func (g *MoverGroups) Len() int {
	return len(g.ids)
}

// IDs returns the mover identifiers in sorted order.
func (g *MoverGroups) IDs() []string {
	return g.ids
}

// Rows returns the lookup rows of one mover in source-file order.
func (g *MoverGroups) Rows(moverID string) []LookupRow {
	return g.groups[moverID]
}
