package datasets

import (
	"os"
	"path/filepath"
	"testing"
)

// writeCSV writes a CSV file with the given header and rows to path.
func writeCSV(t *testing.T, path, header string, rows []string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create csv %s: %v", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(header + "\n"); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	for _, r := range rows {
		if _, err := f.WriteString(r + "\n"); err != nil {
			t.Fatalf("failed to write row: %v", err)
		}
	}
}

// writeLookups writes both fixed-named lookup tables into dir.
func writeLookups(t *testing.T, dir string, realRows, rejectedRows []string) {
	t.Helper()
	header := "mover_id,file_name"
	writeCSV(t, filepath.Join(dir, realLookupName), header, realRows)
	writeCSV(t, filepath.Join(dir, rejectedLookupName), header, rejectedRows)
}

func TestReadMoverLookup_GroupsAndLabels(t *testing.T) {
	tmp := t.TempDir()
	writeLookups(t, tmp,
		[]string{
			"m2,m2_0.png",
			"m1,m1_0.png",
			"m1,m1_1.png",
			"m2,m2_1.png",
		},
		[]string{
			"b1,b1_0.png",
			"b1,b1_1.png",
		})

	groups, err := ReadMoverLookup(tmp)
	if err != nil {
		t.Fatalf("ReadMoverLookup failed: %v", err)
	}

	if got := groups.Len(); got != 3 {
		t.Fatalf("expected 3 movers, got %d", got)
	}

	// IDs must come back sorted for deterministic iteration.
	wantIDs := []string{"b1", "m1", "m2"}
	for i, id := range groups.IDs() {
		if id != wantIDs[i] {
			t.Fatalf("IDs()[%d] = %q, want %q", i, id, wantIDs[i])
		}
	}

	// Row order within a mover follows source-file order.
	m1 := groups.Rows("m1")
	if len(m1) != 2 || m1[0].FileName != "m1_0.png" || m1[1].FileName != "m1_1.png" {
		t.Fatalf("unexpected rows for m1: %+v", m1)
	}

	// Labels are injected from table membership.
	for _, row := range groups.Rows("m2") {
		if row.Label != LabelReal {
			t.Fatalf("expected label %v for real mover row, got %v", LabelReal, row.Label)
		}
	}
	for _, row := range groups.Rows("b1") {
		if row.Label != LabelRejected {
			t.Fatalf("expected label %v for rejected mover row, got %v", LabelRejected, row.Label)
		}
	}
}

func TestReadMoverLookup_MissingFile(t *testing.T) {
	tmp := t.TempDir()
	// Only the real-movers table exists.
	writeCSV(t, filepath.Join(tmp, realLookupName), "mover_id,file_name", []string{"m1,m1_0.png"})

	if _, err := ReadMoverLookup(tmp); err == nil {
		t.Fatalf("expected error when rejected lookup CSV is missing, got nil")
	}
}

func TestReadMoverLookup_MissingColumn(t *testing.T) {
	tmp := t.TempDir()
	writeCSV(t, filepath.Join(tmp, realLookupName), "mover_id,path", []string{"m1,m1_0.png"})
	writeCSV(t, filepath.Join(tmp, rejectedLookupName), "mover_id,file_name", []string{"b1,b1_0.png"})

	if _, err := ReadMoverLookup(tmp); err == nil {
		t.Fatalf("expected error when file_name column is missing, got nil")
	}
}

func TestReadMoverLookup_HeaderNormalization(t *testing.T) {
	tmp := t.TempDir()
	// Header matching is case-insensitive and whitespace-tolerant.
	writeCSV(t, filepath.Join(tmp, realLookupName), "Mover_ID, File_Name", []string{"m1,m1_0.png"})
	writeCSV(t, filepath.Join(tmp, rejectedLookupName), "mover_id,file_name", []string{"b1,b1_0.png"})

	groups, err := ReadMoverLookup(tmp)
	if err != nil {
		t.Fatalf("ReadMoverLookup failed: %v", err)
	}
	if groups.Len() != 2 {
		t.Fatalf("expected 2 movers, got %d", groups.Len())
	}
}
