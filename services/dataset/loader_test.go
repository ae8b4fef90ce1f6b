package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadComma(t *testing.T) {
	path := writeFile(t, "prices.csv", "Date,Close\n2020-01-01,100.5\n2020-01-02,101\n")
	tbl, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Columns) != 2 || tbl.Columns[0] != "Date" || tbl.Columns[1] != "Close" {
		t.Errorf("columns = %v", tbl.Columns)
	}
	if len(tbl.Rows) != 2 || tbl.Separator != ',' {
		t.Errorf("rows = %d, sep = %q", len(tbl.Rows), tbl.Separator)
	}
}

func TestLoadFallsBackToSemicolon(t *testing.T) {
	path := writeFile(t, "prices.csv", "Date;Close\n2020-01-01;100,5\n2020-01-02;101\n")
	tbl, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Columns) != 2 {
		t.Fatalf("semicolon fallback produced %d columns, want 2", len(tbl.Columns))
	}
	if tbl.Separator != ';' {
		t.Errorf("separator = %q, want ';'", tbl.Separator)
	}
	if tbl.Cell(0, 1) != "100,5" {
		t.Errorf("cell(0,1) = %q", tbl.Cell(0, 1))
	}
}

func TestLoadSingleColumnFileStaysSingleColumn(t *testing.T) {
	path := writeFile(t, "one.csv", "Value\n1\n2\n")
	tbl, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Columns) != 1 {
		t.Errorf("columns = %v, want single column", tbl.Columns)
	}
}

func TestLoadStripsUTF8BOM(t *testing.T) {
	path := writeFile(t, "bom.csv", "\ufeffDate,Close\n2020-01-01,1\n")
	tbl, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Columns[0] != "Date" {
		t.Errorf("header kept BOM: %q", tbl.Columns[0])
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("err = %v, want ErrFileNotFound", err)
	}
}

func TestStoreReusesParsedTable(t *testing.T) {
	path := writeFile(t, "prices.csv", "Date,Close\n2020-01-01,100\n")
	store := NewStore(time.Minute, time.Minute, zap.NewNop())

	first, err := store.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("expected the identical cached *Table on the second load")
	}

	store.Invalidate(path)
	third, err := store.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if third == first {
		t.Error("Invalidate should force a fresh parse")
	}
}

func TestStoreMissingFile(t *testing.T) {
	store := NewStore(time.Minute, time.Minute, zap.NewNop())
	_, err := store.Load(filepath.Join(t.TempDir(), "gone.csv"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("err = %v, want ErrFileNotFound", err)
	}
}
