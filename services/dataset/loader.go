// Package dataset loads delimited price files into raw tables and
// memoizes the parsed result per file identity.
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrFileNotFound is the user-visible error for a missing input path.
var ErrFileNotFound = errors.New("file not found")

// Table is the raw dataset: header plus string rows, no typing applied.
type Table struct {
	Columns   []string
	Rows      [][]string
	Separator rune
}

// Load reads a delimited file into a Table. Comma is tried first; if the
// header parses as a single column the file is re-read with semicolon,
// which is the usual cause of a one-column comma parse. UTF-16 files
// (BOM-marked) are decoded transparently, and a UTF-8 BOM is stripped
// from the first header cell.
func Load(path string) (*Table, error) {
	tbl, err := parseFile(path, ',')
	if err != nil {
		return nil, err
	}
	if len(tbl.Columns) == 1 {
		if semi, err := parseFile(path, ';'); err == nil && len(semi.Columns) > 1 {
			return semi, nil
		}
	}
	return tbl, nil
}

func parseFile(path string, sep rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if b, _ := br.Peek(2); len(b) >= 2 && ((b[0] == 0xFF && b[1] == 0xFE) || (b[0] == 0xFE && b[1] == 0xFF)) {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek %s: %w", path, err)
		}
		tr := transform.NewReader(f, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
		br = bufio.NewReader(tr)
	}

	r := csv.NewReader(br)
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	tbl := &Table{Columns: header, Separator: sep}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// malformed rows are dropped, not fatal
			continue
		}
		if len(rec) < len(header) {
			padded := make([]string, len(header))
			copy(padded, rec)
			rec = padded
		}
		tbl.Rows = append(tbl.Rows, rec[:len(header)])
	}
	return tbl, nil
}

// Cell returns the trimmed value at (row, col), or "" when the row is
// ragged.
func (t *Table) Cell(row, col int) string {
	if col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}
