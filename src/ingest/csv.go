package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// table wraps an open CSV file together with its header→column index, so
// row-handling code can address fields by name instead of position —
// the crates.io dump's column order is not part of its contract.
type table struct {
	name string
	f    *os.File
	r    *csv.Reader
	cols map[string]int
	row  int
}

func openTable(dataDir, name string) (*table, error) {
	path := filepath.Join(dataDir, name+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[h] = i
	}

	return &table{name: name, f: f, r: r, cols: cols}, nil
}

func (t *table) close() { t.f.Close() }

// next reads the next data row, returning io.EOF when exhausted.
func (t *table) next() ([]string, error) {
	rec, err := t.r.Read()
	if err != nil {
		return nil, err
	}
	t.row++
	return rec, nil
}

// col returns the value of column name in rec, or an error naming the
// current row and table if the column is missing.
func (t *table) col(rec []string, name string) (string, error) {
	i, ok := t.cols[name]
	if !ok {
		return "", fmt.Errorf("%s row %d: missing column %q", t.name, t.row, name)
	}
	if i >= len(rec) {
		return "", fmt.Errorf("%s row %d: short row, missing column %q", t.name, t.row, name)
	}
	return rec[i], nil
}

// rowErr wraps an error with the current table and row number so decode
// failures name exactly where the dump went bad.
func (t *table) rowErr(err error) error {
	return fmt.Errorf("%s row %d: %w", t.name, t.row, err)
}

// eachRow calls fn for every data row of the table, stopping and
// propagating the first error fn returns.
func eachRow(dataDir, name string, fn func(t *table, rec []string) error) (int, error) {
	t, err := openTable(dataDir, name)
	if err != nil {
		return 0, err
	}
	defer t.close()

	count := 0
	for {
		rec, err := t.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, t.rowErr(err)
		}
		count++
		if err := fn(t, rec); err != nil {
			return count, err
		}
	}
	return count, nil
}
