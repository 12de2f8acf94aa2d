package csvstore

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

const utf8BOM = "\ufeff"

// readRows parses the CSV file at path into rows keyed by header. A missing
// file is an empty collection. The first line is skipped only when it is
// textually equal to the comma-joined header; otherwise it is data, which is
// how files written without a header (or with another column order) are read.
func readRows(path string, header []string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Row{}, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	first, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	first = strings.TrimPrefix(first, utf8BOM)

	var src io.Reader = br
	if strings.TrimSpace(first) != strings.Join(header, ",") {
		src = io.MultiReader(strings.NewReader(first), br)
	}

	r := csv.NewReader(src)
	// legacy rows may have fewer or more columns than the header
	r.FieldsPerRecord = -1

	rows := []Row{}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if row, ok := toRow(header, rec); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// toRow maps a record onto header columns. ok is false when every value is
// blank after trimming.
func toRow(header []string, rec []string) (Row, bool) {
	row := make(Row, len(header))
	hasContent := false
	for i, col := range header {
		v := ""
		if i < len(rec) {
			v = rec[i]
		}
		row[col] = v
		if strings.TrimSpace(v) != "" {
			hasContent = true
		}
	}
	return row, hasContent
}

// toRecord flattens a row in header order. Missing columns are written empty.
func toRecord(header []string, row Row) []string {
	rec := make([]string, len(header))
	for i, col := range header {
		rec[i] = row[col]
	}
	return rec
}
