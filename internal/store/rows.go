package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Row is one record of a tabular file, keyed by column name.
type Row = map[string]string

// LoadRows reads a header-prefixed tabular file. A missing file yields an
// empty sequence; columns absent from a record are simply not present in
// the row. Every other read failure propagates.
func LoadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(header))
		for i, field := range header {
			if i < len(record) {
				row[field] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SaveRows atomically replaces path with the given rows, writing the field
// header first. Fields absent from a row are written as empty strings.
func SaveRows(path string, fields []string, rows []Row) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".rows-*")
	if err != nil {
		return fmt.Errorf("unable to create temporary file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	_ = writer.Write(fields)
	record := make([]string, len(fields))
	for _, row := range rows {
		for i, field := range fields {
			record[i] = row[field]
		}
		_ = writer.Write(record)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("unable to replace %s: %w", path, err)
	}
	return nil
}
