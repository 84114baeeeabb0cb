package tables

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Store reads and writes the CSV tables of one repository's data
// directory. A table is replaced wholesale on every write: the new
// content is built in a temporary file and renamed over the old one,
// so an interrupted pass never leaves a half-written table behind.
type Store struct {
	root string
}

// NewStore creates a store rooted at the repository's data directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the store's data directory.
func (s *Store) Root() string {
	return s.root
}

// TablePath returns the file path of a table. dir may be empty for
// tables that live at the data-directory root, like the user table.
func (s *Store) TablePath(dir string, schema *Schema) string {
	if dir == "" {
		return filepath.Join(s.root, schema.Name()+".csv")
	}
	return filepath.Join(s.root, dir, schema.Name()+".csv")
}

// Exists reports whether the table file has been written before.
func (s *Store) Exists(dir string, schema *Schema) bool {
	_, err := os.Stat(s.TablePath(dir, schema))
	return err == nil
}

// WriteTable replaces the table file with the given rows.
func (s *Store) WriteTable(dir string, schema *Schema, rows []*Row) error {
	path := s.TablePath(dir, schema)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create table directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+schema.Name()+"-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp table file: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(schema.columns); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write table header: %w", err)
	}

	record := make([]string, len(schema.columns))
	for _, row := range rows {
		if row.schema != schema {
			tmp.Close()
			return fmt.Errorf("row schema %s does not match table %s", row.schema.name, schema.name)
		}
		for i, col := range schema.columns {
			cell, err := encodeCell(row.values[col])
			if err != nil {
				tmp.Close()
				return err
			}
			record[i] = cell
		}
		if err := writer.Write(record); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write table row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp table file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace table file: %w", err)
	}

	return nil
}

// ReadTable loads all rows of a table. A table that has never been
// written reads as empty, not as an error. The file header must match
// the schema exactly; a stray column means extractor and table shapes
// have diverged and is reported as an error.
func (s *Store) ReadTable(dir string, schema *Schema) ([]*Row, error) {
	file, err := os.Open(s.TablePath(dir, schema))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open table %s: %w", schema.Name(), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", schema.Name(), err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	if len(header) != len(schema.columns) {
		return nil, fmt.Errorf("table %s has %d columns, schema declares %d", schema.Name(), len(header), len(schema.columns))
	}
	for i, col := range header {
		if col != schema.columns[i] {
			return nil, fmt.Errorf("%w: %q in file of table %s", ErrUnknownColumn, col, schema.Name())
		}
	}

	rows := make([]*Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := NewRow(schema)
		for i, col := range schema.columns {
			if record[i] == "" {
				continue
			}
			row.values[col] = record[i]
		}
		rows = append(rows, row)
	}

	return rows, nil
}
