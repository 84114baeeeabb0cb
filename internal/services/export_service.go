package services

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/xuri/excelize/v2"
)

// ExportService renders a repository's CSV tables into a single
// spreadsheet or SQLite database for downstream analysis. It works on
// the files as written, one sheet or SQL table per CSV table.
type ExportService struct {
	repoDir string
}

// NewExportService creates an export service over one repository's
// data directory.
func NewExportService(repoDir string) *ExportService {
	return &ExportService{repoDir: repoDir}
}

// exportTable is one CSV table located on disk.
type exportTable struct {
	name   string
	path   string
	header []string
	rows   [][]string
}

// ExportXLSX writes every table as a sheet of one workbook.
func (s *ExportService) ExportXLSX(outPath string) error {
	exports, err := s.loadTables()
	if err != nil {
		return err
	}
	if len(exports) == 0 {
		return fmt.Errorf("no tables found under %s", s.repoDir)
	}

	file := excelize.NewFile()
	defer file.Close()

	for i, table := range exports {
		sheet := sheetName(table.name)
		if i == 0 {
			if err := file.SetSheetName(file.GetSheetName(0), sheet); err != nil {
				return err
			}
		} else {
			if _, err := file.NewSheet(sheet); err != nil {
				return err
			}
		}

		if err := writeSheetRow(file, sheet, 1, table.header); err != nil {
			return err
		}
		for n, row := range table.rows {
			if err := writeSheetRow(file, sheet, n+2, row); err != nil {
				return err
			}
		}
	}

	if err := file.SaveAs(outPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// sheetName converts a table name into a valid worksheet name. Nested
// table paths carry a slash, which the format forbids, and names are
// capped at 31 characters.
func sheetName(name string) string {
	sheet := strings.ReplaceAll(name, "/", "_")
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	return sheet
}

func writeSheetRow(file *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return file.SetSheetRow(sheet, cell, &cells)
}

// ExportSQLite loads every table into one SQLite database file. The
// database is rebuilt from scratch on every export.
func (s *ExportService) ExportSQLite(outPath string) error {
	exports, err := s.loadTables()
	if err != nil {
		return err
	}
	if len(exports) == 0 {
		return fmt.Errorf("no tables found under %s", s.repoDir)
	}

	if err := os.Remove(outPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove previous database: %w", err)
	}

	db, err := sql.Open("sqlite3", outPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	for _, table := range exports {
		if err := s.loadSQLiteTable(db, table); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExportService) loadSQLiteTable(db *sql.DB, table *exportTable) error {
	quoted := make([]string, len(table.header))
	marks := make([]string, len(table.header))
	for i, col := range table.header {
		quoted[i] = fmt.Sprintf("%q TEXT", col)
		marks[i] = "?"
	}

	name := strings.ReplaceAll(table.name, "/", "_")
	create := fmt.Sprintf("CREATE TABLE %q (%s)", name, strings.Join(quoted, ", "))
	if _, err := db.Exec(create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := fmt.Sprintf("INSERT INTO %q VALUES (%s)", name, strings.Join(marks, ", "))
	stmt, err := tx.Prepare(insert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range table.rows {
		args := make([]interface{}, len(row))
		for i, cell := range row {
			if cell == "" {
				args[i] = nil
			} else {
				args[i] = cell
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", name, err)
		}
	}

	return tx.Commit()
}

// loadTables finds every CSV table under the repository directory,
// sorted by path for stable output.
func (s *ExportService) loadTables() ([]*exportTable, error) {
	var paths []string
	err := filepath.Walk(s.repoDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".csv" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk data directory: %w", err)
	}
	sort.Strings(paths)

	var exports []*exportTable
	for _, path := range paths {
		table, err := s.loadTable(path)
		if err != nil {
			return nil, err
		}
		if table != nil {
			exports = append(exports, table)
		}
	}
	return exports, nil
}

func (s *ExportService) loadTable(path string) (*exportTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table %s: %w", path, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rel, err := filepath.Rel(s.repoDir, path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.ToSlash(rel), ".csv")

	return &exportTable{
		name:   name,
		path:   path,
		header: records[0],
		rows:   records[1:],
	}, nil
}
