// Package snomed loads the SNOMED-CT condition table shipped with the
// dataset (ConditionNames_SNOMED-CT.csv).
package snomed

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ecgdash/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DefaultFileName is the condition table file under the dataset root.
const DefaultFileName = "ConditionNames_SNOMED-CT.csv"

// UnmappedName labels codes absent from the table.
const UnmappedName = "(unmapped)"

// Table is the read-only code to name lookup for one run.
type Table struct {
	names    map[string]string
	acronyms map[string]string
	codes    []string // listed codes in file order
}

// TableReader loads a condition table from CSV or XLSX.
type TableReader struct {
	filePath string
	fileType string // "csv" or "xlsx"
}

// NewTableReader creates a reader for the given table file.
func NewTableReader(filePath string) *TableReader {
	fileType := "csv"
	if strings.ToLower(filepath.Ext(filePath)) == ".xlsx" {
		fileType = "xlsx"
	}
	return &TableReader{filePath: filePath, fileType: fileType}
}

// Load reads the table. A missing or unreadable file is fatal for the
// run; there is no fallback mapping.
func (r *TableReader) Load() (*Table, error) {
	log.Printf("[TableReader] Loading %s condition table: %s", r.fileType, r.filePath)

	rows, err := r.readRows()
	if err != nil {
		return nil, errors.MappingMissing(r.filePath, err)
	}
	if len(rows) < 2 {
		return nil, errors.MappingMissing(r.filePath, fmt.Errorf("table has no data rows"))
	}

	table, err := buildTable(rows)
	if err != nil {
		return nil, errors.MappingMissing(r.filePath, err)
	}

	log.Printf("[TableReader] Loaded %d condition codes", len(table.codes))
	return table, nil
}

func (r *TableReader) readRows() ([][]string, error) {
	switch r.fileType {
	case "xlsx":
		f, err := excelize.OpenFile(r.filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open XLSX file: %w", err)
		}
		defer f.Close()
		rows, err := f.GetRows("Sheet1")
		if err != nil {
			return nil, fmt.Errorf("failed to read Sheet1: %w", err)
		}
		return rows, nil
	default:
		file, err := os.Open(r.filePath)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		reader := csv.NewReader(file)
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file: %w", err)
		}
		return rows, nil
	}
}

// buildTable maps the header row to columns and indexes the data rows.
// The shipped table has columns Snomed_CT, Full Name, Acronym Name.
func buildTable(rows [][]string) (*Table, error) {
	codeCol, nameCol, acronymCol := -1, -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case "Snomed_CT":
			codeCol = i
		case "Full Name":
			nameCol = i
		case "Acronym Name":
			acronymCol = i
		}
	}
	if codeCol == -1 || nameCol == -1 {
		return nil, fmt.Errorf("missing Snomed_CT or Full Name column")
	}

	table := &Table{
		names:    make(map[string]string, len(rows)-1),
		acronyms: make(map[string]string, len(rows)-1),
	}
	for _, row := range rows[1:] {
		if codeCol >= len(row) || nameCol >= len(row) {
			continue
		}
		code := strings.TrimSpace(row[codeCol])
		if code == "" {
			continue
		}
		if _, dup := table.names[code]; !dup {
			table.codes = append(table.codes, code)
		}
		table.names[code] = strings.TrimSpace(row[nameCol])
		if acronymCol != -1 && acronymCol < len(row) {
			table.acronyms[code] = strings.TrimSpace(row[acronymCol])
		}
	}
	return table, nil
}

// Name returns the full name for a code, or "(unmapped)".
func (t *Table) Name(code string) string {
	if name, ok := t.names[code]; ok && name != "" {
		return name
	}
	return UnmappedName
}

// Acronym returns the short name for a code, or the empty string.
func (t *Table) Acronym(code string) string {
	return t.acronyms[code]
}

// Has reports whether the table lists the code.
func (t *Table) Has(code string) bool {
	_, ok := t.names[code]
	return ok
}

// Codes returns the listed codes in file order.
func (t *Table) Codes() []string {
	return t.codes
}

// Len is the number of distinct listed codes.
func (t *Table) Len() int {
	return len(t.codes)
}
