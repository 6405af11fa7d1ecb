// Package artifacts serializes aggregation results into the flat files
// the dashboard consumes. Writes are unconditional overwrites and the
// bytes are deterministic for unchanged input.
package artifacts

import (
	"encoding/csv"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"ecgdash/domain/metrics"
	"ecgdash/internal/errors"
	"ecgdash/internal/structure"

	"github.com/xuri/excelize/v2"
)

// Artifact file names under the output directory.
const (
	MetricsFile       = "metrics.json"
	TopCodesFile      = "top_codes.csv"
	CategorySplitFile = "category_split.json"
	BorderlineFile    = "borderline_breakdown.csv"
	ArrhythmiaFile    = "arrhythmia_breakdown.csv"
	ArrCodesFile      = "arrhythmia_codes.csv"
	StructureFile     = "structure.json"
	WorkbookFile      = "summary.xlsx"
	ExampleSVGFile    = "example.svg"
	ExampleLabelsFile = "example_labels.csv"
)

// CategorySplit is the category_split.json artifact.
type CategorySplit struct {
	Total      int                     `json:"total"`
	Categories []metrics.CategoryCount `json:"categories"`
}

// Writer persists run artifacts into one output directory.
type Writer struct {
	outDir string
}

// NewWriter creates a writer, creating the output directory if needed.
func NewWriter(outDir string) (*Writer, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", outDir)
	}
	return &Writer{outDir: outDir}, nil
}

// OutDir returns the output directory.
func (w *Writer) OutDir() string {
	return w.outDir
}

// WriteAll writes every aggregate artifact.
func (w *Writer) WriteAll(result *metrics.Result, s *structure.Structure) error {
	if err := w.WriteJSON(MetricsFile, result.Summary); err != nil {
		return err
	}

	topRows := make([][]string, 0, len(result.TopCodes))
	for _, tc := range result.TopCodes {
		topRows = append(topRows, []string{tc.Code, strconv.Itoa(tc.Count), tc.Name, tc.Status})
	}
	if err := w.WriteCSV(TopCodesFile, []string{"Snomed_CT", "count", "name", "status"}, topRows); err != nil {
		return err
	}

	split := CategorySplit{Total: result.TotalRecords, Categories: result.Categories}
	if err := w.WriteJSON(CategorySplitFile, split); err != nil {
		return err
	}

	borderRows := make([][]string, 0, len(result.Borderline))
	for _, b := range result.Borderline {
		borderRows = append(borderRows, []string{b.Key, b.Name, strconv.Itoa(b.Records)})
	}
	if err := w.WriteCSV(BorderlineFile, []string{"Snomed_CT", "name", "records"}, borderRows); err != nil {
		return err
	}

	groupRows := make([][]string, 0, len(result.ArrhythmiaSplit))
	for _, g := range result.ArrhythmiaSplit {
		groupRows = append(groupRows, []string{g.Name, strconv.Itoa(g.Records)})
	}
	if err := w.WriteCSV(ArrhythmiaFile, []string{"group", "records"}, groupRows); err != nil {
		return err
	}

	codeRows := make([][]string, 0, len(result.ArrhythmiaCodes))
	for _, c := range result.ArrhythmiaCodes {
		codeRows = append(codeRows, []string{c.Code, c.Name, strconv.Itoa(c.Records)})
	}
	if err := w.WriteCSV(ArrCodesFile, []string{"Snomed_CT", "name", "records"}, codeRows); err != nil {
		return err
	}

	if s != nil {
		if err := w.WriteJSON(StructureFile, s); err != nil {
			return err
		}
	}

	if err := w.writeWorkbook(result); err != nil {
		return err
	}

	log.Printf("[Writer] Wrote artifacts to %s", w.outDir)
	return nil
}

// WriteJSON marshals v with two-space indentation and a trailing newline.
func (w *Writer) WriteJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.ArtifactWrite(name, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(w.outDir, name), data, 0o644); err != nil {
		return errors.ArtifactWrite(name, err)
	}
	return nil
}

// WriteCSV writes a header row plus data rows.
func (w *Writer) WriteCSV(name string, header []string, rows [][]string) error {
	f, err := os.Create(filepath.Join(w.outDir, name))
	if err != nil {
		return errors.ArtifactWrite(name, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return errors.ArtifactWrite(name, err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return errors.ArtifactWrite(name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.ArtifactWrite(name, err)
	}
	return nil
}

// writeWorkbook exports the main tables as one XLSX workbook for
// offline use.
func (w *Writer) writeWorkbook(result *metrics.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	coverage := [][]interface{}{
		{"metric", "value"},
		{"codes_found", result.Summary.NFound},
		{"codes_listed", result.Summary.NListed},
		{"codes_missing", result.Summary.NMissing},
		{"codes_extra", result.Summary.NExtra},
		{"total_recordings", result.Summary.TotalRecordings},
		{"parsed_headers", result.Summary.ParsedHeaders},
		{"bad_headers", result.Summary.BadHeaders},
		{"total_duration_hms", result.Summary.TotalDurationHMS},
	}
	if err := writeSheet(f, "Coverage", coverage); err != nil {
		return errors.ArtifactWrite(WorkbookFile, err)
	}

	top := [][]interface{}{{"Snomed_CT", "count", "name", "status"}}
	for _, tc := range result.TopCodes {
		top = append(top, []interface{}{tc.Code, tc.Count, tc.Name, tc.Status})
	}
	if err := writeSheet(f, "Top Codes", top); err != nil {
		return errors.ArtifactWrite(WorkbookFile, err)
	}

	cats := [][]interface{}{{"category", "records"}}
	for _, c := range result.Categories {
		cats = append(cats, []interface{}{c.Category, c.Records})
	}
	if err := writeSheet(f, "Categories", cats); err != nil {
		return errors.ArtifactWrite(WorkbookFile, err)
	}

	// The default Sheet1 stays empty; drop it so the workbook opens on
	// the coverage sheet.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return errors.ArtifactWrite(WorkbookFile, err)
	}

	if err := f.SaveAs(filepath.Join(w.outDir, WorkbookFile)); err != nil {
		return errors.ArtifactWrite(WorkbookFile, err)
	}
	return nil
}

// writeSheet fills one sheet from a row matrix.
func writeSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
