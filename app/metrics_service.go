// Package app wires the metrics-preparation pipeline: scan headers,
// classify records, aggregate, describe the tree and write artifacts.
package app

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ecgdash/adapters/artifacts"
	"ecgdash/adapters/snomed"
	"ecgdash/adapters/wfdb"
	"ecgdash/domain/metrics"
	"ecgdash/internal/aggregate"
	"ecgdash/internal/structure"
)

// MetricsService runs the sequential metrics-preparation pass. Re-running
// on unchanged input produces byte-identical artifacts.
type MetricsService struct {
	scanner *wfdb.Scanner
	topN    int
}

// NewMetricsService creates the service with the given top-N bound.
func NewMetricsService(topN int) *MetricsService {
	return &MetricsService{scanner: wfdb.NewScanner(), topN: topN}
}

// Run executes one full pass rooted at the dataset directory and writes
// every artifact into outDir. conditionFile may be empty, in which case
// the table is loaded from its default location under root. A missing
// condition table is fatal.
func (s *MetricsService) Run(root, conditionFile, outDir string) (*metrics.Result, error) {
	if conditionFile == "" {
		conditionFile = filepath.Join(root, snomed.DefaultFileName)
	}

	table, err := snomed.NewTableReader(conditionFile).Load()
	if err != nil {
		return nil, err
	}

	records, scanStats, err := s.scanner.Scan(root)
	if err != nil {
		return nil, err
	}

	result := aggregate.NewAggregator(table, s.topN).Aggregate(records, scanStats)

	s.logSplit(result)

	tree, err := structure.Describe(root)
	if err != nil {
		return nil, err
	}

	writer, err := artifacts.NewWriter(outDir)
	if err != nil {
		return nil, err
	}
	if err := writer.WriteAll(result, tree); err != nil {
		return nil, err
	}
	if err := writer.WriteExample(root, s.findExample(root), table.Name); err != nil {
		return nil, err
	}

	return result, nil
}

// Describe writes only the structure.json artifact.
func (s *MetricsService) Describe(root, outDir string) (*structure.Structure, error) {
	tree, err := structure.Describe(root)
	if err != nil {
		return nil, err
	}
	writer, err := artifacts.NewWriter(outDir)
	if err != nil {
		return nil, err
	}
	if err := writer.WriteJSON(artifacts.StructureFile, tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// findExample picks the lexically first header below the records tree.
// Absence of any record is not an error here; the writer degrades to a
// placeholder.
func (s *MetricsService) findExample(root string) *wfdb.ExampleHeader {
	recordsDir := filepath.Join(root, wfdb.RecordsDirName)
	dir, err := structure.FirstRecordDir(recordsDir)
	if err != nil {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var headers []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".hea") {
			headers = append(headers, e.Name())
		}
	}
	if len(headers) == 0 {
		return nil
	}
	sort.Strings(headers)

	example, err := wfdb.ReadExampleHeader(filepath.Join(dir, headers[0]))
	if err != nil {
		return nil
	}
	return example
}

func (s *MetricsService) logSplit(result *metrics.Result) {
	for _, c := range result.Categories {
		log.Printf("[MetricsService] %s: %d records", c.Category, c.Records)
	}
}
