package ui

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"ecgdash/adapters/artifacts"
	"ecgdash/domain/metrics"
	"ecgdash/internal/logging"
	"ecgdash/internal/structure"

	"golang.org/x/sync/singleflight"
)

// snapshotTTL bounds how stale the cached artifact snapshot may get
// before a request triggers a reload.
const snapshotTTL = 5 * time.Second

// LabelRow is one row of the example label table.
type LabelRow struct {
	Code string `json:"snomed_ct"`
	Name string `json:"name"`
}

// Snapshot is one consistent read of the artifact directory. Sections
// whose files are missing stay nil; the dashboard renders degraded
// rather than failing.
type Snapshot struct {
	Summary         *metrics.Summary
	Split           *artifacts.CategorySplit
	TopCodes        []metrics.TopCode
	Borderline      []metrics.SubBucket
	ArrhythmiaSplit []metrics.SubBucket
	ArrhythmiaCodes []metrics.CodeOccurrence
	Structure       *structure.Structure
	ExampleLabels   []LabelRow
	LoadedAt        time.Time
}

// Store reads dashboard artifacts from the output directory, caching
// them briefly. Concurrent reloads collapse into one read.
type Store struct {
	dir    string
	logger *logging.Logger

	mu     sync.RWMutex
	cached *Snapshot
	group  singleflight.Group
}

// NewStore creates a store over an artifact directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir, logger: logging.Default}
}

// Dir returns the artifact directory.
func (s *Store) Dir() string {
	return s.dir
}

// Snapshot returns the current artifact snapshot, reloading when the
// cache has expired.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil && time.Since(cached.LoadedAt) < snapshotTTL {
		return cached
	}

	v, _, _ := s.group.Do("snapshot", func() (interface{}, error) {
		snap := s.load()
		s.mu.Lock()
		s.cached = snap
		s.mu.Unlock()
		return snap, nil
	})
	return v.(*Snapshot)
}

// load reads every artifact that exists. Missing files are expected
// before the first prepare run and simply leave their section nil.
func (s *Store) load() *Snapshot {
	snap := &Snapshot{LoadedAt: time.Now()}

	var summary metrics.Summary
	if s.readJSON(artifacts.MetricsFile, &summary) {
		snap.Summary = &summary
	}

	var split artifacts.CategorySplit
	if s.readJSON(artifacts.CategorySplitFile, &split) {
		snap.Split = &split
	}

	var tree structure.Structure
	if s.readJSON(artifacts.StructureFile, &tree) {
		snap.Structure = &tree
	}

	for _, row := range s.readCSV(artifacts.TopCodesFile) {
		if len(row) < 4 {
			continue
		}
		count, _ := strconv.Atoi(row[1])
		snap.TopCodes = append(snap.TopCodes, metrics.TopCode{
			Code: row[0], Count: count, Name: row[2], Status: row[3],
		})
	}

	for _, row := range s.readCSV(artifacts.BorderlineFile) {
		if len(row) < 3 {
			continue
		}
		records, _ := strconv.Atoi(row[2])
		snap.Borderline = append(snap.Borderline, metrics.SubBucket{
			Key: row[0], Name: row[1], Records: records,
		})
	}

	for _, row := range s.readCSV(artifacts.ArrhythmiaFile) {
		if len(row) < 2 {
			continue
		}
		records, _ := strconv.Atoi(row[1])
		snap.ArrhythmiaSplit = append(snap.ArrhythmiaSplit, metrics.SubBucket{
			Key: row[0], Name: row[0], Records: records,
		})
	}

	for _, row := range s.readCSV(artifacts.ArrCodesFile) {
		if len(row) < 3 {
			continue
		}
		records, _ := strconv.Atoi(row[2])
		snap.ArrhythmiaCodes = append(snap.ArrhythmiaCodes, metrics.CodeOccurrence{
			Code: row[0], Name: row[1], Records: records,
		})
	}

	for _, row := range s.readCSV(artifacts.ExampleLabelsFile) {
		if len(row) < 2 {
			continue
		}
		snap.ExampleLabels = append(snap.ExampleLabels, LabelRow{Code: row[0], Name: row[1]})
	}

	return snap
}

func (s *Store) readJSON(name string, v interface{}) bool {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("[Store] Failed to read %s: %v", name, err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("[Store] Failed to parse %s: %v", name, err)
		return false
	}
	return true
}

// readCSV returns the data rows of a headered CSV artifact, or nil.
func (s *Store) readCSV(name string) [][]string {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("[Store] Failed to open %s: %v", name, err)
		}
		return nil
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil || len(rows) < 2 {
		return nil
	}
	return rows[1:]
}
