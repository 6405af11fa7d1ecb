// Package structure summarizes the on-disk layout of the dataset for the
// dashboard overview card: top-level files, shard counts, one example
// record directory, and compact ASCII trees.
package structure

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ecgdash/adapters/wfdb"
)

const (
	maxTreeDepth    = 2
	maxTreeItems    = 12
	maxExampleItems = 8
	maxShardSample  = 12
	maxSamplePairs  = 8
)

// ignored names are tooling droppings, not dataset content.
var ignored = map[string]struct{}{
	".ipynb_checkpoints": {},
	".DS_Store":          {},
	"__pycache__":        {},
}

// RecordPair is one .hea/.mat stem pairing in the example directory.
type RecordPair struct {
	Stem string `json:"stem"`
	Hea  string `json:"hea"`
	Mat  string `json:"mat"`
}

// RecordDirSummary describes one record directory.
type RecordDirSummary struct {
	DirName   string       `json:"dir_name"`
	NHea      int          `json:"n_hea"`
	NMat      int          `json:"n_mat"`
	NPaired   int          `json:"n_paired"`
	Samples   []RecordPair `json:"samples"`
	NMorePair int          `json:"n_more_pairs"`
}

// Structure is the structure.json artifact.
type Structure struct {
	TopLevelFiles []string          `json:"top_level_files"`
	ShardCount    int               `json:"wfdb_shards_count"`
	ShardSample   []string          `json:"wfdb_shards_sample"`
	ExampleRecord *RecordDirSummary `json:"example_record_summary"`
	TreeTop       string            `json:"tree_top"`
	TreeExample   string            `json:"tree_example"`
}

// Describe walks the dataset root and builds the structure summary.
func Describe(root string) (*Structure, error) {
	log.Printf("[Structure] Describing %s", root)

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("dataset root not readable: %w", err)
	}

	s := &Structure{ShardSample: []string{}, TopLevelFiles: []string{}}
	for _, e := range entries {
		if _, skip := ignored[e.Name()]; skip {
			continue
		}
		if !e.IsDir() {
			s.TopLevelFiles = append(s.TopLevelFiles, e.Name())
		}
	}
	sort.Strings(s.TopLevelFiles)

	recordsDir := filepath.Join(root, wfdb.RecordsDirName)
	if shards, err := os.ReadDir(recordsDir); err == nil {
		for _, e := range shards {
			if !e.IsDir() {
				continue
			}
			s.ShardCount++
			if len(s.ShardSample) < maxShardSample {
				s.ShardSample = append(s.ShardSample, e.Name())
			}
		}
	}

	var exampleDir string
	if dir, err := FirstRecordDir(recordsDir); err == nil {
		exampleDir = dir
		summary, err := summarizeRecordDir(dir)
		if err == nil {
			s.ExampleRecord = summary
		}
	}

	s.TreeTop = CompactTree(root, maxTreeDepth, maxTreeItems)
	if exampleDir != "" {
		s.TreeExample = CompactTree(exampleDir, maxTreeDepth, maxExampleItems)
	}

	return s, nil
}

// FirstRecordDir finds the lexically first directory below root that
// holds .hea or .mat files.
func FirstRecordDir(root string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if found != "" {
			return filepath.SkipAll
		}
		if !d.IsDir() {
			ext := filepath.Ext(d.Name())
			if ext == ".hea" || ext == ".mat" {
				found = filepath.Dir(path)
				return filepath.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("no record directory under %s", root)
	}
	return found, nil
}

// summarizeRecordDir counts headers, signal files and paired stems in
// one record directory.
func summarizeRecordDir(dir string) (*RecordDirSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	heaStems := make(map[string]struct{})
	matStems := make(map[string]struct{})
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		switch filepath.Ext(e.Name()) {
		case ".hea":
			heaStems[stem] = struct{}{}
		case ".mat":
			matStems[stem] = struct{}{}
		}
	}

	var paired []string
	for stem := range heaStems {
		if _, ok := matStems[stem]; ok {
			paired = append(paired, stem)
		}
	}
	sort.Strings(paired)

	summary := &RecordDirSummary{
		DirName: filepath.Base(dir),
		NHea:    len(heaStems),
		NMat:    len(matStems),
		NPaired: len(paired),
		Samples: []RecordPair{},
	}
	for _, stem := range paired {
		if len(summary.Samples) == maxSamplePairs {
			break
		}
		summary.Samples = append(summary.Samples, RecordPair{
			Stem: stem,
			Hea:  stem + ".hea",
			Mat:  stem + ".mat",
		})
	}
	summary.NMorePair = len(paired) - len(summary.Samples)

	return summary, nil
}

// CompactTree renders an ASCII tree of root, directories first, capped
// at maxDepth levels and maxItems entries per directory.
func CompactTree(root string, maxDepth, maxItems int) string {
	lines := []string{filepath.Base(root)}
	lines = append(lines, treeLines(root, "", 1, maxDepth, maxItems)...)
	return strings.Join(lines, "\n")
}

func treeLines(dir, prefix string, depth, maxDepth, maxItems int) []string {
	if depth > maxDepth {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	kids := entries[:0]
	for _, e := range entries {
		if _, skip := ignored[e.Name()]; !skip {
			kids = append(kids, e)
		}
	}
	// Directories first, then case-insensitive by name.
	sort.SliceStable(kids, func(i, j int) bool {
		if kids[i].IsDir() != kids[j].IsDir() {
			return kids[i].IsDir()
		}
		return strings.ToLower(kids[i].Name()) < strings.ToLower(kids[j].Name())
	})

	shown := kids
	if len(shown) > maxItems {
		shown = shown[:maxItems]
	}
	hidden := len(kids) - len(shown)

	var lines []string
	for i, e := range shown {
		last := i == len(shown)-1 && hidden == 0
		connector := "├── "
		childPrefix := prefix + "│   "
		if last {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		lines = append(lines, prefix+connector+e.Name())
		if e.IsDir() {
			lines = append(lines, treeLines(filepath.Join(dir, e.Name()), childPrefix, depth+1, maxDepth, maxItems)...)
		}
	}
	if hidden > 0 {
		lines = append(lines, fmt.Sprintf("%s└── … (+%d more)", prefix, hidden))
	}
	return lines
}
