// Package wfdb reads WFDB header metadata. Only the .hea text headers are
// touched; signal files are never opened.
package wfdb

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ecgdash/domain/dataset"
	"ecgdash/internal/logging"
)

// RecordsDirName is the directory under the dataset root holding the
// sharded record files.
const RecordsDirName = "WFDBRecords"

// dxMarker prefixes the diagnostic-code comment line in a header.
const dxMarker = "#Dx:"

// Scanner walks a dataset tree and extracts per-record metadata from
// WFDB headers.
type Scanner struct {
	logger *logging.Logger
}

// NewScanner creates a scanner using the default logger.
func NewScanner() *Scanner {
	return &Scanner{logger: logging.Default}
}

// Scan walks <root>/WFDBRecords for *.hea files and returns the records
// in encounter order plus the accumulated scan statistics. The walk is
// lexical, so encounter order is deterministic for a given tree.
//
// A malformed or unreadable first line increments BadHeaders; the record
// still contributes its diagnostic codes. An unreadable file is counted
// and skipped entirely.
func (s *Scanner) Scan(root string) ([]dataset.Record, *dataset.ScanStats, error) {
	recordsDir := filepath.Join(root, RecordsDirName)
	if _, err := os.Stat(recordsDir); err != nil {
		return nil, nil, fmt.Errorf("records directory not readable: %w", err)
	}

	log.Printf("[Scanner] Scanning %s", recordsDir)

	var records []dataset.Record
	stats := dataset.NewScanStats()

	err := filepath.WalkDir(recordsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".hea") {
			return nil
		}

		stats.TotalRecordings++

		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("[Scanner] Unreadable header %s: %v", path, err)
			stats.BadHeaders++
			return nil
		}

		rec := s.parseHeader(path, string(data), stats)
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk %s: %w", recordsDir, err)
	}

	log.Printf("[Scanner] Scanned %d headers (%d parsed, %d bad)",
		stats.TotalRecordings, stats.ParsedHeaders, stats.BadHeaders)

	return records, stats, nil
}

// parseHeader extracts the record from one header body, accumulating
// scalar stats for a well-formed first line.
func (s *Scanner) parseHeader(path, body string, stats *dataset.ScanStats) dataset.Record {
	rec := dataset.Record{ID: recordID(path)}

	parsedFirst := false
	sawFirst := false
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if strings.HasPrefix(line, dxMarker) {
				rec.Codes = appendCodes(rec.Codes, line[len(dxMarker):])
			}
			continue
		}
		if sawFirst {
			continue // signal specification lines
		}
		sawFirst = true

		leads, rate, samples, err := parseRecordLine(line)
		if err != nil {
			s.logger.Debug("[Scanner] %s: %v", path, err)
			continue
		}
		parsedFirst = true
		stats.ParsedHeaders++
		stats.TotalDurationSeconds += float64(samples) / rate
		stats.Durations = append(stats.Durations, float64(samples)/rate)
		stats.LeadCounts[leads]++
	}

	if !parsedFirst {
		stats.BadHeaders++
	}
	return rec
}

// parseRecordLine parses the header's record line:
//
//	name nsig fs nsamples [...]
//
// The sampling-frequency token may carry a counter frequency and base,
// e.g. "500/1000(0)"; only the leading number matters here.
func parseRecordLine(line string) (leads int, rate float64, samples int, err error) {
	tokens := strings.Fields(line)
	if len(tokens) < 4 {
		return 0, 0, 0, fmt.Errorf("record line has %d tokens, want at least 4", len(tokens))
	}

	leads, err = strconv.Atoi(tokens[1])
	if err != nil || leads <= 0 {
		return 0, 0, 0, fmt.Errorf("bad signal count %q", tokens[1])
	}

	rate, err = strconv.ParseFloat(leadingNumber(tokens[2]), 64)
	if err != nil || rate <= 0 {
		return 0, 0, 0, fmt.Errorf("bad sampling frequency %q", tokens[2])
	}

	samples, err = strconv.Atoi(tokens[3])
	if err != nil || samples <= 0 {
		return 0, 0, 0, fmt.Errorf("bad sample count %q", tokens[3])
	}

	return leads, rate, samples, nil
}

// leadingNumber strips counter-frequency and counter-base suffixes from
// the sampling-frequency token.
func leadingNumber(token string) string {
	for i, r := range token {
		if r == '/' || r == '(' {
			return token[:i]
		}
	}
	return token
}

// appendCodes splits a Dx remainder on commas, colons and whitespace and
// appends the tokens, deduplicated, preserving first-mention order.
func appendCodes(codes []string, remainder string) []string {
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		seen[c] = struct{}{}
	}
	for _, tok := range strings.FieldsFunc(remainder, func(r rune) bool {
		return r == ',' || r == ':' || r == ' ' || r == '\t'
	}) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		codes = append(codes, tok)
	}
	return codes
}

// recordID is the header file stem.
func recordID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
