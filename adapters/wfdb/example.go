package wfdb

import (
	"fmt"
	"os"
	"strings"
)

// ExampleHeader is the metadata of one record picked for the dashboard's
// example card: its lead names and diagnostic codes.
type ExampleHeader struct {
	ID        string
	LeadNames []string
	Codes     []string
}

// ReadExampleHeader parses a single header file fully, including the
// per-signal description column used as the lead name.
func ReadExampleHeader(path string) (*ExampleHeader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ex := &ExampleHeader{ID: recordID(path)}

	sawRecordLine := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if strings.HasPrefix(line, dxMarker) {
				ex.Codes = appendCodes(ex.Codes, line[len(dxMarker):])
			}
			continue
		}
		if !sawRecordLine {
			sawRecordLine = true
			continue
		}
		// Signal specification line; the trailing token is the lead name.
		tokens := strings.Fields(line)
		if len(tokens) >= 2 {
			ex.LeadNames = append(ex.LeadNames, tokens[len(tokens)-1])
		}
	}

	if !sawRecordLine {
		return nil, fmt.Errorf("no record line in %s", path)
	}
	return ex, nil
}
