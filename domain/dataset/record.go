package dataset

// Record is one ECG recording as seen through its WFDB header file.
// The ID is the header file stem; Codes holds the SNOMED-CT diagnostic
// codes from the #Dx comment line, deduplicated in first-mention order.
// Records are immutable after parsing.
type Record struct {
	ID    string
	Codes []string
}

// CodeSet returns the record's codes as a membership set.
func (r Record) CodeSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Codes))
	for _, c := range r.Codes {
		set[c] = struct{}{}
	}
	return set
}

// ScanStats accumulates the scalar statistics of one scanner pass.
type ScanStats struct {
	// TotalRecordings counts every header file encountered.
	TotalRecordings int
	// ParsedHeaders counts headers whose first line parsed cleanly.
	ParsedHeaders int
	// BadHeaders counts headers with a malformed or unreadable first line.
	// Those records still contribute diagnostic codes.
	BadHeaders int
	// TotalDurationSeconds sums samples/rate over parsed headers.
	TotalDurationSeconds float64
	// Durations holds per-record durations (parsed headers only), in
	// encounter order, for downstream summary statistics.
	Durations []float64
	// LeadCounts tallies signal counts per parsed header, e.g. 12 -> 45152.
	LeadCounts map[int]int
}

// NewScanStats returns empty stats ready for accumulation.
func NewScanStats() *ScanStats {
	return &ScanStats{LeadCounts: make(map[int]int)}
}
