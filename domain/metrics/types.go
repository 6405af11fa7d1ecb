// Package metrics defines the aggregate result types produced by one
// metrics-preparation run and serialized into the dashboard artifacts.
package metrics

// Coverage compares codes observed in headers against the condition table.
type Coverage struct {
	NFound   int `json:"n_found"`
	NListed  int `json:"n_listed"`
	NMissing int `json:"n_missing"`
	NExtra   int `json:"n_extra"`
}

// TopCode is one row of the top-N code frequency table.
type TopCode struct {
	Code   string `json:"snomed_ct"`
	Count  int    `json:"count"`
	Name   string `json:"name"`
	Status string `json:"status"` // Mapped or Unmapped
}

// CategoryCount is one row of the category split.
type CategoryCount struct {
	Category string `json:"category"`
	Records  int    `json:"records"`
}

// SubBucket is a named sub-breakdown row (borderline sub-codes or
// arrhythmia groups).
type SubBucket struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Records int    `json:"records"`
}

// CodeOccurrence is one row of the per-arrhythmia-code table: how many
// arrhythmia records carry a given code.
type CodeOccurrence struct {
	Code    string `json:"snomed_ct"`
	Name    string `json:"name"`
	Records int    `json:"records"`
}

// DurationStats summarizes per-record durations, in seconds.
type DurationStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	// HistogramEdges has len(HistogramCounts)+1 entries; bin i covers
	// [HistogramEdges[i], HistogramEdges[i+1]).
	HistogramEdges  []float64 `json:"histogram_edges"`
	HistogramCounts []int     `json:"histogram_counts"`
}

// Summary is the metrics.json artifact: coverage plus the scan scalars
// the dashboard overview card displays.
type Summary struct {
	Coverage

	TotalRecordings      int     `json:"total_recordings"`
	ParsedHeaders        int     `json:"parsed_headers"`
	BadHeaders           int     `json:"bad_headers"`
	TotalDurationSeconds float64 `json:"total_duration_seconds"`
	TotalDurationHMS     string  `json:"total_duration_hms"`

	Duration DurationStats `json:"duration"`
}

// Result bundles every table of one aggregation run.
type Result struct {
	Summary         Summary
	TopCodes        []TopCode
	Categories      []CategoryCount
	TotalRecords    int
	Borderline      []SubBucket
	ArrhythmiaSplit []SubBucket
	ArrhythmiaCodes []CodeOccurrence
}
