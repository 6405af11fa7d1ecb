package aggregate

import (
	"os"
	"path/filepath"
	"testing"

	"ecgdash/adapters/snomed"
	"ecgdash/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tableCSV = `Snomed_CT,Full Name,Acronym Name
426783006,Sinus Rhythm,SR
164889003,Atrial Fibrillation,AF
426177001,Sinus Bradycardia,SB
59118001,Right Bundle Branch Block,RBBB
429622005,ST Drop Down,STDD
`

func loadTable(t *testing.T) *snomed.Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conditions.csv")
	require.NoError(t, os.WriteFile(path, []byte(tableCSV), 0o644))
	table, err := snomed.NewTableReader(path).Load()
	require.NoError(t, err)
	return table
}

func fixtureRecords() []dataset.Record {
	return []dataset.Record{
		{ID: "r1", Codes: []string{"426783006"}},
		{ID: "r2", Codes: []string{"426783006"}},
		{ID: "r3"},
		{ID: "r4", Codes: []string{"426177001", "427393009"}},
		{ID: "r5", Codes: []string{"164889003", "59118001"}},
		{ID: "r6", Codes: []string{"59118001"}},
		{ID: "r7", Codes: []string{"429622005"}},
		{ID: "r8", Codes: []string{"55827005"}},
	}
}

func fixtureStats() *dataset.ScanStats {
	stats := dataset.NewScanStats()
	stats.TotalRecordings = 8
	stats.ParsedHeaders = 7
	stats.BadHeaders = 1
	stats.Durations = []float64{10, 10, 10, 10, 10, 10, 8}
	for _, d := range stats.Durations {
		stats.TotalDurationSeconds += d
	}
	stats.LeadCounts[12] = 7
	return stats
}

func TestAggregateCoverageIdentity(t *testing.T) {
	table := loadTable(t)
	result := NewAggregator(table, 15).Aggregate(fixtureRecords(), fixtureStats())

	summary := result.Summary
	assert.Equal(t, 7, summary.NFound)
	assert.Equal(t, 5, summary.NListed)
	assert.Equal(t, 0, summary.NMissing)
	assert.Equal(t, 2, summary.NExtra)

	// n_missing + |found ∩ listed| = n_listed
	intersection := summary.NFound - summary.NExtra
	assert.Equal(t, summary.NListed, summary.NMissing+intersection)
}

func TestAggregateCategoryCountsSumToTotal(t *testing.T) {
	table := loadTable(t)
	result := NewAggregator(table, 15).Aggregate(fixtureRecords(), fixtureStats())

	sum := 0
	byName := map[string]int{}
	for _, c := range result.Categories {
		sum += c.Records
		byName[c.Category] = c.Records
	}
	assert.Equal(t, result.TotalRecords, sum)
	assert.Equal(t, 8, result.TotalRecords)

	assert.Equal(t, 2, byName["normal"])
	assert.Equal(t, 1, byName["borderline"])
	assert.Equal(t, 4, byName["arrhythmia"])
	assert.Equal(t, 1, byName["unlabeled"])
}

func TestAggregateTopCodesOrderAndBound(t *testing.T) {
	table := loadTable(t)
	result := NewAggregator(table, 3).Aggregate(fixtureRecords(), fixtureStats())

	require.Len(t, result.TopCodes, 3)

	// Descending by count; ties keep encounter order.
	assert.Equal(t, "426783006", result.TopCodes[0].Code)
	assert.Equal(t, 2, result.TopCodes[0].Count)
	assert.Equal(t, "59118001", result.TopCodes[1].Code)
	assert.Equal(t, 2, result.TopCodes[1].Count)
	assert.Equal(t, "426177001", result.TopCodes[2].Code)
	assert.Equal(t, 1, result.TopCodes[2].Count)

	assert.Equal(t, "Sinus Rhythm", result.TopCodes[0].Name)
	assert.Equal(t, "Mapped", result.TopCodes[0].Status)
}

func TestAggregateUnmappedStatus(t *testing.T) {
	table := loadTable(t)
	result := NewAggregator(table, 15).Aggregate(fixtureRecords(), fixtureStats())

	statuses := map[string]string{}
	for _, tc := range result.TopCodes {
		statuses[tc.Code] = tc.Status
	}
	assert.Equal(t, "Unmapped", statuses["427393009"])
	assert.Equal(t, "Unmapped", statuses["55827005"])
	assert.Equal(t, "Mapped", statuses["164889003"])
}

func TestAggregateSubBuckets(t *testing.T) {
	table := loadTable(t)
	result := NewAggregator(table, 15).Aggregate(fixtureRecords(), fixtureStats())

	require.Len(t, result.Borderline, 3)
	assert.Equal(t, 1, result.Borderline[0].Records) // Sinus Bradycardia
	assert.Equal(t, 0, result.Borderline[1].Records) // Sinus Tachycardia
	assert.Equal(t, 1, result.Borderline[2].Records) // Sinus Irregularity

	groups := map[string]int{}
	arrTotal := 0
	for _, g := range result.ArrhythmiaSplit {
		groups[g.Name] = g.Records
		arrTotal += g.Records
	}
	assert.Equal(t, 1, groups["AF/AFL"])
	assert.Equal(t, 1, groups["Conduction block"])
	assert.Equal(t, 1, groups["ST/T change"])
	assert.Equal(t, 1, groups["Other"])
	assert.Equal(t, 4, arrTotal)
}

func TestAggregateArrhythmiaCodeTable(t *testing.T) {
	table := loadTable(t)
	result := NewAggregator(table, 15).Aggregate(fixtureRecords(), fixtureStats())

	require.Len(t, result.ArrhythmiaCodes, 4)
	assert.Equal(t, "59118001", result.ArrhythmiaCodes[0].Code)
	assert.Equal(t, 2, result.ArrhythmiaCodes[0].Records)

	// Ties keep arrhythmia encounter order.
	assert.Equal(t, "164889003", result.ArrhythmiaCodes[1].Code)
	assert.Equal(t, "429622005", result.ArrhythmiaCodes[2].Code)
	assert.Equal(t, "55827005", result.ArrhythmiaCodes[3].Code)
}

func TestAggregateDurationStats(t *testing.T) {
	table := loadTable(t)
	result := NewAggregator(table, 15).Aggregate(fixtureRecords(), fixtureStats())

	d := result.Summary.Duration
	assert.InDelta(t, 9.71, d.Mean, 0.01)
	assert.Equal(t, 10.0, d.Median)
	assert.Equal(t, 8.0, d.Min)
	assert.Equal(t, 10.0, d.Max)

	total := 0
	for _, c := range d.HistogramCounts {
		total += c
	}
	assert.Equal(t, 7, total)
	assert.Len(t, d.HistogramEdges, len(d.HistogramCounts)+1)

	assert.Equal(t, "00:01:08", result.Summary.TotalDurationHMS)
	assert.Equal(t, 68.0, result.Summary.TotalDurationSeconds)
}

func TestAggregateEmptyInput(t *testing.T) {
	table := loadTable(t)
	result := NewAggregator(table, 15).Aggregate(nil, dataset.NewScanStats())

	assert.Equal(t, 0, result.TotalRecords)
	assert.Empty(t, result.TopCodes)
	assert.Equal(t, 0, result.Summary.NFound)
	assert.Equal(t, 5, result.Summary.NMissing)
	assert.Equal(t, "00:00:00", result.Summary.TotalDurationHMS)
}

func TestFormatHMS(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatHMS(0))
	assert.Equal(t, "00:00:10", FormatHMS(10))
	assert.Equal(t, "01:01:01", FormatHMS(3661))
	assert.Equal(t, "125:24:00", FormatHMS(451440))
}

func TestDurationHistogramSingleValue(t *testing.T) {
	edges, counts := durationHistogram([]float64{10, 10, 10}, 10, 10)
	require.Len(t, counts, 1)
	assert.Equal(t, 3, counts[0])
	require.Len(t, edges, 2)
}
