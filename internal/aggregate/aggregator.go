// Package aggregate computes the run's summary tables from the scanned
// records: coverage, code frequencies, the category split and its
// sub-breakdowns, and duration statistics.
package aggregate

import (
	"fmt"
	"log"
	"math"
	"sort"

	"ecgdash/adapters/snomed"
	"ecgdash/domain/classify"
	"ecgdash/domain/dataset"
	"ecgdash/domain/metrics"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// histogramBins is the fixed bin count of the duration histogram.
const histogramBins = 10

// Aggregator tallies one pass over the record collection.
type Aggregator struct {
	table *snomed.Table
	topN  int
}

// NewAggregator creates an aggregator bound to a condition table.
func NewAggregator(table *snomed.Table, topN int) *Aggregator {
	return &Aggregator{table: table, topN: topN}
}

// Aggregate computes every table of the run. Codes are counted once per
// record per code; ties in frequency tables keep input encounter order.
func (a *Aggregator) Aggregate(records []dataset.Record, scan *dataset.ScanStats) *metrics.Result {
	log.Printf("[Aggregator] Aggregating %d records (top %d codes)", len(records), a.topN)

	freq := make(map[string]int)
	var encounterOrder []string

	categoryCounts := make(map[classify.Category]int)
	var borderlineCounts [3]int
	groupCounts := make(map[string]int)

	arrFreq := make(map[string]int)
	var arrOrder []string

	for _, rec := range records {
		for _, code := range rec.Codes {
			if freq[code] == 0 {
				encounterOrder = append(encounterOrder, code)
			}
			freq[code]++
		}

		res := classify.Classify(rec.Codes)
		categoryCounts[res.Category]++

		switch res.Category {
		case classify.CategoryBorderline:
			for i, hit := range res.BorderlineHits {
				if hit {
					borderlineCounts[i]++
				}
			}
		case classify.CategoryArrhythmia:
			groupCounts[res.Group]++
			for _, code := range rec.Codes {
				if arrFreq[code] == 0 {
					arrOrder = append(arrOrder, code)
				}
				arrFreq[code]++
			}
		}
	}

	result := &metrics.Result{
		Summary:         a.buildSummary(freq, scan),
		TopCodes:        a.buildTopCodes(freq, encounterOrder),
		TotalRecords:    len(records),
		ArrhythmiaCodes: a.buildCodeOccurrences(arrFreq, arrOrder),
	}

	for _, cat := range classify.Categories {
		result.Categories = append(result.Categories, metrics.CategoryCount{
			Category: string(cat),
			Records:  categoryCounts[cat],
		})
	}

	for i, bc := range classify.BorderlineCodes {
		result.Borderline = append(result.Borderline, metrics.SubBucket{
			Key:     bc.Code,
			Name:    bc.Name,
			Records: borderlineCounts[i],
		})
	}

	for _, name := range classify.GroupNames() {
		result.ArrhythmiaSplit = append(result.ArrhythmiaSplit, metrics.SubBucket{
			Key:     name,
			Name:    name,
			Records: groupCounts[name],
		})
	}

	return result
}

// buildSummary combines coverage metrics with the scan scalars.
func (a *Aggregator) buildSummary(freq map[string]int, scan *dataset.ScanStats) metrics.Summary {
	missing := 0
	for _, code := range a.table.Codes() {
		if freq[code] == 0 {
			missing++
		}
	}
	extra := 0
	for code := range freq {
		if !a.table.Has(code) {
			extra++
		}
	}

	return metrics.Summary{
		Coverage: metrics.Coverage{
			NFound:   len(freq),
			NListed:  a.table.Len(),
			NMissing: missing,
			NExtra:   extra,
		},
		TotalRecordings:      scan.TotalRecordings,
		ParsedHeaders:        scan.ParsedHeaders,
		BadHeaders:           scan.BadHeaders,
		TotalDurationSeconds: round2(scan.TotalDurationSeconds),
		TotalDurationHMS:     FormatHMS(scan.TotalDurationSeconds),
		Duration:             durationStats(scan.Durations),
	}
}

// buildTopCodes sorts codes by descending count, ties kept in encounter
// order, truncated to top N.
func (a *Aggregator) buildTopCodes(freq map[string]int, encounterOrder []string) []metrics.TopCode {
	codes := make([]string, len(encounterOrder))
	copy(codes, encounterOrder)
	sort.SliceStable(codes, func(i, j int) bool {
		return freq[codes[i]] > freq[codes[j]]
	})
	if len(codes) > a.topN {
		codes = codes[:a.topN]
	}

	top := make([]metrics.TopCode, 0, len(codes))
	for _, code := range codes {
		name := a.table.Name(code)
		status := "Mapped"
		if name == snomed.UnmappedName {
			status = "Unmapped"
		}
		top = append(top, metrics.TopCode{
			Code:   code,
			Count:  freq[code],
			Name:   name,
			Status: status,
		})
	}
	return top
}

// buildCodeOccurrences orders the arrhythmia code table by descending
// record count, ties in encounter order.
func (a *Aggregator) buildCodeOccurrences(freq map[string]int, order []string) []metrics.CodeOccurrence {
	codes := make([]string, len(order))
	copy(codes, order)
	sort.SliceStable(codes, func(i, j int) bool {
		return freq[codes[i]] > freq[codes[j]]
	})

	rows := make([]metrics.CodeOccurrence, 0, len(codes))
	for _, code := range codes {
		rows = append(rows, metrics.CodeOccurrence{
			Code:    code,
			Name:    a.table.Name(code),
			Records: freq[code],
		})
	}
	return rows
}

// durationStats summarizes the per-record durations of parsed headers.
func durationStats(durations []float64) metrics.DurationStats {
	if len(durations) == 0 {
		return metrics.DurationStats{}
	}

	mean, _ := stats.Mean(durations)
	median, _ := stats.Median(durations)
	min, _ := stats.Min(durations)
	max, _ := stats.Max(durations)

	edges, counts := durationHistogram(durations, min, max)

	return metrics.DurationStats{
		Mean:            round2(mean),
		Median:          round2(median),
		Min:             round2(min),
		Max:             round2(max),
		HistogramEdges:  edges,
		HistogramCounts: counts,
	}
}

// durationHistogram bins durations into fixed-width buckets. The top
// edge is nudged up so the maximum lands in the last bucket.
func durationHistogram(durations []float64, min, max float64) ([]float64, []int) {
	if max <= min {
		return []float64{round2(min), round2(min + 1)}, []int{len(durations)}
	}

	sorted := make([]float64, len(durations))
	copy(sorted, durations)
	sort.Float64s(sorted)

	dividers := make([]float64, histogramBins+1)
	floats.Span(dividers, min, max)
	dividers[histogramBins] = math.Nextafter(max, math.Inf(1))

	binned := stat.Histogram(nil, dividers, sorted, nil)

	edges := make([]float64, len(dividers))
	for i, d := range dividers {
		edges[i] = round2(d)
	}
	counts := make([]int, len(binned))
	for i, c := range binned {
		counts[i] = int(c)
	}
	return edges, counts
}

// FormatHMS renders seconds as hh:mm:ss with unbounded hours.
func FormatHMS(seconds float64) string {
	total := int(math.Round(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// round2 keeps artifact floats stable and readable.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
