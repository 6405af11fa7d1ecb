package wfdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHeader(t *testing.T, root, shard, name, body string) {
	t.Helper()
	dir := filepath.Join(root, RecordsDirName, shard)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".hea"), []byte(body), 0o644))
}

const goodHeader = `JS00001 12 500 5000 15-May-2020 12:00:00
JS00001.mat 16+24 1000/mV 16 0 28 -1716 0 I
JS00001.mat 16+24 1000/mV 16 0 7 2029 0 II
#Age: 85
#Sex: Male
#Dx: 164889003,59118001
`

func TestScanParsesHeaders(t *testing.T) {
	root := t.TempDir()
	writeHeader(t, root, "01/010", "JS00001", goodHeader)

	records, stats, err := NewScanner().Scan(root)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "JS00001", records[0].ID)
	assert.Equal(t, []string{"164889003", "59118001"}, records[0].Codes)

	assert.Equal(t, 1, stats.TotalRecordings)
	assert.Equal(t, 1, stats.ParsedHeaders)
	assert.Equal(t, 0, stats.BadHeaders)
	assert.InDelta(t, 10.0, stats.TotalDurationSeconds, 1e-9)
	assert.Equal(t, 1, stats.LeadCounts[12])
}

func TestScanMalformedFirstLineStillYieldsCodes(t *testing.T) {
	root := t.TempDir()
	writeHeader(t, root, "01/010", "JS00002", "JS00002 twelve 500\n#Dx: 426783006\n")

	records, stats, err := NewScanner().Scan(root)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, []string{"426783006"}, records[0].Codes)
	assert.Equal(t, 1, stats.TotalRecordings)
	assert.Equal(t, 0, stats.ParsedHeaders)
	assert.Equal(t, 1, stats.BadHeaders)
	assert.Empty(t, stats.Durations)
}

func TestScanDeduplicatesCodesPerRecord(t *testing.T) {
	root := t.TempDir()
	writeHeader(t, root, "01/010", "JS00003",
		"JS00003 12 500 5000\n#Dx: 164889003, 164889003 ,59118001\n#Dx: 164889003\n")

	records, _, err := NewScanner().Scan(root)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"164889003", "59118001"}, records[0].Codes)
}

func TestScanEncounterOrderIsLexical(t *testing.T) {
	root := t.TempDir()
	writeHeader(t, root, "02/020", "JS00020", "JS00020 12 500 5000\n#Dx: 2\n")
	writeHeader(t, root, "01/010", "JS00010", "JS00010 12 500 5000\n#Dx: 1\n")

	records, _, err := NewScanner().Scan(root)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "JS00010", records[0].ID)
	assert.Equal(t, "JS00020", records[1].ID)
}

func TestScanMissingRecordsDirFails(t *testing.T) {
	_, _, err := NewScanner().Scan(t.TempDir())
	assert.Error(t, err)
}

func TestParseRecordLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr bool
		rate    float64
		samples int
		leads   int
	}{
		{"plain", "JS00001 12 500 5000", false, 500, 5000, 12},
		{"counter frequency suffix", "JS00001 12 500/1000(0) 5000", false, 500, 5000, 12},
		{"counter base suffix", "JS00001 12 500(0) 5000", false, 500, 5000, 12},
		{"too few tokens", "JS00001 12 500", true, 0, 0, 0},
		{"bad rate", "JS00001 12 fast 5000", true, 0, 0, 0},
		{"zero samples", "JS00001 12 500 0", true, 0, 0, 0},
		{"bad leads", "JS00001 0 500 5000", true, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leads, rate, samples, err := parseRecordLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.leads, leads)
			assert.Equal(t, tt.rate, rate)
			assert.Equal(t, tt.samples, samples)
		})
	}
}

func TestReadExampleHeader(t *testing.T) {
	root := t.TempDir()
	writeHeader(t, root, "01/010", "JS00001", goodHeader)

	path := filepath.Join(root, RecordsDirName, "01/010", "JS00001.hea")
	example, err := ReadExampleHeader(path)
	require.NoError(t, err)

	assert.Equal(t, "JS00001", example.ID)
	assert.Equal(t, []string{"I", "II"}, example.LeadNames)
	assert.Equal(t, []string{"164889003", "59118001"}, example.Codes)
}
