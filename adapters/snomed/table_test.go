package snomed

import (
	"os"
	"path/filepath"
	"testing"

	"ecgdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const tableCSV = `Snomed_CT,Full Name,Acronym Name
426783006,Sinus Rhythm,SR
164889003,Atrial Fibrillation,AF
426177001,Sinus Bradycardia,SB
`

func writeTableCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ConditionNames_SNOMED-CT.csv")
	require.NoError(t, os.WriteFile(path, []byte(tableCSV), 0o644))
	return path
}

func TestLoadCSVTable(t *testing.T) {
	table, err := NewTableReader(writeTableCSV(t)).Load()
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"426783006", "164889003", "426177001"}, table.Codes())
	assert.Equal(t, "Sinus Rhythm", table.Name("426783006"))
	assert.Equal(t, "AF", table.Acronym("164889003"))
	assert.True(t, table.Has("426177001"))

	assert.False(t, table.Has("999999999"))
	assert.Equal(t, UnmappedName, table.Name("999999999"))
}

func TestLoadMissingTableIsFatal(t *testing.T) {
	_, err := NewTableReader(filepath.Join(t.TempDir(), "nope.csv")).Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeMappingMissing, errors.GetCode(err))
}

func TestLoadEmptyTableIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, []byte("Snomed_CT,Full Name,Acronym Name\n"), 0o644))

	_, err := NewTableReader(path).Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeMappingMissing, errors.GetCode(err))
}

func TestLoadXLSXTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conditions.xlsx")

	f := excelize.NewFile()
	rows := [][]string{
		{"Snomed_CT", "Full Name", "Acronym Name"},
		{"426783006", "Sinus Rhythm", "SR"},
		{"164890007", "Atrial Flutter", "AFL"},
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := NewTableReader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "Atrial Flutter", table.Name("164890007"))
}

func TestDuplicateCodesKeepLastNameFirstPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.csv")
	csv := "Snomed_CT,Full Name,Acronym Name\n1,First,F\n1,Second,S\n2,Other,O\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	table, err := NewTableReader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, table.Codes())
	assert.Equal(t, "Second", table.Name("1"))
}
