package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Date", "Employee ID", "Status"},
		Rows: []map[string]string{
			{"Date": "2024-01-05", "Employee ID": "E1", "Status": "Present"},
			{"Date": "2024-01-04", "Employee ID": "E2", "Status": "Absent"},
		},
		Summary: []SummaryLine{{Label: "Total", Value: "2"}, {Label: "Attendance", Value: "50%"}},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(out))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{"Date", "Employee ID", "Status"}, records[0])
	assert.Equal(t, []string{"2024-01-04", "E2", "Absent"}, records[2])
	assert.Equal(t, []string{"Attendance", "50%"}, records[4])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Attendance Report")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset(), "Attendance")
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	require.Equal(t, "Attendance", file.GetSheetName(0))
	rows, err := file.GetRows("Attendance")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 5)
	assert.Equal(t, []string{"Date", "Employee ID", "Status"}, rows[0])
	assert.Equal(t, []string{"2024-01-05", "E1", "Present"}, rows[1])
	assert.Equal(t, []string{"Total", "2"}, rows[4])
}
