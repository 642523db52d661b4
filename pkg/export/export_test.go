package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Title:    "Lessons",
		Subtitle: "Math A",
		Columns: []Column{
			{Key: "date", Label: "Date", Width: 2},
			{Key: "status", Label: "Status"},
			{Key: "room"},
		},
		Rows: []map[string]string{
			{"date": "2024-09-02", "status": "planned", "room": "R1"},
			{"date": "2024-09-04", "status": "planned, moved"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleTable())
	require.NoError(t, err)
	assert.Equal(t, "Date,Status,room\n2024-09-02,planned,R1\n2024-09-04,\"planned, moved\",\n", string(out))
}

func TestExportersRejectEmptyColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Table{})
	require.Error(t, err)
	_, err = NewPDFExporter().Render(Table{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	table := sampleTable()
	for i := 0; i < 80; i++ {
		table.Rows = append(table.Rows, map[string]string{"date": "2024-10-01", "status": "planned"})
	}
	out, err := NewPDFExporter().Render(table)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestColumnWidthsFillPage(t *testing.T) {
	widths := columnWidths(sampleTable().Columns)
	require.Len(t, widths, 3)
	assert.InDelta(t, 95.0, widths[0], 0.001)
	assert.InDelta(t, 47.5, widths[1], 0.001)
	assert.InDelta(t, pdfUsableWidth, widths[0]+widths[1]+widths[2], 0.001)
}
