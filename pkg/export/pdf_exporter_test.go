package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()
	data, err := exporter.Render(Dataset{
		Headers: []string{"Student", "Score"},
		Rows:    []map[string]string{{"Student": "student-1", "Score": "80"}},
	}, "Evaluation Report - Alpha")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestPDFExporterColumnWidths(t *testing.T) {
	widths := columnWidths(8)
	require.Len(t, widths, 8)
	require.Greater(t, widths[0], widths[1])

	var total float64
	for _, w := range widths {
		total += w
	}
	require.InDelta(t, 190, total, 0.01)

	require.Equal(t, []float64{190}, columnWidths(1))
}
