package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	data, err := exporter.Render(Dataset{
		Headers: []string{"Student", "Score"},
		Rows: []map[string]string{
			{"Student": "student-1", "Score": "80"},
			{"Student": "student-2", "Score": "55"},
		},
	})
	require.NoError(t, err)

	body := string(data)
	require.True(t, strings.HasPrefix(body, "\uFEFF"))
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(body, "\uFEFF")), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Student,Score", lines[0])
	require.Equal(t, "student-1,80", lines[1])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}
