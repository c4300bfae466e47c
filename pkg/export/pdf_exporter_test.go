package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()

	payload, err := exporter.Render(Dataset{
		Headers: []string{"Course Code", "Room"},
		Rows:    []map[string]string{{"Course Code": "ALG301", "Room": "A-201"}},
	}, "Final Exam Schedule")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestPDFExporterRenderSections(t *testing.T) {
	exporter := NewPDFExporter()

	payload, err := exporter.RenderSections([]Section{
		{Subtitle: "Room A-201", Data: Dataset{Headers: []string{"Student No"}, Rows: []map[string]string{{"Student No": "2026001"}}}},
		{Subtitle: "Room B-101", Data: Dataset{Headers: []string{"Student No"}}},
	}, "ALG301 Seating")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestPDFExporterRejectsEmptyInput(t *testing.T) {
	exporter := NewPDFExporter()

	_, err := exporter.Render(Dataset{}, "title")
	assert.Error(t, err)

	_, err = exporter.RenderSections(nil, "title")
	assert.Error(t, err)
}
