package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFRenderProducesDocument(t *testing.T) {
	data, err := NewPDFExporter().Render(Dataset{
		Headers: []string{"Subject", "Present", "Total"},
		Rows:    [][]string{{"DSA", "9", "10"}},
	}, "Attendance Report")
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestPDFRenderRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}
