package trace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteHTMLRendersSummaryAndTasks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	report := HTMLReport{
		System: SystemRow{
			Jobs:       []string{"app1", "app2"},
			DVFSModes:  []string{"performance"},
			ExecTimeUs: 12345,
			EnergyJ:    0.987,
			EDP:        1200.5,
		},
		Tasks: []TaskRow{
			{DVFSMode: "performance", TaskID: 0, Cluster: 0, ExecTimeUs: 10, EnergyJ: 0.001},
			{DVFSMode: "performance", TaskID: 1, Cluster: 1, ExecTimeUs: 20, EnergyJ: 0.002},
		},
	}

	require.NoError(t, WriteHTML(path, report))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(content)
	assert.Contains(t, html, "Simulation Report")
	assert.Contains(t, html, "app1")
	assert.Contains(t, html, "app2")
	assert.Contains(t, html, "0.987")
}
