package appdag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
name: wifi_transmitter
tasks:
  - name: scramble
    base_id: 0
  - name: encode
    base_id: 1
    predecessors: [0]
    input_packet_size: 1024
  - name: modulate
    base_id: 2
    predecessors: [1]
comm_vol:
  - [0, 512, 0]
  - [0, 0, 256]
  - [0, 0, 0]
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadMarksHeadAndTail(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "wifi.yaml", sample)

	app, err := Load(p, false)
	require.NoError(t, err)
	assert.Equal(t, "wifi_transmitter", app.Name)
	require.Len(t, app.Tasks, 3)
	assert.True(t, app.Tasks[0].Head)
	assert.False(t, app.Tasks[1].Head)
	assert.True(t, app.Tasks[2].Tail)
	assert.False(t, app.Tasks[0].Tail)
}

func TestLoadRejectsBadCommVol(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "bad.yaml", `
name: bad
tasks:
  - name: a
    base_id: 0
  - name: b
    base_id: 1
comm_vol:
  - [0, 100]
  - [0, 0]
`)
	// comm_vol[0][1] non-zero but task 1 has no predecessor 0 declared.
	// Multiple heads/tails are allowed so that only the comm_vol check can
	// reject this DAG.
	_, err := Load(p, true)
	require.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wifi.yaml", sample)
	apps, err := LoadDir(dir, false)
	require.NoError(t, err)
	require.Contains(t, apps, "wifi_transmitter")
}
