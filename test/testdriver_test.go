package test

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameScripts(t *testing.T) {
	require.NoError(t, RunGameScriptTests("game-scripts", ""))
}

func TestSingleScript(t *testing.T) {
	require.NoError(t, RunGameScriptTests("game-scripts", "erase"))
}

func TestMissingScripts(t *testing.T) {
	assert.Error(t, RunGameScriptTests("no-such-dir", ""))
	assert.Error(t, RunGameScriptTests("game-scripts", "no-such-test"))
}

func TestFailingScriptIsReported(t *testing.T) {
	dir := t.TempDir()
	// brian holds 3 and 7, so yong is not the winner
	script := `players: [yong, brian]
rounds:
  - deal:
      dealer: 0
      hands: ["1 5", "3 7"]
    steps:
      - action: 0, PLAY, 1
        verify:
          turn-seat: 0
      - action: 1, PLAY, 3
      - action: 0, PLAY, 5
        verify:
          card-counts: [0, 1]
    result:
      winner: yong
`
	file := filepath.Join(dir, "wrong.yaml")
	require.NoError(t, ioutil.WriteFile(file, []byte(script), 0644))

	driver := NewTestDriver()
	require.NoError(t, driver.RunGameScript(file))
	result := driver.ScriptResult[file]
	assert.False(t, result.Passed)
	// the turn check fails and both players hear a different winner; the
	// card counts hold
	assert.Len(t, result.Failures, 3)
	assert.False(t, driver.ReportResult())
}

func TestDisabledScript(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "disabled.yaml")
	script := `disabled: true
players: [yong, brian]
rounds:
  - deal:
      dealer: 0
      hands: ["1", "2"]
`
	require.NoError(t, ioutil.WriteFile(file, []byte(script), 0644))

	driver := NewTestDriver()
	require.NoError(t, driver.RunGameScript(file))
	assert.True(t, driver.ScriptResult[file].Disabled)
	assert.True(t, driver.ReportResult())
}
