package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stabsim/internal/store"
	"github.com/roach88/stabsim/internal/testutil"
)

type runsResponse struct {
	Status string `json:"status"`
	Data   struct {
		Runs []struct {
			ID           string         `json:"id"`
			Seq          int64          `json:"seq"`
			Circuit      string         `json:"circuit"`
			Shots        int            `json:"shots"`
			Distribution map[string]any `json:"distribution"`
		} `json:"runs"`
	} `json:"data"`
}

// recordRuns logs one run per circuit through the probs command.
func recordRuns(t *testing.T, dbPath string, circuits ...string) {
	t.Helper()
	for _, c := range circuits {
		_, err := execute(t, newProbsCommand(probsCommand(testutil.NewFakeRunner(1), "text")),
			"--shots", "4", "--db", dbPath, c)
		require.NoError(t, err)
	}
}

func TestRunsMissingDatabaseFlag(t *testing.T) {
	_, err := execute(t, NewRunsCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "db" not set`)
}

func TestRunsNonExistentDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing.db")
	_, err := execute(t, NewRunsCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
	assert.NoFileExists(t, dbPath)
}

func TestRunsEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, NewRunsCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", out)
}

func TestRunsList(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	recordRuns(t, dbPath, "Gxpi:0", "Gxpi:0Gcnot:0:1", "Gxpi:0")

	out, err := execute(t, NewRunsCommand(&RootOptions{Format: "json"}), "--db", dbPath)
	require.NoError(t, err)

	var resp runsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Runs, 3)
	for i, r := range resp.Data.Runs {
		assert.Equal(t, int64(i+1), r.Seq)
		assert.Equal(t, 4, r.Shots)
		assert.Nil(t, r.Distribution, "distributions only with --verbose")
	}

	out, err = execute(t, NewRunsCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "   1  ")
	assert.Contains(t, out, "shots=4")
}

func TestRunsVerboseShowsDistributions(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	recordRuns(t, dbPath, "Gxpi:0")

	out, err := execute(t, NewRunsCommand(&RootOptions{Format: "text", Verbose: true}), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "      1 1\n")
}

func TestRunsFilterByCircuit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	recordRuns(t, dbPath, "Gxpi:0", "Gxpi:0Gcnot:0:1", "Gxpi:0")

	out, err := execute(t, NewRunsCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--circuit", "Gxpi:0Gcnot:0:1")
	require.NoError(t, err)

	var resp runsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Runs, 1)
	assert.Equal(t, int64(2), resp.Data.Runs[0].Seq)

	_, err = execute(t, NewRunsCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--circuit", "Gh:")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunsShowOne(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	recordRuns(t, dbPath, "Gxpi:0Gcnot:0:1")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	runs, err := st.ListRuns(context.Background())
	require.NoError(t, err)
	require.NoError(t, st.Close())
	require.Len(t, runs, 1)

	out, err := execute(t, NewRunsCommand(&RootOptions{Format: "json"}), "--db", dbPath, runs[0].ID)
	require.NoError(t, err)

	var resp runsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Runs, 1)
	assert.Equal(t, runs[0].ID, resp.Data.Runs[0].ID)
	require.NotNil(t, resp.Data.Runs[0].Distribution)
	assert.Equal(t, map[string]any{"11": float64(1)}, resp.Data.Runs[0].Distribution["probabilities"])

	_, err = execute(t, NewRunsCommand(&RootOptions{Format: "text"}), "--db", dbPath, "no-such-run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "run no-such-run not found")
}
