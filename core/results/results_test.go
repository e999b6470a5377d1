package results

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exampleLines = []string{
	"0x1\t0xa\tsuccess",
	"0x1\t0xa\tsuccess",
	"\t0xa\tfailure",
	"0x1\t0xa\taborted",
}

func TestCalculateResults(t *testing.T) {
	t.Run("counts", func(t *testing.T) {
		r := CalculateResults("ddos-increment", exampleLines, "success", 2*time.Second)

		assert.Equal(t, "ddos-increment", r.Workload)
		assert.Equal(t, 4, r.Total)
		assert.Equal(t, 2, r.Count("success"))
		assert.Equal(t, 1, r.Count("failure"))
		assert.Equal(t, 1, r.Count("aborted"))
		assert.Equal(t, 0, r.Count("malformed"))
		assert.Equal(t, 1.0, r.Throughput)
		assert.Equal(t, []string{"success", "aborted", "failure"}, r.SortedStatuses())
	})

	t.Run("no elapsed time", func(t *testing.T) {
		r := CalculateResults("clickr-play", exampleLines, "success", 0)
		assert.Equal(t, 0.0, r.Throughput)
	})

	t.Run("no lines", func(t *testing.T) {
		r := CalculateResults("clickr-play", nil, "success", time.Second)
		assert.Equal(t, 0, r.Total)
		assert.Empty(t, r.SortedStatuses())
	})
}

func TestWriteResultsToFile(t *testing.T) {
	dir := t.TempDir()

	config := filepath.Join(dir, "cluster.yaml")
	require.NoError(t, os.WriteFile(config, []byte("nodes: [127.0.0.1:8080]\n"), 0644))

	resultDir := filepath.Join(dir, "out")
	r := CalculateResults("ddos-increment", exampleLines, "success", time.Second)

	summary, err := WriteResultsToFile(config, r, exampleLines, resultDir)
	require.NoError(t, err)

	content, err := os.ReadFile(summary)
	require.NoError(t, err)

	var decoded Results
	require.NoError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, r, decoded)

	prefix := strings.TrimSuffix(summary, "_results.json")

	lines, err := os.ReadFile(prefix + "_lines.tsv")
	require.NoError(t, err)
	assert.Equal(t, strings.Join(exampleLines, "\n")+"\n", string(lines))

	copied, err := os.ReadFile(prefix + "_cluster.yaml")
	require.NoError(t, err)
	assert.Equal(t, "nodes: [127.0.0.1:8080]\n", string(copied))

	_, err = WriteResultsToFile(dir, r, exampleLines, resultDir)
	assert.Error(t, err)
}
