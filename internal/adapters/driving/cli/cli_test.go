package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
)

func execute(args ...string) (string, error) {
	// Flag values persist across executions; reset to defaults.
	verbose = false
	scrapeMode, scrapeJSON = "update", false
	askTopK, askJSON = 0, false
	indexWatch, indexJSON = false, false
	statsJSON = false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute("version")
	assert.NoError(t, err)
	assert.Contains(t, out, "medforum version test-version-1.0.0")
}

func TestScrapeCmd_DefaultsToUpdateMode(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("scrape")
	require.NoError(t, err)
	assert.Contains(t, out, "update mode")
	assert.Contains(t, out, "Fetched: 4")
	assert.Contains(t, out, "Updated: 1")
	assert.Contains(t, out, "Skipped: 1")
}

func TestScrapeCmd_RejectsUnknownMode(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("scrape", "--mode", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown scrape mode")
}

func TestScrapeCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("scrape", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"run_id": "run-1"`)
	assert.Contains(t, out, `"fetched": 4`)
}

func TestScrapeCmd_NotConfigured(t *testing.T) {
	cleanup := setupServices(nil, nil, nil, nil)
	defer cleanup()

	_, err := execute("scrape")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestAskCmd_RequiresExactlyOneArg(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("ask")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAskCmd_PrintsAnswerAndReferences(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("ask", "what helps a migraine?")
	require.NoError(t, err)
	assert.Contains(t, out, "rest and hydrate")
	assert.Contains(t, out, "Symptoms: headache")
	assert.Contains(t, out, "migraine (2)")
	assert.Contains(t, out, "Confidence: 70%")
	assert.Contains(t, out, "[1] migraine (doctor reply, 0.91)")
	assert.Contains(t, out, "https://www.agnoshealth.com/forums/t1")
}

func TestAskCmd_PassesTopK(t *testing.T) {
	answer := &cliMockAnswer{result: &domain.AnswerResult{Answer: "ok"}}
	cleanup := setupServices(&cliMockScrape{}, &cliMockIngest{}, answer, &cliMockStats{})
	defer cleanup()

	_, err := execute("ask", "q", "--top-k", "7")
	require.NoError(t, err)
	assert.Equal(t, 7, answer.gotK)
}

func TestAskCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("ask", "q", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"query_id": "q-1"`)
	assert.Contains(t, out, `"confidence": 0.7`)
}

func TestIndexCmd_PrintsReport(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("index")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 4 threads")
	assert.Contains(t, out, "Embedded: 9")
}

func TestStatsCmd_PrintsSummary(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Threads: 4 (2 with a doctor reply)")
	assert.Contains(t, out, "Ages: 19-44 (mean 30.5, from 4 threads)")
	assert.Contains(t, out, "female 3, male 1")
	assert.Contains(t, out, "ปวดหัว: 3")
	assert.Contains(t, out, "[1] migraine (12 likes)")
}

func TestStatsCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("stats", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"total_threads": 4`)
}

func TestTopCounts_OrderAndLimit(t *testing.T) {
	counts := map[string]int{"a": 2, "b": 5, "c": 2, "d": 1}
	lines := topCounts(counts, 3)
	assert.Equal(t, []string{"b: 5", "a: 2", "c: 2"}, lines)
}