package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/abfplot/internal/report"
	"github.com/cwbudde/abfplot/internal/testutil"
)

func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeFixture(t *testing.T, path string) {
	t.Helper()
	const n = 320
	require.NoError(t, testutil.WriteABF2(path, testutil.ABFFixture{
		SampleRate: 10000,
		Sweeps: testutil.SweepsOf(
			testutil.Add(testutil.Sine(150, 10000, 1, 0, n), testutil.DeterministicNoise(1, 0.1, n)),
			testutil.Add(testutil.Sine(150, 10000, 0.5, 0, n), testutil.DeterministicNoise(2, 0.1, n)),
		),
		Units: []string{"pA"},
	}))
}

func TestMissingRequiredFlag(t *testing.T) {
	code, _, stderr := execute(t, "--start", "1", "--end", "2", "--log-level", "error")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "--base-dir is required")
}

func TestInvalidBaselineArity(t *testing.T) {
	code, _, stderr := execute(t, "--base-dir", t.TempDir(), "--start", "1", "--end", "2", "--baseline", "0.1,0.2,0.3")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "exactly 2 values")
}

func TestBaselineAsTwoValues(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "2024_02_21_0001.abf"))
	reportPath := filepath.Join(dir, "run.yaml")

	code, stdout, stderr := execute(t,
		"--base-dir", dir, "--start", "1", "--end", "1",
		"--baseline", "0.002", "0.004",
		"--outdir", filepath.Join(dir, "out"), "--report", reportPath, "--log-level", "error")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "[OK] Processed")

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var rep report.Report
	require.NoError(t, yaml.Unmarshal(raw, &rep))
	assert.InDelta(t, 0.002, rep.Parameters.BaselineStart, 1e-12)
	assert.InDelta(t, 0.004, rep.Parameters.BaselineEnd, 1e-12)
}

func TestDPIFlagSetsPNGResolution(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "2024_02_21_0001.abf"))
	outDir := filepath.Join(dir, "out")

	code, _, stderr := execute(t,
		"--base-dir", dir, "--start", "1", "--end", "1",
		"--outdir", outDir, "--dpi", "20", "--log-level", "error")
	require.Equal(t, 0, code, stderr)

	f, err := os.Open(filepath.Join(outDir, "2024_02_21_0001.filtered.png"))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	// 12 x 6 inch page.
	assert.Equal(t, 240, cfg.Width)
	assert.Equal(t, 120, cfg.Height)
}

func TestStartAfterEnd(t *testing.T) {
	code, _, _ := execute(t, "--base-dir", t.TempDir(), "--start", "5", "--end", "4")
	assert.Equal(t, 1, code)
}

func TestBatchRun(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "2024_02_21_0077.abf"))
	writeFixture(t, filepath.Join(dir, "2024_02_21_0080.abf"))
	outDir := filepath.Join(dir, "outputs")
	reportPath := filepath.Join(dir, "run.yaml")

	code, stdout, stderr := execute(t,
		"--base-dir", dir, "--start", "77", "--end", "80",
		"--outdir", outDir, "--report", reportPath, "--log-level", "error")
	require.Equal(t, 0, code, stderr)

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	assert.Equal(t, []string{
		"[OK] Processed " + filepath.Join(dir, "2024_02_21_0077.abf"),
		"[OK] Processed " + filepath.Join(dir, "2024_02_21_0080.abf"),
		"",
		"[WARNING] Missing files:",
		" - " + filepath.Join(dir, "2024_02_21_0078.abf"),
		" - " + filepath.Join(dir, "2024_02_21_0079.abf"),
	}, lines)
	assert.Empty(t, stderr)

	for _, stem := range []string{"2024_02_21_0077", "2024_02_21_0080"} {
		assert.FileExists(t, filepath.Join(outDir, stem+".filtered.png"))
		assert.FileExists(t, filepath.Join(outDir, stem+".filtered.pdf"))
	}

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var rep report.Report
	require.NoError(t, yaml.Unmarshal(raw, &rep))
	assert.NotEmpty(t, rep.RunID)
	assert.Len(t, rep.Files, 2)
	assert.Len(t, rep.Missing, 2)
	assert.Equal(t, 4, rep.Parameters.Order)
	for _, f := range rep.Files {
		assert.Len(t, f.Sweep, 2)
		assert.Equal(t, "pA", f.Units)
	}
}

func TestPartialFailureExitStatus(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x_0001.abf"), []byte("junk data"), 0o644))
	args := []string{"--base-dir", dir, "--date-prefix", "x", "--start", "1", "--end", "2", "--log-level", "error"}

	code, stdout, stderr := execute(t, args...)
	assert.Equal(t, 0, code, "errors and missing files do not change the exit status")
	assert.Contains(t, stderr, "[ERROR] "+filepath.Join(dir, "x_0001.abf")+": ")
	assert.Contains(t, stdout, " - "+filepath.Join(dir, "x_0002.abf"))
	assert.NoDirExists(t, filepath.Join(dir, "outputs"))

	code, _, stderr = execute(t, append(args, "--strict")...)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "1 failed, 1 missing")
}

func TestEnvironmentSuppliesRequiredFlags(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ABFPLOT_BASE_DIR", dir)
	t.Setenv("ABFPLOT_START", "3")
	t.Setenv("ABFPLOT_END", "3")
	t.Setenv("ABFPLOT_LOG_LEVEL", "error")

	code, stdout, _ := execute(t, "--date-prefix", "env")
	assert.Equal(t, 0, code)
	assert.Equal(t, "\n[WARNING] Missing files:\n - "+filepath.Join(dir, "env_0003.abf")+"\n", stdout)
}

func TestCancelledRun(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "c_0001.abf"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, errOut bytes.Buffer
	code := run(ctx, []string{"--base-dir", dir, "--date-prefix", "c", "--start", "1", "--end", "1", "--log-level", "error"}, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.NotContains(t, out.String(), "[OK]")
}
