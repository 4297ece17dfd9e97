package e2e_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sagarc03/confguard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_Check(t *testing.T) {
	t.Run("valid file exits 0", func(t *testing.T) {
		path := writeDaemonConfig(t, nil)

		res := runCLI(t, nil, "check", path)
		assert.Equal(t, 0, res.ExitCode, res.Stderr)
		assert.Equal(t, path+": OK\n", res.Stdout)
	})

	t.Run("problems exit 1", func(t *testing.T) {
		path := writeDaemonConfig(t, map[string]string{
			"PackageType":      "apt",
			"MaxVirtualMemory": "invalid",
		})

		res := runCLI(t, nil, "check", "--quiet", path)
		assert.Equal(t, 1, res.ExitCode, res.Stderr)
		assert.Equal(t,
			"Invalid value for 'PackageType' in General: apt\n"+
				"Invalid value for 'MaxVirtualMemory' in Watchdog: invalid\n",
			res.Stdout)
	})

	t.Run("CONFIG_PATH fallback", func(t *testing.T) {
		path := writeDaemonConfig(t, nil)

		res := runCLI(t, []string{"CONFIG_PATH=" + path}, "check")
		assert.Equal(t, 0, res.ExitCode, res.Stderr)
	})

	t.Run("no path exits 2", func(t *testing.T) {
		res := runCLI(t, nil, "check")
		assert.Equal(t, 2, res.ExitCode)
		assert.Contains(t, res.Stderr, confguard.ErrConfigPathNotSet.Error())
		assert.Empty(t, res.Stdout)
	})

	t.Run("missing file reports both sections", func(t *testing.T) {
		res := runCLI(t, nil, "check", "-q", filepath.Join(t.TempDir(), "absent.ini"))
		assert.Equal(t, 1, res.ExitCode)
		assert.Equal(t, "Missing 'General' section\nMissing 'Watchdog' section\n", res.Stdout)
	})

	t.Run("json output", func(t *testing.T) {
		path := writeDaemonConfig(t, map[string]string{"ScanMemoryLimit": "9000"})

		res := runCLI(t, nil, "check", "-o", "json", path)
		assert.Equal(t, 1, res.ExitCode, res.Stderr)

		var report confguard.Report
		require.NoError(t, json.Unmarshal([]byte(res.Stdout), &report))
		assert.False(t, report.Valid)
		assert.Equal(t, []string{"Invalid value for 'ScanMemoryLimit' in General: 9000"}, report.Errors)
	})
}

func TestE2E_Schema(t *testing.T) {
	res := runCLI(t, nil, "schema")
	require.Equal(t, 0, res.ExitCode, res.Stderr)
	assert.Contains(t, res.Stdout, "[General]")
	assert.Contains(t, res.Stdout, "[Watchdog]")
	assert.Contains(t, res.Stdout, "MachineId")
}

func TestE2E_RecordAndHistory_SQLite(t *testing.T) {
	settings := createSettingsFile(t, getOpenPort(t), HistoryConfig{
		Type: "sqlite",
		DSN:  filepath.Join(t.TempDir(), "history.db"),
	})

	runRecordAndHistoryTests(t, settings)
}

func TestE2E_RecordAndHistory_Postgres(t *testing.T) {
	settings := createSettingsFile(t, getOpenPort(t), HistoryConfig{
		Type:  "postgres",
		DSN:   getSharedPostgresDatabase(t),
		Table: "cli_runs",
	})

	runRecordAndHistoryTests(t, settings)
}

func runRecordAndHistoryTests(t *testing.T, settings string) {
	t.Helper()

	valid := writeDaemonConfig(t, nil)
	invalid := writeDaemonConfig(t, map[string]string{"Locale": "invalid"})

	res := runCLI(t, nil, "check", "--settings", settings, "--record", valid)
	require.Equal(t, 0, res.ExitCode, res.Stderr)

	res = runCLI(t, nil, "check", "--settings", settings, "--record", invalid)
	require.Equal(t, 1, res.ExitCode, res.Stderr)

	res = runCLI(t, nil, "history", "--settings", settings, "-o", "json")
	require.Equal(t, 0, res.ExitCode, res.Stderr)

	var body struct {
		Runs []confguard.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &body))
	require.Len(t, body.Runs, 2)
	assert.Equal(t, invalid, body.Runs[0].Path)
	assert.Equal(t, []string{"Invalid value for 'Locale' in General: invalid"}, body.Runs[0].Errors)
	assert.Equal(t, valid, body.Runs[1].Path)

	res = runCLI(t, nil, "history", "--settings", settings, "--path", valid)
	require.Equal(t, 0, res.ExitCode, res.Stderr)
	assert.Contains(t, res.Stdout, "1 run(s)")
}

func TestE2E_Serve_SQLite(t *testing.T) {
	port := getOpenPort(t)
	settings := createSettingsFile(t, port, HistoryConfig{
		Enabled: true,
		Type:    "sqlite",
		DSN:     filepath.Join(t.TempDir(), "history.db"),
	})

	baseURL, cleanup := startServer(t, port, settings)
	defer cleanup()

	client := &http.Client{}
	var recorded confguard.Report

	t.Run("POST /v1/validate", func(t *testing.T) {
		body := "[General]\nPackageType=apt\n"
		resp, err := client.Post(baseURL+"/v1/validate?name=upload.ini", "text/plain", strings.NewReader(body))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&recorded))
		assert.False(t, recorded.Valid)
		assert.Equal(t, "upload.ini", recorded.Path)
		assert.Contains(t, recorded.Errors, "Missing 'Watchdog' section")
		assert.Contains(t, recorded.Errors, "Invalid value for 'PackageType' in General: apt")
	})

	t.Run("GET /v1/runs", func(t *testing.T) {
		resp, err := client.Get(baseURL + "/v1/runs?path=upload.ini")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Runs []confguard.Run `json:"runs"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Runs, 1)
		assert.Equal(t, recorded.ID, body.Runs[0].ID)
	})

	t.Run("GET /v1/runs/{id}", func(t *testing.T) {
		resp, err := client.Get(fmt.Sprintf("%s/v1/runs/%s", baseURL, recorded.ID))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var run confguard.Run
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
		assert.Equal(t, recorded.Errors, run.Errors)
	})

	t.Run("GET /metrics", func(t *testing.T) {
		resp, err := client.Get(baseURL + "/metrics")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(data), `confguard_validations_total{result="invalid"} 1`)
	})
}

func TestE2E_Serve_HistoryDisabled(t *testing.T) {
	port := getOpenPort(t)
	settings := createSettingsFile(t, port, HistoryConfig{})

	baseURL, cleanup := startServer(t, port, settings)
	defer cleanup()

	resp, err := http.Get(baseURL + "/v1/runs")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "history_disabled", body["error"])
}
