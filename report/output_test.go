package report_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/confguard"
	"github.com/sagarc03/confguard/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func invalidReport() confguard.Report {
	return confguard.NewReport("/etc/daemon.ini", []confguard.Problem{
		{Kind: confguard.KindMissingSection, Section: "Watchdog"},
		{Kind: confguard.KindInvalidValue, Section: "General", Key: "PackageType", Value: "apt"},
	})
}

func TestNewFormatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		quiet  bool
		want   any
	}{
		{"json", false, &report.JSONFormatter{}},
		{"JSON", false, &report.JSONFormatter{}},
		{"yaml", false, &report.YAMLFormatter{}},
		{"text", false, &report.HumanFormatter{}},
		{"text", true, &report.HumanFormatter{Quiet: true}},
		{"", false, &report.HumanFormatter{}},
		{"xml", true, &report.HumanFormatter{Quiet: true}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, report.NewFormatter(tt.format, tt.quiet))
		})
	}
}

func TestHumanFormatter_FormatReport(t *testing.T) {
	t.Parallel()

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, (&report.HumanFormatter{}).FormatReport(&buf, invalidReport()))

		assert.Equal(t,
			"Missing 'Watchdog' section\n"+
				"Invalid value for 'PackageType' in General: apt\n"+
				"/etc/daemon.ini: 2 problem(s) found\n",
			buf.String())
	})

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, (&report.HumanFormatter{}).FormatReport(&buf, confguard.NewReport("/etc/daemon.ini", nil)))
		assert.Equal(t, "/etc/daemon.ini: OK\n", buf.String())
	})

	t.Run("quiet", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		formatter := &report.HumanFormatter{Quiet: true}

		require.NoError(t, formatter.FormatReport(&buf, confguard.NewReport("", nil)))
		assert.Empty(t, buf.String())

		require.NoError(t, formatter.FormatReport(&buf, invalidReport()))
		assert.Equal(t, "Missing 'Watchdog' section\nInvalid value for 'PackageType' in General: apt\n", buf.String())
	})
}

func TestHumanFormatter_FormatHistory(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, (&report.HumanFormatter{}).FormatHistory(&buf, nil))
		assert.Equal(t, "No runs found\n", buf.String())
	})

	t.Run("rows", func(t *testing.T) {
		t.Parallel()

		runs := []confguard.Run{
			{ID: uuid.New(), Path: "/etc/daemon.ini", Valid: true, CheckedAt: time.Now()},
			{ID: uuid.New(), Path: "/etc/other.ini", Errors: []string{"a", "b"}, CheckedAt: time.Now()},
		}

		var buf bytes.Buffer
		require.NoError(t, (&report.HumanFormatter{}).FormatHistory(&buf, runs))

		output := buf.String()
		assert.Contains(t, output, "ID")
		assert.Contains(t, output, runs[0].ID.String())
		assert.Contains(t, output, "/etc/other.ini")
		assert.Contains(t, output, "invalid")
		assert.Contains(t, output, "2 run(s)")
	})
}

func TestHumanFormatter_FormatError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, (&report.HumanFormatter{}).FormatError(&buf, errors.New("boom")))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	t.Parallel()

	formatter := &report.JSONFormatter{}

	t.Run("report", func(t *testing.T) {
		t.Parallel()

		r := invalidReport()
		var buf bytes.Buffer
		require.NoError(t, formatter.FormatReport(&buf, r))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, r.ID.String(), decoded["id"])
		assert.Equal(t, false, decoded["valid"])
		assert.Equal(t, []any{"Missing 'Watchdog' section", "Invalid value for 'PackageType' in General: apt"}, decoded["errors"])

		problems, ok := decoded["problems"].([]any)
		require.True(t, ok)
		require.Len(t, problems, 2)
		assert.Equal(t, "missing_section", problems[0].(map[string]any)["kind"])
	})

	t.Run("empty lists are arrays", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, formatter.FormatReport(&buf, confguard.Report{Valid: true}))
		assert.Contains(t, buf.String(), `"errors": []`)
		assert.Contains(t, buf.String(), `"problems": []`)

		buf.Reset()
		require.NoError(t, formatter.FormatHistory(&buf, nil))
		assert.Contains(t, buf.String(), `"runs": []`)
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, formatter.FormatError(&buf, confguard.ErrConfigPathNotSet))
		assert.JSONEq(t, `{"error":"CONFIG_PATH not set and no path provided"}`, buf.String())
	})
}

func TestYAMLFormatter(t *testing.T) {
	t.Parallel()

	formatter := &report.YAMLFormatter{}

	t.Run("report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, formatter.FormatReport(&buf, invalidReport()))

		var decoded struct {
			Path   string   `yaml:"path"`
			Valid  bool     `yaml:"valid"`
			Errors []string `yaml:"errors"`
		}
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "/etc/daemon.ini", decoded.Path)
		assert.False(t, decoded.Valid)
		assert.Len(t, decoded.Errors, 2)
	})

	t.Run("history", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		var buf bytes.Buffer
		require.NoError(t, formatter.FormatHistory(&buf, []confguard.Run{{ID: id, Path: "/etc/daemon.ini", Valid: true}}))

		output := buf.String()
		assert.Contains(t, output, "runs:")
		assert.Contains(t, output, id.String())
		assert.Contains(t, output, "errors: []")
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, formatter.FormatError(&buf, errors.New("boom")))
		assert.Equal(t, "error: boom\n", buf.String())
	})
}

func TestFormatSchema(t *testing.T) {
	t.Parallel()

	schema := confguard.Schema{
		{
			Name: "General",
			Fields: []confguard.Field{
				{Key: "PackageType", Rule: confguard.OneOf("rpm", "deb")},
				{Key: "MachineId", Rule: confguard.UUID()},
			},
		},
		{
			Name:   "Watchdog",
			Fields: []confguard.Field{{Key: "PingInterval", Rule: confguard.IntRange(100, 10000)}},
		},
	}

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, (&report.HumanFormatter{}).FormatSchema(&buf, schema))
		assert.Equal(t,
			"[General]\n"+
				"  PackageType  one of rpm, deb (case-insensitive)\n"+
				"  MachineId    UUID\n"+
				"\n"+
				"[Watchdog]\n"+
				"  PingInterval  integer in [100, 10000]\n",
			buf.String())
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, (&report.JSONFormatter{}).FormatSchema(&buf, schema))

		var decoded struct {
			Sections []struct {
				Name   string `json:"name"`
				Fields []struct {
					Key  string `json:"key"`
					Rule string `json:"rule"`
				} `json:"fields"`
			} `json:"sections"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded.Sections, 2)
		assert.Equal(t, "MachineId", decoded.Sections[0].Fields[1].Key)
		assert.Equal(t, "UUID", decoded.Sections[0].Fields[1].Rule)
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, (&report.YAMLFormatter{}).FormatSchema(&buf, confguard.DefaultSchema))
		assert.Contains(t, buf.String(), "name: Watchdog")
		assert.Contains(t, buf.String(), "key: CoreDumpsPath")
	})
}
