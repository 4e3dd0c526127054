package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	context_ "github.com/mkrupp/skillsphere/internal/infra/context"
	"github.com/mkrupp/skillsphere/internal/infra/logging"
)

func configure(t *testing.T, cfg logging.LoggerConfig, appName string) {
	t.Helper()

	if err := logging.Configure(context.Background(), cfg, appName); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
}

//nolint:paralleltest
func TestGetLoggerJSON(t *testing.T) {
	var buf bytes.Buffer

	configure(t, logging.LoggerConfig{
		Level:        "debug",
		JSON:         true,
		OutputHandle: &buf,
	}, "skillsphere-test")

	ctx := context_.WithTraceID(context.Background(), "trace-1")
	ctx = context_.WithSessionID(ctx, "session-1")

	buf.Reset()
	logging.GetLogger("svc.test").InfoContext(ctx, "hello", "key", "value")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}

	if record["logger"] != "svc.test" || record["app"] != "skillsphere-test" {
		t.Errorf("unexpected record: %v", record)
	}

	trace, _ := record["trace"].(map[string]any)
	if trace["id"] != "trace-1" || trace["session"] != "session-1" {
		t.Errorf("unexpected trace group: %v", record["trace"])
	}
}

//nolint:paralleltest
func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		json    bool
		level   string
		logger  string
		wantOut bool
	}{
		{name: "filtered package", level: "debug", logger: "svc.jobsvc", wantOut: false},
		{name: "more specific override", level: "debug", logger: "svc.sessionsvc", wantOut: true},
		{name: "unfiltered package", level: "debug", logger: "web", wantOut: true},
		{name: "override below the global level", level: "error", logger: "svc.sessionsvc.store", wantOut: true},
		{name: "global level applies", level: "error", logger: "web", wantOut: false},
		{name: "json output is filtered too", json: true, level: "debug", logger: "svc.jobsvc", wantOut: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			configure(t, logging.LoggerConfig{
				Level:        tt.level,
				Filter:       "svc:warn, svc.sessionsvc:debug",
				JSON:         tt.json,
				OutputHandle: &buf,
			}, "")

			logging.GetLogger(tt.logger).Info("message")

			if got := strings.Contains(buf.String(), "message"); got != tt.wantOut {
				t.Errorf("output present = %v, want %v (%q)", got, tt.wantOut, buf.String())
			}
		})
	}
}

func TestConsoleHandlerFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(logging.NewConsoleHandler(&buf, logging.LevelInfo, false)).
		With("logger", "repo.blob").
		With(logging.Group("repo", "subdir", "data")).
		WithGroup("blob")

	logger.Debug("hidden")
	logger.Warn("blob stored", "id", "k2v9", slog.Group("", "size", 3))

	out := buf.String()

	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level: %q", out)
	}

	for _, want := range []string{"WARN", "repo.blob", "blob stored", " repo.subdir=", " blob.id=", " blob.size="} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}

	if strings.Contains(out, "logger=") {
		t.Errorf("logger name rendered as a field: %q", out)
	}

	if strings.Count(out, "\n") != 1 {
		t.Errorf("want exactly one line, got %q", out)
	}
}

//nolint:paralleltest
func TestConfigureOutput(t *testing.T) {
	dir := t.TempDir()

	configure(t, logging.LoggerConfig{Output: filepath.Join(dir, "app.log"), Level: "info"}, "")

	if err := logging.Configure(context.Background(),
		logging.LoggerConfig{Output: filepath.Join(dir, "missing", "app.log")}, ""); err == nil {
		t.Error("Configure() with an unwritable output succeeded")
	}
}
