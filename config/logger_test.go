package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	if noColor() {
		t.Error("empty NO_COLOR must be ignored")
	}
	t.Setenv("NO_COLOR", "1")
	if !noColor() {
		t.Error("NO_COLOR=1 must disable colors")
	}
	if EnableColorOutput(os.Stdout) {
		t.Error("colors enabled despite NO_COLOR")
	}
}

func TestLoggingPrepare_File(t *testing.T) {
	dir := t.TempDir()
	conf := &LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "normal", Destination: filepath.Join(dir, "d2n.log"), Mode: "overwrite"},
	}

	log, err := conf.Prepare(nil)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Debug("hidden message")
	log.Info("Chapter written", zap.Int("chapter", 3))
	_ = log.Sync()

	data, err := os.ReadFile(conf.FileLogger.Destination)
	if err != nil {
		t.Fatalf("unable to read log: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "Chapter written") || !strings.Contains(text, `"chapter": 3`) {
		t.Errorf("log does not contain info entry:\n%s", text)
	}
	if strings.Contains(text, "hidden message") {
		t.Errorf("debug entry written at normal level:\n%s", text)
	}
}

func TestLoggingPrepare_ReportForcesDebug(t *testing.T) {
	dir := t.TempDir()
	rpt, err := (&ReporterConfig{Destination: filepath.Join(dir, "report.zip")}).Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	defer rpt.Close()

	conf := &LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "none", Destination: filepath.Join(dir, "d2n.log")},
	}
	log, err := conf.Prepare(rpt)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Debug("visible in report")
	_ = log.Sync()

	if _, ok := rpt.entries["final.log"]; !ok {
		t.Error("log file was not added to report")
	}
	data, err := os.ReadFile(conf.FileLogger.Destination)
	if err != nil {
		t.Fatalf("unable to read log: %v", err)
	}
	if !strings.Contains(string(data), "visible in report") {
		t.Errorf("debug entry missing:\n%s", data)
	}
}
