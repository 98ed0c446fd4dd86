package loguru

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, dir, yamlBody string) string {
	t.Helper()
	path := filepath.Join(dir, "loguru.yaml")
	if err := os.WriteFile(path, []byte(yamlBody), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestConfigAttachesSinksFromYAML(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	cfgPath := writeConfigFile(t, dir, `
sinks:
  - sink: stderr
    level: WARNING
    colored: false
  - sink: `+logPath+`
    level: INFO
    rotation: "10 MB"
    retention: "5"
`)

	logger := NewLogger()
	ids, err := logger.Config(cfgPath)
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 sinks attached, got %d", len(ids))
	}
	logger.Close()
}

func TestConfigClearsExistingSinksFirst(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfigFile(t, dir, `
sinks:
  - sink: stderr
`)

	logger := NewLogger()
	logger.LogTo(Stdout)
	logger.LogTo(Stdout)

	if _, err := logger.Config(cfgPath); err != nil {
		t.Fatalf("Config: %v", err)
	}
	if n := logger.ClearAll(); n != 1 {
		t.Fatalf("expected Config to have replaced prior sinks with exactly 1, found %d", n)
	}
}

func TestConfigRejectsUnknownLevel(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfigFile(t, dir, `
sinks:
  - sink: stderr
    level: NOT_A_LEVEL
`)

	logger := NewLogger()
	if _, err := logger.Config(cfgPath); err == nil {
		t.Fatal("expected an error for an unknown level name in config")
	}
}

func TestConfigMissingFile(t *testing.T) {
	logger := NewLogger()
	if _, err := logger.Config("/no/such/path.yaml"); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
