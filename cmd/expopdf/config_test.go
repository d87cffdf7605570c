package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	expopdf "github.com/engexpo/go-expopdf"
)

func TestBuildConfig_Defaults(t *testing.T) {
	flags, err := parseFlags([]string{"expopdf"})
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := buildConfig(flags, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RootDir != "." {
		t.Errorf("RootDir = %q, want %q", cfg.RootDir, ".")
	}
	if cfg.Port != expopdf.DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, expopdf.DefaultPort)
	}
	if cfg.OutputPath != expopdf.DefaultOutputName {
		t.Errorf("OutputPath = %q, want %q", cfg.OutputPath, expopdf.DefaultOutputName)
	}
}

func TestBuildConfig_FlagsOverrideFile(t *testing.T) {
	flags, err := parseFlags([]string{"expopdf", "--dir", "/flag/dir", "--port", "9000", "--render-timeout", "90s"})
	if err != nil {
		t.Fatal(err)
	}
	filePort := 7000
	file := &fileConfig{Export: exportConfig{
		Dir:           "/file/dir",
		Port:          &filePort,
		RenderTimeout: "45s",
		CardSelector:  ".card",
	}}

	cfg, err := buildConfig(flags, file)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RootDir != "/flag/dir" {
		t.Errorf("RootDir = %q, want flag value", cfg.RootDir)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want flag value 9000", cfg.Port)
	}
	if cfg.RenderTimeout != 90*time.Second {
		t.Errorf("RenderTimeout = %s, want flag value 90s", cfg.RenderTimeout)
	}
	// File values without competing flags still apply.
	if cfg.CardSelector != ".card" {
		t.Errorf("CardSelector = %q, want file value", cfg.CardSelector)
	}
	// Output defaults beside the booklet directory.
	if want := filepath.Join("/flag/dir", expopdf.DefaultOutputName); cfg.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", cfg.OutputPath, want)
	}
}

func TestBuildConfig_BadDuration(t *testing.T) {
	flags, err := parseFlags([]string{"expopdf"})
	if err != nil {
		t.Fatal(err)
	}
	file := &fileConfig{Export: exportConfig{NavTimeout: "soon"}}

	_, err = buildConfig(flags, file)
	if !errors.Is(err, ErrConfigParse) {
		t.Errorf("buildConfig() = %v, want ErrConfigParse", err)
	}
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "expo.yaml")
	content := `export:
  dir: ./booklet
  renderTimeout: 2m
  statusSelectors:
    - "#a"
    - "#b"
data:
  fetch: true
  roomsFallback: rooms.csv
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFileConfig(path)
	if err != nil {
		t.Fatalf("loadFileConfig() error = %v", err)
	}
	if cfg.Export.Dir != "./booklet" {
		t.Errorf("Dir = %q", cfg.Export.Dir)
	}
	if cfg.Export.RenderTimeout != "2m" {
		t.Errorf("RenderTimeout = %q", cfg.Export.RenderTimeout)
	}
	if len(cfg.Export.StatusSelectors) != 2 {
		t.Errorf("StatusSelectors = %v", cfg.Export.StatusSelectors)
	}
	if !cfg.Data.Fetch {
		t.Error("Data.Fetch = false, want true")
	}
}

func TestLoadFileConfig_NotFound(t *testing.T) {
	_, err := loadFileConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("loadFileConfig() = %v, want ErrConfigNotFound", err)
	}
}

func TestLoadFileConfig_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("export:\n  bogus: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := loadFileConfig(path)
	if !errors.Is(err, ErrConfigParse) {
		t.Errorf("loadFileConfig() = %v, want ErrConfigParse", err)
	}
}
