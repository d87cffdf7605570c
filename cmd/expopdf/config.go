package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	expopdf "github.com/engexpo/go-expopdf"
	"github.com/engexpo/go-expopdf/internal/yamlutil"
)

// Sentinel errors for CLI configuration.
var (
	ErrInvalidFlags   = errors.New("invalid flags")
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
)

// fileConfig mirrors the YAML config file. Durations are written as Go
// duration strings ("30s", "1500ms").
type fileConfig struct {
	Export exportConfig `yaml:"export"`
	Data   dataConfig   `yaml:"data"`
}

type exportConfig struct {
	Dir             string   `yaml:"dir"`
	Port            *int     `yaml:"port"`
	DefaultDocument string   `yaml:"defaultDocument"`
	Output          string   `yaml:"output"`
	ViewportWidth   int      `yaml:"viewportWidth"`
	ViewportHeight  int      `yaml:"viewportHeight"`
	NavTimeout      string   `yaml:"navTimeout"`
	RenderTimeout   string   `yaml:"renderTimeout"`
	PollInterval    string   `yaml:"pollInterval"`
	SettleDelay     string   `yaml:"settleDelay"`
	CardSelector    string   `yaml:"cardSelector"`
	PageSelector    string   `yaml:"pageSelector"`
	StatusSelectors []string `yaml:"statusSelectors"`
}

type dataConfig struct {
	Fetch            bool   `yaml:"fetch"`
	RoomsFallback    string `yaml:"roomsFallback"`
	ExhibitsFallback string `yaml:"exhibitsFallback"`
}

// loadFileConfig loads a config file by path or by name. Names are searched
// in the current directory and ~/.config/expopdf/ with .yaml and .yml
// extensions, like the rest of the tooling around here does it.
func loadFileConfig(nameOrPath string) (*fileConfig, error) {
	configPath := nameOrPath
	if !strings.ContainsAny(nameOrPath, "/\\") {
		resolved, err := resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
		configPath = resolved
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg fileConfig
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return &cfg, nil
}

// resolveConfigPath searches for a named config in the current directory,
// then ~/.config/expopdf/, trying .yaml then .yml.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	var tried []string

	for _, ext := range extensions {
		local := name + ext
		if fileExists(local) {
			return local, nil
		}
		tried = append(tried, local)
	}

	if userDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			p := filepath.Join(userDir, "expopdf", name+ext)
			if fileExists(p) {
				return p, nil
			}
			tried = append(tried, p)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// buildConfig layers the export configuration: library defaults, then the
// config file, then explicit flags.
func buildConfig(flags *cliFlags, file *fileConfig) (*expopdf.Config, error) {
	cfg := expopdf.DefaultConfig()

	if file != nil {
		e := file.Export
		if e.Dir != "" {
			cfg.RootDir = e.Dir
		}
		if e.Port != nil {
			cfg.Port = *e.Port
		}
		if e.DefaultDocument != "" {
			cfg.DefaultDocument = e.DefaultDocument
		}
		if e.Output != "" {
			cfg.OutputPath = e.Output
		}
		if e.ViewportWidth > 0 {
			cfg.ViewportWidth = e.ViewportWidth
		}
		if e.ViewportHeight > 0 {
			cfg.ViewportHeight = e.ViewportHeight
		}
		if e.CardSelector != "" {
			cfg.CardSelector = e.CardSelector
		}
		if e.PageSelector != "" {
			cfg.PageSelector = e.PageSelector
		}
		if len(e.StatusSelectors) > 0 {
			cfg.StatusSelectors = e.StatusSelectors
		}
		for _, d := range []struct {
			raw string
			dst *time.Duration
		}{
			{e.NavTimeout, &cfg.NavTimeout},
			{e.RenderTimeout, &cfg.RenderTimeout},
			{e.PollInterval, &cfg.PollInterval},
			{e.SettleDelay, &cfg.SettleDelay},
		} {
			if d.raw == "" {
				continue
			}
			parsed, err := time.ParseDuration(d.raw)
			if err != nil {
				return nil, fmt.Errorf("%w: duration %q: %v", ErrConfigParse, d.raw, err)
			}
			*d.dst = parsed
		}
	}

	if flags.dir != "" {
		cfg.RootDir = flags.dir
	}
	if flags.port >= 0 {
		cfg.Port = flags.port
	}
	if flags.navTimeout > 0 {
		cfg.NavTimeout = flags.navTimeout
	}
	if flags.renderTimeout > 0 {
		cfg.RenderTimeout = flags.renderTimeout
	}
	if flags.settleDelay > 0 {
		cfg.SettleDelay = flags.settleDelay
	}

	// The output path defaults next to the booklet page, not the cwd.
	switch {
	case flags.out != "":
		cfg.OutputPath = flags.out
	case file != nil && file.Export.Output != "":
		// already applied above
	default:
		cfg.OutputPath = filepath.Join(cfg.RootDir, expopdf.DefaultOutputName)
	}

	return cfg, nil
}
