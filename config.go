package expopdf

import (
	"fmt"
	"os"
	"time"
)

// Default configuration values. These carry the constants of the original
// export workflow; all of them are tunable through Config.
const (
	DefaultPort            = 8000
	DefaultDocument        = "index.html"
	DefaultOutputName      = "expo_booklet.pdf"
	DefaultViewportWidth   = 1200
	DefaultViewportHeight  = 800
	DefaultNavTimeout      = 30 * time.Second
	DefaultRenderTimeout   = 60 * time.Second
	DefaultPollInterval    = 500 * time.Millisecond
	DefaultSettleDelay     = 1500 * time.Millisecond
	DefaultCardSelector    = ".exhibit-card"
	DefaultPageSelector    = ".booklet-page"
	DefaultExcerptLimit    = 500
	defaultShutdownTimeout = 5 * time.Second
)

// Default selectors for the optional status elements the booklet page
// updates while it loads spreadsheet data.
var defaultStatusSelectors = []string{"#load-status", "#data-status"}

// Config holds all settings for a single export run. Distinct ports and
// output paths allow concurrent runs, e.g. in tests.
type Config struct {
	RootDir         string        // directory served over HTTP (booklet page and assets)
	Port            int           // loopback listen port; 0 picks an ephemeral port
	DefaultDocument string        // document served for the root path
	OutputPath      string        // where the PDF is written
	ViewportWidth   int           // browser viewport width in pixels
	ViewportHeight  int           // browser viewport height in pixels
	NavTimeout      time.Duration // bound on waiting for network quiescence (non-fatal)
	RenderTimeout   time.Duration // bound on waiting for rendered cards (fatal)
	PollInterval    time.Duration // DOM poll interval during the render wait
	SettleDelay     time.Duration // pause before PDF capture for trailing layout work
	CardSelector    string        // marker for rendered exhibit cards
	PageSelector    string        // marker for booklet pages
	StatusSelectors []string      // optional status elements reported in diagnostics
	ExcerptLimit    int           // max length of the HTML excerpt in diagnostics
}

// DefaultConfig returns a configuration with the standard export settings.
// RootDir defaults to the current directory.
func DefaultConfig() *Config {
	return &Config{
		RootDir:         ".",
		Port:            DefaultPort,
		DefaultDocument: DefaultDocument,
		OutputPath:      DefaultOutputName,
		ViewportWidth:   DefaultViewportWidth,
		ViewportHeight:  DefaultViewportHeight,
		NavTimeout:      DefaultNavTimeout,
		RenderTimeout:   DefaultRenderTimeout,
		PollInterval:    DefaultPollInterval,
		SettleDelay:     DefaultSettleDelay,
		CardSelector:    DefaultCardSelector,
		PageSelector:    DefaultPageSelector,
		StatusSelectors: defaultStatusSelectors,
		ExcerptLimit:    DefaultExcerptLimit,
	}
}

// Validate checks that the configuration is usable for an export run.
func (c *Config) Validate() error {
	if c.RootDir == "" {
		return ErrEmptyRootDir
	}
	info, err := os.Stat(c.RootDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootDirNotFound, c.RootDir)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if c.OutputPath == "" {
		return ErrEmptyOutput
	}
	if c.CardSelector == "" || c.PageSelector == "" {
		return ErrEmptySelector
	}
	if c.NavTimeout <= 0 || c.RenderTimeout <= 0 {
		return fmt.Errorf("%w: nav=%s render=%s", ErrInvalidTimeout, c.NavTimeout, c.RenderTimeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, c.PollInterval)
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, c.ViewportWidth, c.ViewportHeight)
	}
	return nil
}
