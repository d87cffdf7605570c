package expopdf

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// FailureReason classifies why an export run produced no PDF.
type FailureReason string

const (
	FailureNone          FailureReason = ""
	FailureRenderTimeout FailureReason = "render timeout"
	FailureNoCards       FailureReason = "no cards rendered"
)

// Result is the typed outcome of an export run. Operational errors (server
// bind, browser launch, I/O) are returned separately by Run; Result reports
// the render-level outcome.
type Result struct {
	OK         bool
	Reason     FailureReason
	Snapshot   *Snapshot
	OutputPath string
}

// Option customizes an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger used for progress and page events.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Exporter) { e.logger = logger }
}

// WithObserver overrides the page observer (default forwards to the logger).
func WithObserver(obs PageObserver) Option {
	return func(e *Exporter) { e.obs = obs }
}

// Exporter drives one export run: asset server, browser, render wait,
// diagnostics, PDF capture, teardown.
type Exporter struct {
	cfg    *Config
	logger *zap.Logger
	obs    PageObserver
	drv    pageDriver
}

// NewExporter creates an Exporter for cfg.
func NewExporter(cfg *Config, opts ...Option) *Exporter {
	e := &Exporter{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	if e.obs == nil {
		e.obs = newLogObserver(e.logger)
	}
	// Driver is created here unless injected (e.g. by tests)
	if e.drv == nil {
		e.drv = newRodDriver()
	}
	return e
}

// Run executes the export sequence. The browser and the server are released
// on every exit path, including operational errors.
func (e *Exporter) Run(ctx context.Context) (*Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	// Step 1: asset server. A bind failure aborts before any browser work.
	srv := NewAssetServer(e.cfg, e.logger)
	if err := srv.Start(); err != nil {
		return nil, err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			e.logger.Warn("asset server shutdown", zap.Error(err))
		}
	}()

	// Step 2-3: browser with passive event forwarding.
	e.logger.Info("launching browser", zap.Int("width", e.cfg.ViewportWidth), zap.Int("height", e.cfg.ViewportHeight))
	if err := e.drv.Launch(e.cfg, e.obs); err != nil {
		return nil, err
	}
	defer func() {
		if err := e.drv.Close(); err != nil {
			e.logger.Warn("browser close", zap.Error(err))
		}
	}()

	// Step 4: navigate. The page's spreadsheet fetch may legitimately hold
	// a connection open, so a quiescence timeout is logged and ignored.
	url := srv.URL() + "/"
	e.logger.Info("navigating", zap.String("url", url))
	if err := e.drv.Navigate(url, e.cfg.NavTimeout); err != nil {
		if !errors.Is(err, ErrNavigationTimeout) {
			return nil, err
		}
		e.logger.Warn("network never went idle, continuing", zap.Duration("timeout", e.cfg.NavTimeout))
	}

	// Step 5: poll for rendered cards. Exceeding the timeout is recorded
	// but diagnostics are still extracted before deciding.
	e.logger.Info("waiting for rendered cards",
		zap.String("selector", e.cfg.CardSelector),
		zap.Duration("timeout", e.cfg.RenderTimeout))
	rendered, err := waitFor(ctx, e.cfg.RenderTimeout, e.cfg.PollInterval, func() (bool, error) {
		n, err := e.drv.CardCount(e.cfg.CardSelector)
		if err != nil {
			return false, err
		}
		return n > 0, nil
	})
	if err != nil {
		return nil, err
	}

	// Step 6: diagnostics, regardless of the render wait's outcome.
	snap, err := e.drv.Diagnostics(e.cfg.diagnosticsQuery())
	if err != nil {
		return nil, err
	}
	e.logger.Info("diagnostics",
		zap.String("title", snap.Title),
		zap.Int("cards", snap.Cards),
		zap.Int("pages", snap.Pages),
		zap.Strings("statuses", snap.Statuses))

	// Step 7: decision point.
	if !rendered || snap.Cards == 0 {
		reason := FailureNoCards
		if !rendered {
			reason = FailureRenderTimeout
		}
		e.logger.Error("export failed", zap.String("reason", string(reason)))
		for _, cause := range failureCauses {
			e.logger.Warn("likely cause", zap.String("cause", cause))
		}
		return &Result{OK: false, Reason: reason, Snapshot: snap}, nil
	}

	// Step 8: settle, then capture. The delay absorbs trailing layout and
	// paint work after the last card appears.
	if err := sleep(ctx, e.cfg.SettleDelay); err != nil {
		return nil, err
	}
	e.logger.Info("capturing PDF", zap.String("output", e.cfg.OutputPath))
	pdf, err := e.drv.PDF()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(e.cfg.OutputPath, pdf, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrWriteOutput, e.cfg.OutputPath, err)
	}

	// Step 9: success summary; teardown happens in the defers.
	e.logger.Info("export complete",
		zap.Int("cards", snap.Cards),
		zap.Int("pages", snap.Pages),
		zap.Int("bytes", len(pdf)),
		zap.String("output", e.cfg.OutputPath))
	return &Result{OK: true, Snapshot: snap, OutputPath: e.cfg.OutputPath}, nil
}
