package expopdf

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// mockDriver implements pageDriver without a browser.
type mockDriver struct {
	launched  bool
	navigated string
	closed    bool
	pdfCalled bool

	launchErr error
	navErr    error
	countErr  error
	pdfErr    error

	cardCounts []int // successive CardCount results; last value repeats
	countCalls int
	snapshot   *Snapshot
	pdf        []byte
}

func (m *mockDriver) Launch(cfg *Config, obs PageObserver) error {
	m.launched = true
	return m.launchErr
}

func (m *mockDriver) Navigate(url string, idleTimeout time.Duration) error {
	m.navigated = url
	return m.navErr
}

func (m *mockDriver) CardCount(selector string) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	i := m.countCalls
	m.countCalls++
	if i >= len(m.cardCounts) {
		i = len(m.cardCounts) - 1
	}
	if i < 0 {
		return 0, nil
	}
	return m.cardCounts[i], nil
}

func (m *mockDriver) Diagnostics(q diagnosticsQuery) (*Snapshot, error) {
	if m.snapshot != nil {
		return m.snapshot, nil
	}
	return &Snapshot{}, nil
}

func (m *mockDriver) PDF() ([]byte, error) {
	m.pdfCalled = true
	if m.pdfErr != nil {
		return nil, m.pdfErr
	}
	if m.pdf != nil {
		return m.pdf, nil
	}
	return []byte("%PDF-1.4 mock"), nil
}

func (m *mockDriver) Close() error {
	m.closed = true
	return nil
}

// newTestExporter wires an exporter to a mock driver over a temp directory.
func newTestExporter(t *testing.T, drv *mockDriver) (*Exporter, *Config) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RootDir = t.TempDir()
	cfg.Port = 0
	cfg.OutputPath = filepath.Join(cfg.RootDir, DefaultOutputName)
	cfg.RenderTimeout = 50 * time.Millisecond
	cfg.PollInterval = 5 * time.Millisecond
	cfg.SettleDelay = 0

	e := NewExporter(cfg)
	e.drv = drv
	return e, cfg
}

func TestExporter_Run_Success(t *testing.T) {
	drv := &mockDriver{
		cardCounts: []int{0, 0, 3},
		snapshot:   &Snapshot{Title: "EXPO", Cards: 3, Pages: 2},
	}
	e, cfg := newTestExporter(t, drv)

	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.OK {
		t.Fatalf("Run() not OK: %s", result.Reason)
	}
	if result.Reason != FailureNone {
		t.Errorf("Reason = %q, want none", result.Reason)
	}
	if result.OutputPath != cfg.OutputPath {
		t.Errorf("OutputPath = %q, want %q", result.OutputPath, cfg.OutputPath)
	}

	data, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if string(data) != "%PDF-1.4 mock" {
		t.Errorf("output = %q, want mock PDF bytes", data)
	}
	if !drv.closed {
		t.Error("driver not closed on success path")
	}
}

func TestExporter_Run_BindFailureSkipsBrowser(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	drv := &mockDriver{}
	e, cfg := newTestExporter(t, drv)
	cfg.Port = ln.Addr().(*net.TCPAddr).Port

	_, err = e.Run(context.Background())
	if !errors.Is(err, ErrServerStart) {
		t.Fatalf("Run() error = %v, want ErrServerStart", err)
	}
	if drv.launched {
		t.Error("browser launched despite server bind failure")
	}
}

func TestExporter_Run_RenderTimeout(t *testing.T) {
	drv := &mockDriver{
		cardCounts: []int{0},
		snapshot:   &Snapshot{Title: "EXPO", Cards: 0, Pages: 0},
	}
	e, cfg := newTestExporter(t, drv)

	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.OK {
		t.Fatal("Run() OK, want render failure")
	}
	if result.Reason != FailureRenderTimeout {
		t.Errorf("Reason = %q, want %q", result.Reason, FailureRenderTimeout)
	}
	if drv.pdfCalled {
		t.Error("PDF captured despite render timeout")
	}
	if _, err := os.Stat(cfg.OutputPath); !os.IsNotExist(err) {
		t.Error("output file written despite render timeout")
	}
	if !drv.closed {
		t.Error("driver not closed on failure path")
	}
}

func TestExporter_Run_ZeroCardsInSnapshot(t *testing.T) {
	// The render wait can succeed while the final snapshot still reports
	// zero cards, e.g. if the page tears its content down again.
	drv := &mockDriver{
		cardCounts: []int{1},
		snapshot:   &Snapshot{Cards: 0},
	}
	e, _ := newTestExporter(t, drv)

	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.OK {
		t.Fatal("Run() OK, want failure")
	}
	if result.Reason != FailureNoCards {
		t.Errorf("Reason = %q, want %q", result.Reason, FailureNoCards)
	}
}

func TestExporter_Run_NavigationTimeoutIsRecovered(t *testing.T) {
	drv := &mockDriver{
		navErr:     fmt.Errorf("%w: within 30s", ErrNavigationTimeout),
		cardCounts: []int{2},
		snapshot:   &Snapshot{Cards: 2, Pages: 1},
	}
	e, _ := newTestExporter(t, drv)

	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v, navigation timeout should be recovered", err)
	}
	if !result.OK {
		t.Errorf("Run() not OK after recovered navigation timeout: %s", result.Reason)
	}
}

func TestExporter_Run_NavigationErrorIsFatal(t *testing.T) {
	drv := &mockDriver{navErr: fmt.Errorf("%w: boom", ErrPageNavigate)}
	e, _ := newTestExporter(t, drv)

	_, err := e.Run(context.Background())
	if !errors.Is(err, ErrPageNavigate) {
		t.Fatalf("Run() error = %v, want ErrPageNavigate", err)
	}
	if !drv.closed {
		t.Error("driver not closed on fatal navigation error")
	}
}

func TestExporter_Run_LaunchErrorStopsServer(t *testing.T) {
	drv := &mockDriver{launchErr: fmt.Errorf("%w: no chrome", ErrBrowserConnect)}
	e, cfg := newTestExporter(t, drv)

	// Reserve a concrete port so the re-bind below is meaningful.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Port = ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	_, err = e.Run(context.Background())
	if !errors.Is(err, ErrBrowserConnect) {
		t.Fatalf("Run() error = %v, want ErrBrowserConnect", err)
	}
	// The deferred shutdown must have released the port; binding the same
	// config again proves it.
	srv := NewAssetServer(cfg, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("port not released after failed run: %v", err)
	}
	_ = srv.Stop(context.Background())
}

func TestExporter_Run_CountErrorIsFatal(t *testing.T) {
	drv := &mockDriver{countErr: fmt.Errorf("%w: page gone", ErrEvalFailed)}
	e, _ := newTestExporter(t, drv)

	_, err := e.Run(context.Background())
	if !errors.Is(err, ErrEvalFailed) {
		t.Fatalf("Run() error = %v, want ErrEvalFailed", err)
	}
}

func TestExporter_Run_InvalidConfig(t *testing.T) {
	drv := &mockDriver{}
	e, cfg := newTestExporter(t, drv)
	cfg.CardSelector = ""

	_, err := e.Run(context.Background())
	if !errors.Is(err, ErrEmptySelector) {
		t.Fatalf("Run() error = %v, want ErrEmptySelector", err)
	}
	if drv.launched {
		t.Error("browser launched despite invalid config")
	}
}
