package expopdf

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// pageDriver abstracts the headless browser so the orchestration can be
// tested without one.
type pageDriver interface {
	// Launch starts the browser and opens a page at the configured viewport,
	// attaching obs to the page's console, exception, and network events.
	Launch(cfg *Config, obs PageObserver) error
	// Navigate loads the URL and waits up to idleTimeout for network
	// quiescence. A quiescence timeout is returned as ErrNavigationTimeout.
	Navigate(url string, idleTimeout time.Duration) error
	// CardCount reports how many elements currently match the selector.
	CardCount(selector string) (int, error)
	// Diagnostics extracts a snapshot of page state. It does not fail on
	// missing elements, only on browser-level errors.
	Diagnostics(q diagnosticsQuery) (*Snapshot, error)
	// PDF prints the page and returns the document bytes.
	PDF() ([]byte, error)
	// Close releases the browser. Safe to call before Launch or twice.
	Close() error
}

// Compile-time interface check
var _ pageDriver = (*rodDriver)(nil)

// PDF page dimensions in inches (US Letter format). Margins are zero; the
// booklet's own @page rules control the printable area.
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
)

// rodDriver implements pageDriver using go-rod. Rod automatically downloads
// Chromium on first run if not found.
type rodDriver struct {
	browser *rod.Browser
	page    *rod.Page

	// requestID -> URL, so failed-request events can be reported with the
	// URL they were for.
	requests sync.Map
}

func newRodDriver() *rodDriver {
	return &rodDriver{}
}

// Launch starts headless Chrome with the sandbox disabled and opens a blank
// page sized to the configured viewport.
func (d *rodDriver) Launch(cfg *Config, obs PageObserver) error {
	l := launcher.New().Headless(true).NoSandbox(true)

	// Use a pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	d.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	d.page = page

	vp := &proto.EmulationSetDeviceMetricsOverride{
		Width:             cfg.ViewportWidth,
		Height:            cfg.ViewportHeight,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}
	if err := page.SetViewport(vp); err != nil {
		return fmt.Errorf("%w: setting viewport: %v", ErrPageCreate, err)
	}

	if obs != nil {
		d.attachObserver(obs)
	}
	return nil
}

// attachObserver forwards page events to obs. The event loop runs until the
// page is closed; handlers never block on anything but the observer itself.
func (d *rodDriver) attachObserver(obs PageObserver) {
	go d.page.EachEvent(
		func(e *proto.RuntimeConsoleAPICalled) {
			obs.ConsoleMessage(string(e.Type), formatRemoteObjects(e.Args))
		},
		func(e *proto.RuntimeExceptionThrown) {
			obs.PageError(exceptionText(e.ExceptionDetails))
		},
		func(e *proto.NetworkRequestWillBeSent) {
			d.requests.Store(e.RequestID, e.Request.URL)
		},
		func(e *proto.NetworkLoadingFailed) {
			url := ""
			if v, ok := d.requests.Load(e.RequestID); ok {
				url = v.(string)
			}
			obs.RequestFailed(url, e.ErrorText)
		},
	)()
}

// Navigate loads the URL, subscribing to the network-idle lifecycle event
// before navigating so a fast load cannot slip past the wait. The booklet's
// spreadsheet fetch may hold a connection open, so idle never arriving is a
// recoverable condition, reported as ErrNavigationTimeout.
func (d *rodDriver) Navigate(url string, idleTimeout time.Duration) error {
	p := d.page.Timeout(idleTimeout)
	defer p.CancelTimeout()

	waitIdle := p.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPageNavigate, url, err)
	}
	waitIdle()
	if p.GetContext().Err() != nil {
		return fmt.Errorf("%w: within %s", ErrNavigationTimeout, idleTimeout)
	}
	return nil
}

// CardCount evaluates the selector against the live DOM.
func (d *rodDriver) CardCount(selector string) (int, error) {
	obj, err := d.page.Eval(countJS, selector)
	if err != nil {
		return 0, fmt.Errorf("%w: counting %q: %v", ErrEvalFailed, selector, err)
	}
	return obj.Value.Int(), nil
}

// Diagnostics runs the snapshot script. The script guards every lookup, so
// an error here means the browser itself failed.
func (d *rodDriver) Diagnostics(q diagnosticsQuery) (*Snapshot, error) {
	obj, err := d.page.Eval(diagnosticsJS, q.CardSelector, q.PageSelector, q.StatusSelectors, q.ExcerptLimit, statusPlaceholder)
	if err != nil {
		return nil, fmt.Errorf("%w: extracting diagnostics: %v", ErrEvalFailed, err)
	}

	v := obj.Value
	snap := &Snapshot{
		Title:   v.Get("title").Str(),
		Cards:   v.Get("cards").Int(),
		Pages:   v.Get("pages").Int(),
		Excerpt: v.Get("excerpt").Str(),
	}
	for _, s := range v.Get("statuses").Arr() {
		snap.Statuses = append(snap.Statuses, s.Str())
	}
	return snap, nil
}

// PDF prints the page to US Letter with full backgrounds, zero margins, and
// the page's own @page size rules taking precedence.
func (d *rodDriver) PDF() ([]byte, error) {
	opts := &proto.PagePrintToPDF{
		PaperWidth:        floatPtr(paperWidthInches),
		PaperHeight:       floatPtr(paperHeightInches),
		MarginTop:         floatPtr(0),
		MarginBottom:      floatPtr(0),
		MarginLeft:        floatPtr(0),
		MarginRight:       floatPtr(0),
		PrintBackground:   true,
		PreferCSSPageSize: true,
	}

	reader, err := d.page.PDF(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdf, nil
}

// Close releases browser resources.
func (d *rodDriver) Close() error {
	if d.browser == nil {
		return nil
	}
	err := d.browser.Close()
	d.browser = nil
	d.page = nil
	return err
}

// formatRemoteObjects renders console arguments as a single line.
func formatRemoteObjects(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, o := range args {
		parts = append(parts, formatRemoteObject(o))
	}
	return strings.Join(parts, " ")
}

// formatRemoteObject prefers the primitive value, then the object
// description Chrome provides for non-primitives.
func formatRemoteObject(o *proto.RuntimeRemoteObject) string {
	if o == nil {
		return ""
	}
	if o.Type == proto.RuntimeRemoteObjectTypeString {
		return o.Value.Str()
	}
	if o.Description != "" {
		return o.Description
	}
	return o.Value.String()
}

// exceptionText builds a one-line description of an uncaught exception.
func exceptionText(d *proto.RuntimeExceptionDetails) string {
	if d == nil {
		return "unknown page exception"
	}
	text := d.Text
	if d.Exception != nil && d.Exception.Description != "" {
		text = d.Exception.Description
	}
	return fmt.Sprintf("%s (line %d)", text, d.LineNumber+1)
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
