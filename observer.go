package expopdf

import "go.uber.org/zap"

// PageObserver receives browser-side events forwarded by the driver. It is
// purely observational: implementations must not influence control flow.
type PageObserver interface {
	// ConsoleMessage is called for each console API call in the page.
	ConsoleMessage(kind, text string)
	// PageError is called for uncaught script exceptions.
	PageError(text string)
	// RequestFailed is called when a network request made by the page fails.
	RequestFailed(url, reason string)
}

// Compile-time interface check
var _ PageObserver = (*logObserver)(nil)

// logObserver forwards page events to a zap logger for diagnostic
// visibility during an export run.
type logObserver struct {
	logger *zap.Logger
}

func newLogObserver(logger *zap.Logger) *logObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logObserver{logger: logger}
}

func (o *logObserver) ConsoleMessage(kind, text string) {
	switch kind {
	case "error":
		o.logger.Warn("page console", zap.String("kind", kind), zap.String("text", text))
	default:
		o.logger.Info("page console", zap.String("kind", kind), zap.String("text", text))
	}
}

func (o *logObserver) PageError(text string) {
	o.logger.Warn("page error", zap.String("text", text))
}

func (o *logObserver) RequestFailed(url, reason string) {
	o.logger.Warn("request failed", zap.String("url", url), zap.String("reason", reason))
}
