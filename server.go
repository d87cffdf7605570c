package expopdf

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// contentTypes maps file extensions to their Content-Type header. Unknown
// extensions fall back to application/octet-stream.
var contentTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".png":  "image/png",
	".svg":  "image/svg+xml",
}

const fallbackContentType = "application/octet-stream"

// AssetServer serves the booklet page and its assets from a local directory
// over HTTP on the loopback interface. Requests are handled statelessly;
// there is no caching and no shared mutable state between them.
type AssetServer struct {
	root       string
	defaultDoc string
	port       int
	logger     *zap.Logger

	srv *http.Server
	ln  net.Listener
}

// NewAssetServer creates a server for cfg.RootDir on cfg.Port.
func NewAssetServer(cfg *Config, logger *zap.Logger) *AssetServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssetServer{
		root:       cfg.RootDir,
		defaultDoc: cfg.DefaultDocument,
		port:       cfg.Port,
		logger:     logger,
	}
}

// Start binds the listener and begins serving in the background. A bind
// failure (e.g. port already in use) is returned as ErrServerStart so the
// caller can abort before launching a browser.
func (s *AssetServer) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServerStart, err)
	}
	s.ln = ln

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/*", s.serveAsset)
	s.srv = &http.Server{Handler: r}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("asset server stopped unexpectedly", zap.Error(err))
		}
	}()

	s.logger.Info("asset server listening", zap.String("addr", s.URL()), zap.String("root", s.root))
	return nil
}

// URL returns the server's base URL. Only valid after Start succeeds.
func (s *AssetServer) URL() string {
	return "http://" + s.ln.Addr().String()
}

// Stop shuts the server down, releasing the listener.
func (s *AssetServer) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// serveAsset resolves the request path against the root directory and
// responds with the file bytes and a content type from the extension table.
// The root path maps to the default document. The server only ever faces a
// local browser pointed at a trusted directory, so paths are joined as-is.
func (s *AssetServer) serveAsset(w http.ResponseWriter, r *http.Request) {
	reqPath := r.URL.Path
	if reqPath == "/" || reqPath == "" {
		reqPath = "/" + s.defaultDoc
	}

	filePath := filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(reqPath, "/")))
	data, err := os.ReadFile(filePath)
	if err != nil {
		s.logger.Debug("asset not found", zap.String("path", reqPath))
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "Not found: %s", reqPath)
		return
	}

	ctype, ok := contentTypes[strings.ToLower(path.Ext(reqPath))]
	if !ok {
		ctype = fallbackContentType
	}
	w.Header().Set("Content-Type", ctype)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("asset write failed", zap.String("path", reqPath), zap.Error(err))
		return
	}
	s.logger.Debug("asset served", zap.String("path", reqPath), zap.Int("bytes", len(data)), zap.String("type", ctype))
}
