package expopdf

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

// startTestServer serves dir on an ephemeral port and registers cleanup.
func startTestServer(t *testing.T, dir string) *AssetServer {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RootDir = dir
	cfg.Port = 0
	srv := NewAssetServer(cfg, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := srv.Stop(context.Background()); err != nil {
			t.Errorf("Stop() failed: %v", err)
		}
	})
	return srv
}

func get(t *testing.T, url string) (int, string, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp.StatusCode, resp.Header.Get("Content-Type"), body
}

func TestAssetServer_ServesFilesWithContentTypes(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"index.html": "<html><body>booklet</body></html>",
		"style.css":  ".exhibit-card { color: red }",
		"app.js":     "console.log('hi')",
		"logo.png":   "\x89PNG fake",
		"map.svg":    "<svg></svg>",
		"data.csv":   "a,b,c",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	srv := startTestServer(t, dir)

	tests := []struct {
		path      string
		wantType  string
		wantFile  string
	}{
		{"/index.html", "text/html", "index.html"},
		{"/style.css", "text/css", "style.css"},
		{"/app.js", "application/javascript", "app.js"},
		{"/logo.png", "image/png", "logo.png"},
		{"/map.svg", "image/svg+xml", "map.svg"},
		{"/data.csv", "application/octet-stream", "data.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, ctype, body := get(t, srv.URL()+tt.path)
			if status != http.StatusOK {
				t.Errorf("status = %d, want %d", status, http.StatusOK)
			}
			if ctype != tt.wantType {
				t.Errorf("content type = %q, want %q", ctype, tt.wantType)
			}
			if got, want := string(body), files[tt.wantFile]; got != want {
				t.Errorf("body = %q, want %q", got, want)
			}
		})
	}
}

func TestAssetServer_RootServesDefaultDocument(t *testing.T) {
	dir := t.TempDir()
	content := "<html>default</html>"
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	srv := startTestServer(t, dir)

	status, ctype, body := get(t, srv.URL()+"/")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want %d", status, http.StatusOK)
	}
	if ctype != "text/html" {
		t.Errorf("content type = %q, want text/html", ctype)
	}
	if string(body) != content {
		t.Errorf("body = %q, want %q", body, content)
	}
}

func TestAssetServer_MissingFileReturns404(t *testing.T) {
	srv := startTestServer(t, t.TempDir())

	status, _, _ := get(t, srv.URL()+"/nope.html")
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want %d", status, http.StatusNotFound)
	}
}

func TestAssetServer_BindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	cfg := DefaultConfig()
	cfg.RootDir = t.TempDir()
	cfg.Port = port
	srv := NewAssetServer(cfg, nil)

	err = srv.Start()
	if err == nil {
		_ = srv.Stop(context.Background())
		t.Fatal("Start() succeeded on an occupied port")
	}
	if !errors.Is(err, ErrServerStart) {
		t.Errorf("error = %v, want ErrServerStart", err)
	}
}

func TestAssetServer_StopBeforeStart(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RootDir = t.TempDir()
	srv := NewAssetServer(cfg, nil)
	if err := srv.Stop(context.Background()); err != nil {
		t.Errorf("Stop() before Start() = %v, want nil", err)
	}
}
