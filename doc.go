// Package expopdf exports the expo booklet page to a paginated PDF using
// headless Chrome.
//
// # Quick Start
//
// Create an exporter over the directory holding the booklet page and run it:
//
//	cfg := expopdf.DefaultConfig()
//	cfg.RootDir = "./booklet"
//	cfg.OutputPath = "expo_booklet.pdf"
//
//	exp := expopdf.NewExporter(cfg)
//	result, err := exp.Run(context.Background())
//	if err != nil {
//		log.Fatal(err)
//	}
//	if !result.OK {
//		log.Fatalf("export failed: %s", result.Reason)
//	}
//
// The exporter serves the root directory over a throwaway loopback HTTP
// server, navigates a headless browser to it, waits for the page to render
// its exhibit cards, captures a diagnostics snapshot, and prints the page to
// PDF. The browser and the server are released on every exit path.
//
// Rod automatically downloads Chromium on first run. Set ROD_BROWSER_BIN to
// use a pre-installed browser instead.
package expopdf
