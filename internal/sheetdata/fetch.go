package sheetdata

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// fetchTimeout bounds each spreadsheet download.
const fetchTimeout = 10 * time.Second

// Source identifies one spreadsheet: a published CSV endpoint and an
// optional local fallback file used when the endpoint cannot be reached.
type Source struct {
	URL      string
	Fallback string
}

// Prepare fetches both sheets, builds the booklet records, and writes the
// data file into dir. It returns the number of records written.
func Prepare(ctx context.Context, dir string, roomsSrc, exhibitsSrc Source, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rooms, err := fetchTable(ctx, roomsSrc, logger)
	if err != nil {
		return 0, fmt.Errorf("loading room assignments: %w", err)
	}
	exhibits, err := fetchTable(ctx, exhibitsSrc, logger)
	if err != nil {
		return 0, fmt.Errorf("loading exhibit responses: %w", err)
	}

	records, err := Build(rooms, exhibits)
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return 0, err
	}
	outPath := filepath.Join(dir, OutputName)
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", outPath, err)
	}

	logger.Info("booklet data written", zap.String("path", outPath), zap.Int("rows", len(records)))
	return len(records), nil
}

// fetchTable downloads and parses one sheet, falling back to the local file
// when the endpoint is unreachable or returns a non-OK status.
func fetchTable(ctx context.Context, src Source, logger *zap.Logger) (*table, error) {
	t, err := fetchRemote(ctx, src.URL)
	if err == nil {
		return t, nil
	}
	if src.Fallback == "" {
		return nil, err
	}

	logger.Warn("spreadsheet fetch failed, using local fallback",
		zap.String("url", src.URL),
		zap.String("fallback", src.Fallback),
		zap.Error(err))
	f, openErr := os.Open(src.Fallback)
	if openErr != nil {
		return nil, fmt.Errorf("fallback %s: %w", src.Fallback, openErr)
	}
	defer f.Close()
	return parseTable(f)
}

func fetchRemote(ctx context.Context, url string) (*table, error) {
	reqCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}
	return parseTable(resp.Body)
}
