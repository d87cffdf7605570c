package main

import (
	"fmt"
	"time"

	flag "github.com/spf13/pflag"
)

// cliFlags holds all command-line options.
type cliFlags struct {
	dir     string
	out     string
	port    int
	config  string
	verbose bool
	version bool

	renderTimeout time.Duration
	navTimeout    time.Duration
	settleDelay   time.Duration

	fetchData        bool
	dataOnly         bool
	roomsFallback    string
	exhibitsFallback string
}

// parseFlags parses command-line arguments. Defaults on duration flags are
// sentinel zeros so a config file value is only overridden when the flag is
// set explicitly.
func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("expopdf", flag.ContinueOnError)
	fs.SortFlags = false

	fs.StringVarP(&f.dir, "dir", "d", "", "directory holding the booklet page (default: current directory)")
	fs.StringVarP(&f.out, "out", "o", "", "output PDF path (default: expo_booklet.pdf in the booklet directory)")
	fs.IntVarP(&f.port, "port", "p", -1, "asset server port (0 = ephemeral)")
	fs.StringVarP(&f.config, "config", "c", "", "config file path or name")
	fs.DurationVar(&f.renderTimeout, "render-timeout", 0, "how long to wait for exhibit cards to render")
	fs.DurationVar(&f.navTimeout, "nav-timeout", 0, "how long to wait for network quiescence after navigation")
	fs.DurationVar(&f.settleDelay, "settle-delay", 0, "pause between render and PDF capture")
	fs.BoolVar(&f.fetchData, "fetch-data", false, "refresh expo_booklet_data.csv from the published spreadsheets first")
	fs.BoolVar(&f.dataOnly, "data-only", false, "only refresh the data file, skip the PDF export")
	fs.StringVar(&f.roomsFallback, "rooms-fallback", "", "local CSV used when the room sheet cannot be fetched")
	fs.StringVar(&f.exhibitsFallback, "exhibits-fallback", "", "local CSV used when the exhibit sheet cannot be fetched")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: expopdf [flags]\n\nExport the expo booklet page to PDF.\n\nFlags:\n%s", fs.FlagUsages())
	}

	if err := fs.Parse(args[1:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFlags, err)
	}
	return f, nil
}
