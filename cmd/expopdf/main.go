package main

import (
	"context"
	"fmt"
	"os"

	expopdf "github.com/engexpo/go-expopdf"
	"github.com/engexpo/go-expopdf/internal/sheetdata"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	flags, err := parseFlags(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}

	if flags.version {
		fmt.Printf("expopdf %s\n", Version)
		os.Exit(ExitSuccess)
	}

	logger, err := newLogger(flags.verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitGeneral)
	}
	defer func() { _ = logger.Sync() }()

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))

	os.Exit(run(flags, logger))
}

// run executes the requested workflow and maps the outcome to an exit code.
func run(flags *cliFlags, logger *zap.Logger) int {
	var file *fileConfig
	if flags.config != "" {
		loaded, err := loadFileConfig(flags.config)
		if err != nil {
			logger.Error("config", zap.Error(err))
			return exitCodeFor(err)
		}
		file = loaded
	}

	cfg, err := buildConfig(flags, file)
	if err != nil {
		logger.Error("config", zap.Error(err))
		return exitCodeFor(err)
	}

	ctx := context.Background()

	if flags.fetchData || flags.dataOnly || (file != nil && file.Data.Fetch) {
		if code := fetchBookletData(ctx, flags, file, cfg, logger); code != ExitSuccess {
			return code
		}
		if flags.dataOnly {
			return ExitSuccess
		}
	}

	result, err := expopdf.NewExporter(cfg, expopdf.WithLogger(logger)).Run(ctx)
	if err != nil {
		logger.Error("export", zap.Error(err))
		return exitCodeFor(err)
	}
	if !result.OK {
		fmt.Println(result.Snapshot.String())
		return ExitGeneral
	}

	fmt.Printf("Exported %d exhibits across %d pages to %s\n",
		result.Snapshot.Cards, result.Snapshot.Pages, result.OutputPath)
	return ExitSuccess
}

// fetchBookletData refreshes expo_booklet_data.csv in the booklet directory.
func fetchBookletData(ctx context.Context, flags *cliFlags, file *fileConfig, cfg *expopdf.Config, logger *zap.Logger) int {
	roomsSrc := sheetdata.Source{URL: sheetdata.RoomsURL, Fallback: flags.roomsFallback}
	exhibitsSrc := sheetdata.Source{URL: sheetdata.ExhibitsURL, Fallback: flags.exhibitsFallback}
	if file != nil {
		if roomsSrc.Fallback == "" {
			roomsSrc.Fallback = file.Data.RoomsFallback
		}
		if exhibitsSrc.Fallback == "" {
			exhibitsSrc.Fallback = file.Data.ExhibitsFallback
		}
	}

	rows, err := sheetdata.Prepare(ctx, cfg.RootDir, roomsSrc, exhibitsSrc, logger)
	if err != nil {
		logger.Error("data preparation", zap.Error(err))
		return exitCodeFor(err)
	}
	fmt.Printf("Wrote %d exhibits to %s\n", rows, sheetdata.OutputName)
	return ExitSuccess
}

// newLogger builds a console logger: debug level when verbose, info otherwise.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		cfg.DisableCaller = true
	}
	return cfg.Build()
}
