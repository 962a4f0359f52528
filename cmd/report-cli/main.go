// Command report-cli generates client reports from spreadsheet links and
// writes them to a directory.
//
// Usage:
//
//	report-cli [-config config.yaml] [-in links.txt] [-out dir] [link ...]
//
// Links come from the arguments and from the -in file, one per line. The
// exit status is 1 when the tool cannot start (bad flags, no links,
// missing credentials) and 2 when every link failed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"clientreport/internal/app"
	"clientreport/internal/config"
	"clientreport/internal/infrastructure"
	"clientreport/internal/pipeline"
	"clientreport/internal/sheets"
	"clientreport/internal/validation"
)

const (
	exitOK        = 0
	exitStartup   = 1
	exitAllFailed = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil)
	stop()
	os.Exit(code)
}

// run executes the tool. A nil resolver means the Google Sheets resolver
// built from the configured credentials.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, resolver sheets.Resolver) int {
	fs := flag.NewFlagSet("report-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config.yaml")
	inFile := fs.String("in", "", "file with one spreadsheet link per line")
	outDir := fs.String("out", ".", "directory the reports are written to")
	if err := fs.Parse(args); err != nil {
		return exitStartup
	}

	locators, err := collectLocators(fs.Args(), *inFile)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitStartup
	}
	if len(locators) == 0 {
		fmt.Fprintln(stderr, "error: no spreadsheet links given")
		fs.Usage()
		return exitStartup
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitStartup
	}
	logger, logFile, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitStartup
	}
	if logFile != nil {
		defer logFile.Close()
	}

	limiter := app.NewLimiter(cfg.Sheets)
	if resolver == nil {
		if resolver, err = app.NewResolver(ctx, cfg.Sheets, limiter, logger); err != nil {
			if errors.Is(err, sheets.ErrCredentialsMissing) {
				fmt.Fprintf(stderr, "error: %v (set REPORTS_SHEETS_CREDENTIALS_FILE or sheets.credentials_file)\n", err)
			} else {
				fmt.Fprintf(stderr, "error: %v\n", err)
			}
			return exitStartup
		}
	}

	files := validation.NewFileValidator(logger)
	if err := files.ValidateOutputDirectory(*outDir); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitStartup
	}

	progress := pipeline.ObserverFunc(func(e pipeline.Event) {
		if e.Status == pipeline.StatusProcessing && e.Stage == pipeline.StageResolve {
			fmt.Fprintf(stdout, "[%d/%d] %s\n", e.Index+1, e.Total, e.Source)
		}
	})
	runner := app.NewRunner(cfg.Sheets, resolver, limiter, logger, nil, nil, progress)
	results := runner.Run(ctx, locators)

	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
			fmt.Fprintf(stdout, "FAIL %s: %v\n", res.Source, res.Err)
			continue
		}
		path := filepath.Join(*outDir, res.Artifact.Name)
		if err := os.WriteFile(path, res.Artifact.Data, 0o644); err != nil {
			failed++
			fmt.Fprintf(stdout, "FAIL %s: write %s: %v\n", res.Source, path, err)
			continue
		}
		if err := files.ValidateReportFile(path); err != nil {
			failed++
			fmt.Fprintf(stdout, "FAIL %s: %v\n", res.Source, err)
			continue
		}
		line := fmt.Sprintf("ok   %s -> %s", res.Source, path)
		if len(res.Report.Degraded) > 0 {
			line += fmt.Sprintf(" (unavailable: %v)", res.Report.Degraded)
		}
		fmt.Fprintln(stdout, line)
	}

	logger.InfoContext(ctx, "cli run complete",
		slog.Int("sources", len(results)),
		slog.Int("failed", failed))

	if failed == len(results) {
		return exitAllFailed
	}
	return exitOK
}

func collectLocators(args []string, inFile string) ([]string, error) {
	var locators []string
	for _, a := range args {
		locators = append(locators, pipeline.ParseLocators(a)...)
	}
	if inFile != "" {
		data, err := os.ReadFile(inFile)
		if err != nil {
			return nil, fmt.Errorf("read links file: %w", err)
		}
		locators = append(locators, pipeline.ParseLocators(string(data))...)
	}
	return locators, nil
}
