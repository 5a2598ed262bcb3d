package main

import (
	"context"
	"fmt"
	"log/slog"

	vitae "github.com/alnah/go-vitae"
)

// runBuild performs one full site build.
func runBuild(ctx context.Context, args []string, deps *Dependencies) error {
	flags, _, err := parseBuildFlags("build", args)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadFlags, err)
	}

	cfg, err := loadConfig(flags.config)
	if err != nil {
		return err
	}
	if err := applyOverrides(&cfg, flags); err != nil {
		return err
	}

	svc, err := vitae.New(cfg, vitae.WithLogger(newLogger(deps, flags)))
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	report, err := svc.Build(ctx)
	if err != nil {
		return err
	}

	printReport(deps, flags, cfg.Output.Dir, report)

	if flags.strict && report.HasIssues() {
		return fmt.Errorf("%w: %d issue(s)", ErrStrictIssues, len(report.Issues))
	}
	return nil
}

// newLogger builds the slog logger the build runs with: debug when
// verbose, errors only when quiet.
func newLogger(deps *Dependencies, flags *buildFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case flags.quiet:
		level = slog.LevelError
	case flags.verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(deps.Stderr, &slog.HandlerOptions{Level: level}))
}

func printReport(deps *Dependencies, flags *buildFlags, outDir string, report *vitae.Report) {
	for _, issue := range report.Issues {
		fmt.Fprintf(deps.Stderr, "warning: %s\n", issue)
	}
	if flags.quiet {
		return
	}

	fmt.Fprintf(deps.Stdout, "wrote %d page(s) to %s\n", len(report.Pages), outDir)
	if report.PDFPath != "" {
		fmt.Fprintf(deps.Stdout, "wrote CV PDF to %s\n", report.PDFPath)
	}
	if report.HasIssues() {
		fmt.Fprintf(deps.Stdout, "%d issue(s); content was skipped, see warnings above\n", len(report.Issues))
	}
}
