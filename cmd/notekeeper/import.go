package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/artpar/notekeeper/internal/core/auth"
	"github.com/artpar/notekeeper/internal/shell/importer"
)

// runImport loads a YAML document and saves it as the given user.
// Any rejected record makes the run exit with ExitImportError.
func runImport(ctx context.Context, cfg *Config, logger *slog.Logger, path, as string, out io.Writer) int {
	actor := auth.Actor(as)
	if !actor.IsPresent() {
		fmt.Fprintln(out, "import requires -as <user id>")
		return ExitConfigError
	}

	doc, err := importer.Load(path)
	if err != nil {
		logger.Error("failed to load import file", "path", path, "error", err)
		return ExitImportError
	}

	s, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return ExitDatabaseError
	}
	defer s.Close()

	report, err := importer.New(s, logger).Import(ctx, actor, doc)
	if err != nil {
		logger.Error("import interrupted", "error", err)
		return ExitImportError
	}

	for _, r := range report.Results {
		switch r.Outcome {
		case importer.OutcomeCreated:
			fmt.Fprintf(out, "%-8s %-24s %s\n", r.Outcome, r.Path, r.ID)
		default:
			fmt.Fprintf(out, "%-8s %-24s %s\n", r.Outcome, r.Path, r.Message)
		}
	}
	fmt.Fprintf(out, "created=%d failed=%d skipped=%d\n", report.Created, report.Failed, report.Skipped)

	if report.Failed > 0 {
		return ExitImportError
	}
	return ExitSuccess
}
