package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/coyote/internal/engine"
	"github.com/alexisbeaulieu97/coyote/internal/stages"
)

type investigateOptions struct {
	errorMessage string
	logFile      string
	severity     string
	repoPath     string
	affected     []string
	output       string
}

func newInvestigateCmd(flags *rootFlags) *cobra.Command {
	opts := investigateOptions{}

	cmd := &cobra.Command{
		Use:   "investigate",
		Short: "Trace an incident to its root cause without fixing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvestigation(cmd.Context(), flags, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.errorMessage, "error", "e", "", "Error message to investigate")
	cmd.Flags().StringVarP(&opts.logFile, "log-file", "f", "", "Path to a log file containing the error")
	cmd.Flags().StringVar(&opts.severity, "severity", "medium", "Incident severity (critical, high, medium, low, info)")
	cmd.Flags().StringVar(&opts.repoPath, "repo", ".", "Repository to mine for related changes")
	cmd.Flags().StringArrayVar(&opts.affected, "affected", nil, "Known affected file (repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "Output format (text, json)")

	return cmd
}

func runInvestigation(ctx context.Context, flags *rootFlags, opts investigateOptions) error {
	a, err := newApp(flags)
	if err != nil {
		return err
	}

	deps, err := a.stageDependencies()
	if err != nil {
		return err
	}

	_, sctx, err := a.buildIncident(ctx, opts.errorMessage, opts.logFile, opts.severity, opts.repoPath, opts.affected)
	if err != nil {
		return err
	}

	pipeline := engine.New(
		stages.InvestigationOnly(deps),
		engine.WithAutoProceed(true),
		engine.WithLogger(a.log),
	)
	result := pipeline.Resume(ctx, sctx)

	return emitResult(os.Stdout, result, opts.output)
}
