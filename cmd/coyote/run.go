package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
	"github.com/alexisbeaulieu97/coyote/internal/engine"
	"github.com/alexisbeaulieu97/coyote/internal/stages"
	"github.com/alexisbeaulieu97/coyote/internal/tui"
)

type runOptions struct {
	errorMessage string
	logFile      string
	preset       string
	severity     string
	repoPath     string
	affected     []string
	auto         bool
	output       string
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the incident resolution pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), flags, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.errorMessage, "error", "e", "", "Error message to resolve")
	cmd.Flags().StringVarP(&opts.logFile, "log-file", "f", "", "Path to a log file containing the error")
	cmd.Flags().StringVarP(&opts.preset, "stages", "s", "full", "Stage preset (full, investigate, design-implement)")
	cmd.Flags().StringVar(&opts.severity, "severity", "medium", "Incident severity (critical, high, medium, low, info)")
	cmd.Flags().StringVar(&opts.repoPath, "repo", ".", "Repository to mine for related changes")
	cmd.Flags().StringArrayVar(&opts.affected, "affected", nil, "Known affected file (repeatable)")
	cmd.Flags().BoolVar(&opts.auto, "auto", false, "Run without approval checkpoints")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "Output format (text, json)")

	return cmd
}

func selectPreset(preset string, deps stages.Dependencies) ([]engine.Stage, error) {
	switch preset {
	case "full":
		return stages.Full(deps), nil
	case "investigate":
		return stages.InvestigationOnly(deps), nil
	case "design-implement":
		return stages.DesignAndImplement(deps), nil
	default:
		return nil, fmt.Errorf("unknown stage preset %q", preset)
	}
}

func runPipeline(ctx context.Context, flags *rootFlags, opts runOptions) error {
	a, err := newApp(flags)
	if err != nil {
		return err
	}

	deps, err := a.stageDependencies()
	if err != nil {
		return err
	}

	stageList, err := selectPreset(opts.preset, deps)
	if err != nil {
		return err
	}

	inc, sctx, err := a.buildIncident(ctx, opts.errorMessage, opts.logFile, opts.severity, opts.repoPath, opts.affected)
	if err != nil {
		return err
	}

	interactive := stdoutIsTerminal()
	autoProceed := opts.auto || a.cfg.Pipeline.AutoProceed
	if !interactive && !autoProceed {
		a.log.Warn(ctx, "no terminal available for approval prompts, proceeding automatically")
		autoProceed = true
	}

	pipelineOpts := []engine.Option{
		engine.WithAutoProceed(autoProceed),
		engine.WithLogger(a.log),
	}
	if interactive && !autoProceed {
		pipelineOpts = append(pipelineOpts, engine.WithApprovalGate(tui.NewGate(nil, nil)))
	}
	pipeline := engine.New(stageList, pipelineOpts...)

	var result *incident.PipelineResult
	if interactive && autoProceed && opts.output == "text" {
		result, err = tui.RunWithSpinner(ctx, "resolving "+inc.ID, func() *incident.PipelineResult {
			return pipeline.Resume(ctx, sctx)
		})
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("run interrupted")
		}
	} else {
		result = pipeline.Resume(ctx, sctx)
	}

	return emitResult(os.Stdout, result, opts.output)
}
