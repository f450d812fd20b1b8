package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/alexisbeaulieu97/coyote/internal/config"
	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
	"github.com/alexisbeaulieu97/coyote/internal/gitctx"
	"github.com/alexisbeaulieu97/coyote/internal/infrastructure/generator"
	"github.com/alexisbeaulieu97/coyote/internal/infrastructure/insight"
	"github.com/alexisbeaulieu97/coyote/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/coyote/internal/knowledge"
	"github.com/alexisbeaulieu97/coyote/internal/o11y"
	"github.com/alexisbeaulieu97/coyote/internal/ports"
	"github.com/alexisbeaulieu97/coyote/internal/stages"
)

// app bundles the wired collaborators every command starts from.
type app struct {
	cfg   *config.Config
	log   ports.Logger
	store *knowledge.Store
}

func newApp(flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if flags.verbose {
		level = "debug"
	}
	log, err := logging.New(logging.Options{Level: level, HumanReadable: true, Component: "coyote"})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:   cfg,
		log:   log,
		store: knowledge.NewStore(cfg.Knowledge.LessonsFile, log),
	}, nil
}

func (a *app) stageDependencies() (stages.Dependencies, error) {
	gen, err := generator.New(a.cfg)
	if err != nil {
		return stages.Dependencies{}, err
	}

	sink := insight.NewNoOpSink()
	if a.cfg.Knowledge.InsightsEnabled {
		sink = insight.NewLoggingSink(a.log)
	}

	return stages.Dependencies{
		Generator: gen,
		Store:     a.store,
		Insights:  sink,
		Logger:    a.log,
	}, nil
}

// buildIncident assembles the incident from either an inline error message or
// a log file, then enriches it with observability evidence and change history
// where those are available.
func (a *app) buildIncident(ctx context.Context, errorMessage, logFile, severity, repoPath string, affected []string) (incident.Incident, *incident.StageContext, error) {
	var inc incident.Incident
	switch {
	case logFile != "":
		content, err := os.ReadFile(logFile)
		if err != nil {
			return incident.Incident{}, nil, fmt.Errorf("read log file: %w", err)
		}
		inc = incident.FromError(strings.TrimSpace(string(content)), "", "log-file", incident.ParseSeverity(severity))
	case errorMessage != "":
		inc = incident.FromError(errorMessage, "", "cli", incident.ParseSeverity(severity))
	default:
		return incident.Incident{}, nil, fmt.Errorf("provide --error or --log-file")
	}

	for _, path := range affected {
		inc.AddAffectedFile(path)
	}

	if repoPath != "" && len(inc.AffectedFiles) > 0 {
		if err := gitctx.NewEnricher(repoPath, a.log).Enrich(ctx, &inc); err != nil {
			// Missing repositories only cost context, never the run.
			a.log.Warn(ctx, "change history unavailable", "repo", repoPath, "error", err)
		}
	}

	sctx := incident.NewStageContext(inc)

	client := o11y.NewClient(a.cfg.Observability, a.log)
	if client.Configured() {
		evidence := client.InvestigateError(ctx, inc.ErrorMessage, inc.DetectedAt, 5*time.Minute)
		if summary := evidence.Summary(); summary != "" {
			sctx.Metadata["observability"] = summary
		}
	}

	return inc, sctx, nil
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
