// Package gitctx enriches an incident with change history from the local
// repository: recent commits touching the affected files become related
// changes the investigation prompt can reason about.
package gitctx

import (
	"context"
	"fmt"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
	"github.com/alexisbeaulieu97/coyote/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/coyote/internal/ports"
)

const (
	defaultMaxCommits = 50
	shortHashLen      = 8
)

// Enricher inspects a repository's history for commits relevant to an
// incident's affected files.
type Enricher struct {
	repoPath   string
	maxCommits int
	logger     ports.Logger
}

// Option configures the enricher.
type Option func(*Enricher)

// WithMaxCommits caps how far back the history walk goes.
func WithMaxCommits(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.maxCommits = n
		}
	}
}

// NewEnricher builds an enricher over the repository at repoPath.
func NewEnricher(repoPath string, logger ports.Logger, opts ...Option) *Enricher {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	e := &Enricher{
		repoPath:   repoPath,
		maxCommits: defaultMaxCommits,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich walks recent history and records commits touching the incident's
// affected files as related changes, newest first. The incident is only
// appended to, never rewritten.
func (e *Enricher) Enrich(ctx context.Context, inc *incident.Incident) error {
	if len(inc.AffectedFiles) == 0 {
		return nil
	}

	repo, err := git.PlainOpenWithOptions(e.repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return fmt.Errorf("open repository %s: %w", e.repoPath, err)
	}

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("resolve HEAD: %w", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return fmt.Errorf("walk history: %w", err)
	}
	defer iter.Close()

	seen := 0
	err = iter.ForEach(func(commit *object.Commit) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if seen >= e.maxCommits {
			return storer.ErrStop
		}
		seen++

		touched, err := commitTouches(commit, inc.AffectedFiles)
		if err != nil {
			// A commit whose diff cannot be computed is skipped, not fatal.
			e.logger.Debug(ctx, "skipping commit with unreadable diff", "commit", commit.Hash.String(), "error", err)
			return nil
		}
		if touched {
			inc.AddRelatedChange(describeCommit(commit))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk history: %w", err)
	}

	e.logger.Debug(ctx, "history enrichment complete",
		"incident_id", inc.ID,
		"commits_scanned", seen,
		"related_changes", len(inc.RelatedChanges),
	)
	return nil
}

// commitTouches reports whether the commit modified any of the given paths.
// Paths match on suffix so callers can pass either repo-relative or partial
// paths.
func commitTouches(commit *object.Commit, paths []string) (bool, error) {
	stats, err := commit.Stats()
	if err != nil {
		return false, err
	}
	for _, stat := range stats {
		for _, path := range paths {
			if stat.Name == path || strings.HasSuffix(stat.Name, "/"+path) || strings.HasSuffix(path, "/"+stat.Name) {
				return true, nil
			}
		}
	}
	return false, nil
}

func describeCommit(commit *object.Commit) string {
	hash := commit.Hash.String()
	if len(hash) > shortHashLen {
		hash = hash[:shortHashLen]
	}
	subject := commit.Message
	if idx := strings.IndexByte(subject, '\n'); idx >= 0 {
		subject = subject[:idx]
	}
	return hash + " " + strings.TrimSpace(subject)
}
