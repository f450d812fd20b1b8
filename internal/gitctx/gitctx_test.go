package gitctx

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
)

func initRepo(t *testing.T) (string, *git.Worktree) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	return dir, wt
}

func commitFile(t *testing.T, dir string, wt *git.Worktree, path, content, message string) {
	t.Helper()

	full := filepath.Join(dir, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))

	_, err := wt.Add(path)
	require.NoError(t, err)

	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Coyote",
			Email: "coyote@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
}

func TestEnrichFindsCommitsTouchingAffectedFiles(t *testing.T) {
	dir, wt := initRepo(t)
	commitFile(t, dir, wt, "internal/session/cache.go", "package session\n", "add session cache")
	commitFile(t, dir, wt, "README.md", "docs\n", "update docs")
	commitFile(t, dir, wt, "internal/session/cache.go", "package session // v2\n", "tighten session expiry")

	inc := incident.FromError("nil session", "", "manual", incident.SeverityHigh)
	inc.AddAffectedFile("internal/session/cache.go")

	err := NewEnricher(dir, nil).Enrich(context.Background(), &inc)
	require.NoError(t, err)

	require.Len(t, inc.RelatedChanges, 2)
	assert.Contains(t, inc.RelatedChanges[0], "tighten session expiry")
	assert.Contains(t, inc.RelatedChanges[1], "add session cache")
	assert.NotContains(t, inc.RelatedChanges[0]+inc.RelatedChanges[1], "update docs")
}

func TestEnrichIsAdditiveAndDeduplicates(t *testing.T) {
	dir, wt := initRepo(t)
	commitFile(t, dir, wt, "main.go", "package main\n", "initial")

	inc := incident.FromError("boom", "", "manual", incident.SeverityLow)
	inc.AddAffectedFile("main.go")
	inc.AddRelatedChange("manual-note keep me")

	enricher := NewEnricher(dir, nil)
	require.NoError(t, enricher.Enrich(context.Background(), &inc))
	require.NoError(t, enricher.Enrich(context.Background(), &inc))

	assert.Len(t, inc.RelatedChanges, 2)
	assert.Equal(t, "manual-note keep me", inc.RelatedChanges[0])
}

func TestEnrichNoAffectedFilesIsNoOp(t *testing.T) {
	inc := incident.FromError("boom", "", "manual", incident.SeverityLow)

	// Path does not need to exist when there is nothing to look up.
	err := NewEnricher(filepath.Join(t.TempDir(), "absent"), nil).Enrich(context.Background(), &inc)
	assert.NoError(t, err)
	assert.Empty(t, inc.RelatedChanges)
}

func TestEnrichErrorsOnMissingRepository(t *testing.T) {
	inc := incident.FromError("boom", "", "manual", incident.SeverityLow)
	inc.AddAffectedFile("main.go")

	err := NewEnricher(t.TempDir(), nil).Enrich(context.Background(), &inc)
	assert.Error(t, err)
}

func TestEnrichHonorsMaxCommits(t *testing.T) {
	dir, wt := initRepo(t)
	commitFile(t, dir, wt, "a.go", "package a\n", "old change to a")
	commitFile(t, dir, wt, "b.go", "package b\n", "noise")
	commitFile(t, dir, wt, "c.go", "package c\n", "more noise")

	inc := incident.FromError("boom", "", "manual", incident.SeverityLow)
	inc.AddAffectedFile("a.go")

	err := NewEnricher(dir, nil, WithMaxCommits(2)).Enrich(context.Background(), &inc)
	require.NoError(t, err)
	assert.Empty(t, inc.RelatedChanges, "the touching commit is beyond the walk limit")
}
