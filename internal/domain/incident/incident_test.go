package incident

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	t.Run("derives title from first line", func(t *testing.T) {
		inc := FromError("connection refused\nat dial.go:17\nat main.go:4", "trace", "sentry", SeverityHigh)

		assert.Equal(t, "connection refused", inc.Title)
		assert.Equal(t, "connection refused\nat dial.go:17\nat main.go:4", inc.ErrorMessage)
		assert.Equal(t, "trace", inc.StackTrace)
		assert.Equal(t, "sentry", inc.Source)
		assert.Equal(t, SeverityHigh, inc.Severity)
	})

	t.Run("caps title at 100 characters", func(t *testing.T) {
		long := strings.Repeat("x", 240)
		inc := FromError(long, "", "cli", SeverityMedium)

		assert.Len(t, inc.Title, 100)
		assert.Equal(t, long, inc.Description)
	})

	t.Run("assigns a timestamped identifier", func(t *testing.T) {
		inc := FromError("boom", "", "cli", SeverityLow)

		assert.True(t, strings.HasPrefix(inc.ID, "INC-"))
		assert.False(t, inc.CreatedAt.IsZero())
		assert.Equal(t, inc.CreatedAt, inc.DetectedAt)
	})
}

func TestSeverity(t *testing.T) {
	t.Run("orders by rank", func(t *testing.T) {
		assert.True(t, SeverityCritical.AtLeast(SeverityHigh))
		assert.True(t, SeverityHigh.AtLeast(SeverityHigh))
		assert.False(t, SeverityLow.AtLeast(SeverityMedium))
		assert.True(t, SeverityInfo.AtLeast(Severity("bogus")))
	})

	t.Run("parses known values case-insensitively", func(t *testing.T) {
		assert.Equal(t, SeverityCritical, ParseSeverity("Critical"))
		assert.Equal(t, SeverityInfo, ParseSeverity("  info "))
	})

	t.Run("defaults unknown values to medium", func(t *testing.T) {
		assert.Equal(t, SeverityMedium, ParseSeverity("urgent"))
		assert.Equal(t, SeverityMedium, ParseSeverity(""))
	})
}

func TestIncidentEnrichment(t *testing.T) {
	inc := FromError("boom", "", "cli", SeverityMedium)

	inc.AddAffectedFile("internal/session/session.go")
	inc.AddAffectedFile("internal/session/session.go")
	inc.AddAffectedFile("internal/auth/token.go")

	inc.AddRelatedChange("ab12cd34 fix token refresh")
	inc.AddRelatedChange("ab12cd34 fix token refresh")

	assert.Equal(t, []string{"internal/session/session.go", "internal/auth/token.go"}, inc.AffectedFiles)
	assert.Equal(t, []string{"ab12cd34 fix token refresh"}, inc.RelatedChanges)
}

func TestIncidentValidate(t *testing.T) {
	valid := FromError("boom", "", "cli", SeverityMedium)
	require.NoError(t, valid.Validate())

	noID := valid
	noID.ID = ""
	err := noID.Validate()
	require.Error(t, err)
	var domainErr *DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, ErrCodeMissing, domainErr.Code)

	noTitle := valid
	noTitle.Title = ""
	require.Error(t, noTitle.Validate())
}

func TestStageResultFinish(t *testing.T) {
	start := time.Now()
	result := StageResult{Stage: StageInvestigate, Status: StageCompleted, StartedAt: start}

	result.Finish(start.Add(3 * time.Second))
	assert.Equal(t, 3*time.Second, result.Duration())

	// Completion never precedes the start, even with a skewed clock.
	result.Finish(start.Add(-time.Minute))
	assert.Equal(t, time.Duration(0), result.Duration())
}

func TestStageResultConstructors(t *testing.T) {
	start := time.Now()

	skipped := NewSkippedResult(StageDesign, start)
	assert.True(t, skipped.IsSkipped())
	assert.Empty(t, skipped.Error)

	failed := NewFailedResult(StageDesign, start, errors.New("generator unreachable"))
	assert.True(t, failed.IsFailure())
	assert.Equal(t, "generator unreachable", failed.Error)
}

func TestPipelineResultSuccessful(t *testing.T) {
	result := PipelineResult{
		Status: RunCompleted,
		Stages: []StageResult{
			{Stage: StageInvestigate, Status: StageCompleted},
			{Stage: StageDesign, Status: StageSkipped},
		},
	}
	assert.True(t, result.Successful())

	result.Stages = append(result.Stages, StageResult{Stage: StageImplement, Status: StageFailed, Error: "boom"})
	assert.False(t, result.Successful())

	failed, ok := result.FailedStage()
	require.True(t, ok)
	assert.Equal(t, StageImplement, failed.Stage)
}

func TestStageContextLookups(t *testing.T) {
	sctx := NewStageContext(FromError("boom", "", "cli", SeverityMedium))

	_, ok := sctx.Investigation()
	assert.False(t, ok)

	sctx.Append(StageResult{Stage: StageInvestigate, Status: StageCompleted, RootCause: "nil session"})
	sctx.Append(StageResult{Stage: StageDesign, Status: StageCompleted})

	inv, ok := sctx.Investigation()
	require.True(t, ok)
	assert.Equal(t, "nil session", inv.RootCause)

	_, ok = sctx.Implementation()
	assert.False(t, ok)
}
