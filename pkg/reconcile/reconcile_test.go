package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/internal/blob"
	agentrepo "github.com/Ramsey-B/fern/internal/repositories/agent"
	submissionrepo "github.com/Ramsey-B/fern/internal/repositories/submission"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/resolver"
)

func newTestSweeper(t *testing.T) (*Sweeper, blob.Store, agentrepo.AgentRepository, submissionrepo.SubmissionRepository) {
	t.Helper()

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	store, err := blob.NewLocalStore(t.TempDir(), logger)
	require.NoError(t, err)

	agents := agentrepo.NewRepository(store, logger)
	submissions := submissionrepo.NewRepository(store, logger)
	res := resolver.New(agents, logger)

	return New(submissions, agents, res, nil, logger), store, agents, submissions
}

func storedSubmission(t *testing.T, submissions submissionrepo.SubmissionRepository, typ models.SubmissionType, contact models.ContactInfo) *models.Submission {
	t.Helper()

	sub := &models.Submission{
		ID:         uuid.New().String(),
		Type:       typ,
		ReceivedAt: time.Now().UTC(),
		Payload:    models.SubmissionPayload{Contact: contact},
	}
	require.NoError(t, submissions.Save(context.Background(), sub))
	return sub
}

func TestSweep_LinksOrphanedSubmissions(t *testing.T) {
	sweeper, _, agents, submissions := newTestSweeper(t)
	ctx := context.Background()

	sub := storedSubmission(t, submissions, models.SubmissionIntake, models.ContactInfo{
		FirstName: "Jane", LastName: "Doe", Email: "jane@example.com",
	})

	report, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Linked)
	assert.Equal(t, 1, report.AgentsCreated)
	assert.Empty(t, report.Errors)

	all, err := agents.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, sub.ID, all[0].Submissions[models.SubmissionIDKey(models.SubmissionIntake)])
	assert.True(t, all[0].Progress[models.ProgressIntakeSubmitted])
}

func TestSweep_IsIdempotent(t *testing.T) {
	sweeper, _, agents, submissions := newTestSweeper(t)
	ctx := context.Background()

	storedSubmission(t, submissions, models.SubmissionIntake, models.ContactInfo{Email: "jane@example.com"})

	first, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Linked)

	second, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Processed)
	assert.Equal(t, 0, second.Linked)
	assert.Equal(t, 0, second.AgentsCreated)

	all, err := agents.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSweep_GroupsByEmail(t *testing.T) {
	sweeper, _, agents, submissions := newTestSweeper(t)
	ctx := context.Background()

	storedSubmission(t, submissions, models.SubmissionIntake, models.ContactInfo{Email: "jane@example.com"})
	storedSubmission(t, submissions, models.SubmissionW9, models.ContactInfo{Email: " JANE@example.com "})

	report, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Linked)
	assert.Equal(t, 1, report.AgentsCreated)

	all, err := agents.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Progress[models.ProgressIntakeSubmitted])
	assert.True(t, all[0].Progress[models.ProgressW9Submitted])
}

func TestSweep_SkipsContactlessSubmissions(t *testing.T) {
	sweeper, _, agents, submissions := newTestSweeper(t)
	ctx := context.Background()

	storedSubmission(t, submissions, models.SubmissionIntake, models.ContactInfo{})

	report, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Linked)

	all, err := agents.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSweep_ReportsMalformedRecords(t *testing.T) {
	sweeper, store, _, submissions := newTestSweeper(t)
	ctx := context.Background()

	storedSubmission(t, submissions, models.SubmissionIntake, models.ContactInfo{Email: "jane@example.com"})
	require.NoError(t, store.Put(ctx, "submissions/bad-id/intake.json", []byte("{not json"), "application/json"))

	report, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Linked)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "submissions/bad-id/intake.json")
}
