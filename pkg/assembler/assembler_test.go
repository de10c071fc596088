package assembler

import (
	"context"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/internal/blob"
	agentrepo "github.com/Ramsey-B/fern/internal/repositories/agent"
	submissionrepo "github.com/Ramsey-B/fern/internal/repositories/submission"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/pdfgen"
)

func newTestAssembler(t *testing.T) (*Assembler, blob.Store, agentrepo.AgentRepository, submissionrepo.SubmissionRepository) {
	t.Helper()

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	store, err := blob.NewLocalStore(t.TempDir(), logger)
	require.NoError(t, err)

	agents := agentrepo.NewRepository(store, logger)
	submissions := submissionrepo.NewRepository(store, logger)

	return New(agents, submissions, store, pdfgen.NewRenderer(), nil, logger), store, agents, submissions
}

func savedSubmission(t *testing.T, submissions submissionrepo.SubmissionRepository, typ models.SubmissionType) *models.Submission {
	t.Helper()

	sub := &models.Submission{
		ID:         uuid.New().String(),
		Type:       typ,
		ReceivedAt: time.Now().UTC(),
		Payload: models.SubmissionPayload{
			Contact: models.ContactInfo{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"},
		},
	}
	require.NoError(t, submissions.Save(context.Background(), sub))
	return sub
}

func TestAssembleAndStore_RecordsKeyAndProgress(t *testing.T) {
	asm, store, agents, submissions := newTestAssembler(t)
	ctx := context.Background()

	ag := models.NewAgent(models.Profile{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"})
	require.NoError(t, agents.Save(ctx, ag))
	sub := savedSubmission(t, submissions, models.SubmissionIntake)

	key, err := asm.AssembleAndStore(ctx, ag, sub)
	require.NoError(t, err)
	require.NotEmpty(t, key)

	data, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))

	saved, err := agents.Get(ctx, ag.ID)
	require.NoError(t, err)
	assert.Equal(t, key, saved.Submissions[models.SubmissionPDFKey(models.SubmissionIntake)])
	assert.True(t, saved.Progress[models.ProgressKey(models.SubmissionIntake)])
}

func TestAssembleAndStore_RestoresClearedProgressFlag(t *testing.T) {
	asm, _, agents, submissions := newTestAssembler(t)
	ctx := context.Background()

	ag := models.NewAgent(models.Profile{Email: "jane@example.com"})
	ag.Progress[models.ProgressIntakeSubmitted] = false
	require.NoError(t, agents.Save(ctx, ag))
	sub := savedSubmission(t, submissions, models.SubmissionIntake)

	_, err := asm.AssembleAndStore(ctx, ag, sub)
	require.NoError(t, err)

	saved, err := agents.Get(ctx, ag.ID)
	require.NoError(t, err)
	assert.True(t, saved.Progress[models.ProgressIntakeSubmitted])
}

func TestAssembleAgent_RendersEveryLinkedSubmission(t *testing.T) {
	asm, _, agents, submissions := newTestAssembler(t)
	ctx := context.Background()

	intake := savedSubmission(t, submissions, models.SubmissionIntake)
	w9 := savedSubmission(t, submissions, models.SubmissionW9)

	ag := models.NewAgent(models.Profile{Email: "jane@example.com"})
	ag.Submissions[models.SubmissionIDKey(models.SubmissionIntake)] = intake.ID
	ag.Submissions[models.SubmissionIDKey(models.SubmissionW9)] = w9.ID
	require.NoError(t, agents.Save(ctx, ag))

	report, err := asm.AssembleAgent(ctx, ag.ID)
	require.NoError(t, err)
	assert.Len(t, report.Rendered, 2)
	assert.Empty(t, report.Errors)

	saved, err := agents.Get(ctx, ag.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.Submissions[models.SubmissionPDFKey(models.SubmissionIntake)])
	assert.NotEmpty(t, saved.Submissions[models.SubmissionPDFKey(models.SubmissionW9)])
}

func TestAssembleAgent_IsolatesMissingSubmission(t *testing.T) {
	asm, _, agents, submissions := newTestAssembler(t)
	ctx := context.Background()

	w9 := savedSubmission(t, submissions, models.SubmissionW9)

	ag := models.NewAgent(models.Profile{Email: "jane@example.com"})
	ag.Submissions[models.SubmissionIDKey(models.SubmissionIntake)] = "gone"
	ag.Submissions[models.SubmissionIDKey(models.SubmissionW9)] = w9.ID
	require.NoError(t, agents.Save(ctx, ag))

	report, err := asm.AssembleAgent(ctx, ag.ID)
	require.NoError(t, err)
	assert.Len(t, report.Rendered, 1)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "gone")
}

func TestAssembleAgent_UnknownAgent(t *testing.T) {
	asm, _, _, _ := newTestAssembler(t)

	_, err := asm.AssembleAgent(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, 404, httperror.GetStatusCode(err))
}
