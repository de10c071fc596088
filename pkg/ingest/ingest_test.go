package ingest

import (
	"context"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/internal/blob"
	agentrepo "github.com/Ramsey-B/fern/internal/repositories/agent"
	submissionrepo "github.com/Ramsey-B/fern/internal/repositories/submission"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/resolver"
)

func newTestIngestor(t *testing.T) (*Ingestor, blob.Store, agentrepo.AgentRepository, submissionrepo.SubmissionRepository) {
	t.Helper()

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	store, err := blob.NewLocalStore(t.TempDir(), logger)
	require.NoError(t, err)

	agents := agentrepo.NewRepository(store, logger)
	submissions := submissionrepo.NewRepository(store, logger)
	res := resolver.New(agents, logger)

	return New(submissions, agents, res, store, nil, nil, logger), store, agents, submissions
}

func TestIngest_IntakeCreatesAndLinksAgent(t *testing.T) {
	ing, _, agents, submissions := newTestIngestor(t)
	ctx := context.Background()

	raw := Raw{
		"firstName":      "Jane",
		"lastName":       "Doe",
		"email":          "Jane.Doe@Example.com",
		"phone":          "555-0100",
		"licensedStates": []string{"CA", "NY"},
		"felony":         "on",
		"signatureText":  "Jane Doe",
	}

	resp, err := ing.Ingest(ctx, models.SubmissionIntake, raw, nil)
	require.NoError(t, err)
	require.True(t, resp.Linked)
	require.NotEmpty(t, resp.AgentID)
	assert.NotEmpty(t, resp.Submission.Fingerprint)

	sub, err := submissions.Get(ctx, resp.Submission.ID, models.SubmissionIntake)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "Jane.Doe@Example.com", sub.Payload.Contact.Email)
	assert.Equal(t, []string{"CA", "NY"}, sub.Payload.Licensing.LicensedStates)
	assert.True(t, sub.Payload.Background.Answers["felony"])
	assert.False(t, sub.Payload.Background.Answers["bankruptcy"])

	a, err := agents.Get(ctx, resp.AgentID)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, sub.ID, a.Submissions[models.SubmissionIDKey(models.SubmissionIntake)])
	assert.True(t, a.Progress[models.ProgressIntakeSubmitted])
	assert.True(t, a.Progress[models.ProgressProducerAgreementSigned])
}

func TestIngest_ReusesExistingAgent(t *testing.T) {
	ing, _, agents, _ := newTestIngestor(t)
	ctx := context.Background()

	first, err := ing.Ingest(ctx, models.SubmissionIntake, Raw{"email": "jane@example.com"}, nil)
	require.NoError(t, err)

	second, err := ing.Ingest(ctx, models.SubmissionBanking, Raw{
		"email":         "JANE@example.com",
		"routingNumber": "123456789",
		"accountNumber": "9876543210",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, first.AgentID, second.AgentID)

	a, err := agents.Get(ctx, first.AgentID)
	require.NoError(t, err)
	assert.True(t, a.Progress[models.ProgressIntakeSubmitted])
	assert.True(t, a.Progress[models.ProgressBankingSubmitted])
	assert.Equal(t, second.Submission.ID, a.Submissions[models.SubmissionIDKey(models.SubmissionBanking)])
}

func TestIngest_LaterSubmissionOverwritesLink(t *testing.T) {
	ing, _, agents, _ := newTestIngestor(t)
	ctx := context.Background()

	first, err := ing.Ingest(ctx, models.SubmissionIntake, Raw{"email": "jane@example.com"}, nil)
	require.NoError(t, err)
	second, err := ing.Ingest(ctx, models.SubmissionIntake, Raw{"email": "jane@example.com", "phone": "555"}, nil)
	require.NoError(t, err)

	a, err := agents.Get(ctx, first.AgentID)
	require.NoError(t, err)
	assert.Equal(t, second.Submission.ID, a.Submissions[models.SubmissionIDKey(models.SubmissionIntake)])
}

func TestIngest_IdenticalResubmissionKeepsOriginalLink(t *testing.T) {
	ing, _, agents, submissions := newTestIngestor(t)
	ctx := context.Background()

	raw := Raw{"email": "jane@example.com", "firstName": "Jane"}

	first, err := ing.Ingest(ctx, models.SubmissionIntake, raw, nil)
	require.NoError(t, err)
	second, err := ing.Ingest(ctx, models.SubmissionIntake, raw, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.Submission.ID, second.Submission.ID)
	assert.Equal(t, first.Submission.Fingerprint, second.Submission.Fingerprint)

	// the duplicate record is persisted but the link stays on the original
	dup, err := submissions.Get(ctx, second.Submission.ID, models.SubmissionIntake)
	require.NoError(t, err)
	require.NotNil(t, dup)

	a, err := agents.Get(ctx, first.AgentID)
	require.NoError(t, err)
	assert.Equal(t, first.Submission.ID, a.Submissions[models.SubmissionIDKey(models.SubmissionIntake)])
}

func TestIngest_NoContactStoresOrphan(t *testing.T) {
	ing, _, _, submissions := newTestIngestor(t)
	ctx := context.Background()

	resp, err := ing.Ingest(ctx, models.SubmissionIntake, Raw{"businessName": "Acme Insurance"}, nil)
	require.NoError(t, err)
	assert.False(t, resp.Linked)
	assert.Empty(t, resp.AgentID)

	sub, err := submissions.Get(ctx, resp.Submission.ID, models.SubmissionIntake)
	require.NoError(t, err)
	require.NotNil(t, sub)
}

func TestIngest_NameOnlyGetsSyntheticAgent(t *testing.T) {
	ing, _, agents, _ := newTestIngestor(t)
	ctx := context.Background()

	resp, err := ing.Ingest(ctx, models.SubmissionIntake, Raw{"firstName": "Jane", "lastName": "Doe"}, nil)
	require.NoError(t, err)
	require.True(t, resp.Linked)

	a, err := agents.Get(ctx, resp.AgentID)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "Jane", a.Profile.FirstName)
	assert.Equal(t, resp.Submission.ID+"@submission.local", a.Profile.Email)
}

func TestIngest_ValidationFailureWritesNothing(t *testing.T) {
	ing, store, _, _ := newTestIngestor(t)
	ctx := context.Background()

	_, err := ing.Ingest(ctx, models.SubmissionW9, Raw{"email": "jane@example.com"}, nil)
	require.Error(t, err)
	assert.Equal(t, 400, httperror.GetStatusCode(err))

	keys, err := store.List(ctx, "submissions/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestIngest_RelocatesAttachments(t *testing.T) {
	ing, store, _, _ := newTestIngestor(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "tmp/upload-1", []byte("pdf bytes"), "application/pdf"))

	resp, err := ing.Ingest(ctx, models.SubmissionW9, Raw{
		"email":     "jane@example.com",
		"legalName": "Jane Doe",
		"tin":       "123-45-6789",
	}, []IncomingAttachment{{
		OriginalName: "w9-signed.pdf",
		MimeType:     "application/pdf",
		Size:         9,
		TmpKey:       "tmp/upload-1",
	}})
	require.NoError(t, err)
	require.Len(t, resp.Submission.Attachments, 1)

	att := resp.Submission.Attachments[0]
	assert.Equal(t, "w9-signed.pdf", att.OriginalName)

	data, err := store.Get(ctx, att.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf bytes"), data)

	exists, err := store.Exists(ctx, "tmp/upload-1")
	require.NoError(t, err)
	assert.False(t, exists)
}
