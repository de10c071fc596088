package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/internal/blob"
	"github.com/Ramsey-B/fern/pkg/models"
)

func newTestExporter(t *testing.T) (*Exporter, blob.Store) {
	t.Helper()

	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	store, err := blob.NewLocalStore(t.TempDir(), logger)
	require.NoError(t, err)
	return New(store, logger), store
}

func zipEntries(t *testing.T, data []byte) map[string][]byte {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		var buf bytes.Buffer
		_, err = buf.ReadFrom(rc)
		require.NoError(t, err)
		rc.Close()
		entries[f.Name] = buf.Bytes()
	}
	return entries
}

func TestGatherDocuments_PrefersW9Upload(t *testing.T) {
	exp, _ := newTestExporter(t)

	ag := models.NewAgent(models.Profile{Email: "jane@example.com"})
	ag.Uploads[models.UploadW9File] = "agents/" + ag.ID + "/uploads/w9.pdf"
	ag.Submissions[models.SubmissionIDKey(models.SubmissionW9)] = "sub-1"

	docs := exp.GatherDocuments(context.Background(), ag)
	require.Len(t, docs, 1)
	assert.Equal(t, CategoryW9, docs[0].Category)
	assert.Equal(t, "w9.pdf", docs[0].Name)
}

func TestGatherDocuments_FallsBackToW9Record(t *testing.T) {
	exp, _ := newTestExporter(t)

	ag := models.NewAgent(models.Profile{Email: "jane@example.com"})
	ag.Submissions[models.SubmissionIDKey(models.SubmissionW9)] = "sub-1"

	docs := exp.GatherDocuments(context.Background(), ag)
	require.Len(t, docs, 1)
	assert.Equal(t, "w9.json", docs[0].Name)
	assert.Equal(t, "submissions/sub-1/w9.json", docs[0].Key)
}

func TestGatherDocuments_OnlyDrawnSignatures(t *testing.T) {
	exp, _ := newTestExporter(t)

	ag := models.NewAgent(models.Profile{Email: "jane@example.com"})
	ag.Signatures["w9"] = models.Signature{Kind: models.SignatureKindTyped, Value: "Jane Doe", SignedAt: time.Now()}

	assert.Empty(t, exp.GatherDocuments(context.Background(), ag))

	ag.Signatures["agreement"] = models.Signature{
		Kind:     models.SignatureKindDrawn,
		Value:    "agents/" + ag.ID + "/signatures/agreement.png",
		SignedAt: time.Now(),
	}

	docs := exp.GatherDocuments(context.Background(), ag)
	require.Len(t, docs, 1)
	assert.Equal(t, CategorySignature, docs[0].Category)
	assert.Equal(t, "signature.png", docs[0].Name)
}

func TestStreamZip_BundlesStoredDocuments(t *testing.T) {
	exp, store := newTestExporter(t)
	ctx := context.Background()

	ag := models.NewAgent(models.Profile{Email: "jane@example.com"})
	sigKey := "agents/" + ag.ID + "/signatures/agreement.png"
	proofKey := "agents/" + ag.ID + "/uploads/proof.pdf"
	ag.Signatures["agreement"] = models.Signature{Kind: models.SignatureKindDrawn, Value: sigKey, SignedAt: time.Now()}
	ag.Uploads[models.UploadCertificationProof] = proofKey

	require.NoError(t, store.Put(ctx, sigKey, []byte("png bytes"), "image/png"))
	require.NoError(t, store.Put(ctx, proofKey, []byte("pdf bytes"), "application/pdf"))

	var buf bytes.Buffer
	require.NoError(t, exp.StreamZip(ctx, ag, &buf))

	entries := zipEntries(t, buf.Bytes())
	require.Len(t, entries, 2)
	assert.Equal(t, []byte("png bytes"), entries["signature.png"])
	assert.Equal(t, []byte("pdf bytes"), entries["proof.pdf"])
}

func TestStreamZip_SkipsMissingBlobs(t *testing.T) {
	exp, _ := newTestExporter(t)

	ag := models.NewAgent(models.Profile{Email: "jane@example.com"})
	ag.Uploads[models.UploadCertificationProof] = "agents/" + ag.ID + "/uploads/gone.pdf"

	var buf bytes.Buffer
	require.NoError(t, exp.StreamZip(context.Background(), ag, &buf))
	assert.Empty(t, zipEntries(t, buf.Bytes()))
}

func TestStreamZip_EmptyAgentProducesValidArchive(t *testing.T) {
	exp, _ := newTestExporter(t)

	var buf bytes.Buffer
	require.NoError(t, exp.StreamZip(context.Background(), models.NewAgent(models.Profile{}), &buf))
	assert.Empty(t, zipEntries(t, buf.Bytes()))
}
