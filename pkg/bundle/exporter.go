// Package bundle exports an agent's onboarding packet as a zip archive. Each
// document category contributes at most one file, picked by a fixed priority,
// so the packet stays stable across repeated exports.
package bundle

import (
	"archive/zip"
	"context"
	"io"
	"net/http"
	"path"
	"sort"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/internal/blob"
	"github.com/Ramsey-B/fern/internal/repositories/submission"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Document categories in the exported packet.
const (
	CategorySignature     = "signature"
	CategoryCertification = "certification"
	CategoryIntake        = "intake"
	CategoryW9            = "w9"
)

// Exporter builds zip packets from an agent's stored documents.
type Exporter struct {
	store  blob.Store
	logger ectologger.Logger
}

// New creates a new exporter.
func New(store blob.Store, logger ectologger.Logger) *Exporter {
	return &Exporter{
		store:  store,
		logger: logger,
	}
}

// GatherDocuments selects the documents that belong in the agent's packet.
// Per category: the drawn signature image, the certification proof upload,
// the intake submission record, and the W-9 (the uploaded file when present,
// otherwise the submission record). Missing categories are simply absent; an
// agent with nothing yields an empty list.
func (e *Exporter) GatherDocuments(ctx context.Context, ag *models.Agent) []models.DocumentInfo {
	_, span := tracing.StartSpan(ctx, "bundle.Exporter.GatherDocuments")
	defer span.End()

	var docs []models.DocumentInfo

	if key := drawnSignatureKey(ag); key != "" {
		docs = append(docs, models.DocumentInfo{
			Name:     "signature" + path.Ext(key),
			Category: CategorySignature,
			Key:      key,
		})
	}

	if key := ag.Uploads[models.UploadCertificationProof]; key != "" {
		docs = append(docs, models.DocumentInfo{
			Name:     path.Base(key),
			Category: CategoryCertification,
			Key:      key,
		})
	}

	if id := ag.Submissions[models.SubmissionIDKey(models.SubmissionIntake)]; id != "" {
		docs = append(docs, models.DocumentInfo{
			Name:     "intake.json",
			Category: CategoryIntake,
			Key:      submission.RecordKey(id, models.SubmissionIntake),
		})
	}

	if key := ag.Uploads[models.UploadW9File]; key != "" {
		docs = append(docs, models.DocumentInfo{
			Name:     path.Base(key),
			Category: CategoryW9,
			Key:      key,
		})
	} else if id := ag.Submissions[models.SubmissionIDKey(models.SubmissionW9)]; id != "" {
		docs = append(docs, models.DocumentInfo{
			Name:     "w9.json",
			Category: CategoryW9,
			Key:      submission.RecordKey(id, models.SubmissionW9),
		})
	}

	return docs
}

// drawnSignatureKey returns the storage key of the agent's drawn signature,
// preferring slots in name order so the pick is deterministic.
func drawnSignatureKey(ag *models.Agent) string {
	slots := make([]string, 0, len(ag.Signatures))
	for slot := range ag.Signatures {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	for _, slot := range slots {
		sig := ag.Signatures[slot]
		if sig.Kind == models.SignatureKindDrawn && sig.Value != "" {
			return sig.Value
		}
	}
	return ""
}

// StreamZip writes the agent's packet as a zip archive to w. A document whose
// blob has gone missing is skipped with a warning; an agent with no documents
// produces a valid empty archive.
func (e *Exporter) StreamZip(ctx context.Context, ag *models.Agent, w io.Writer) error {
	ctx, span := tracing.StartSpan(ctx, "bundle.Exporter.StreamZip")
	defer span.End()

	zw := zip.NewWriter(w)
	log := e.logger.WithContext(ctx).WithField("agent_id", ag.ID)

	for _, doc := range e.GatherDocuments(ctx, ag) {
		data, err := e.store.Get(ctx, doc.Key)
		if err != nil {
			if blob.IsNotExist(err) {
				log.WithField("key", doc.Key).Warn("packet document missing from store; skipping")
				continue
			}
			zw.Close()
			return httperror.WrapError(http.StatusInternalServerError, err)
		}

		entry, err := zw.Create(doc.Name)
		if err != nil {
			zw.Close()
			return httperror.WrapError(http.StatusInternalServerError, err)
		}
		if _, err := entry.Write(data); err != nil {
			zw.Close()
			return httperror.WrapError(http.StatusInternalServerError, err)
		}
	}

	if err := zw.Close(); err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	return nil
}
