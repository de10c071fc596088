// Package ingest turns raw form posts into persisted submission records and
// links them onto agents. Persisting the submission is the transactional
// core; linking, events and mail are best-effort side effects that never
// fail an already-persisted submission.
package ingest

import (
	"context"
	"errors"
	"net/http"
	"path"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/fern/internal/repositories/agent"
	"github.com/Ramsey-B/fern/internal/repositories/submission"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/fingerprint"
	"github.com/Ramsey-B/fern/pkg/mailer"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/resolver"
	"github.com/Ramsey-B/fern/pkg/schema"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// IncomingAttachment describes a file already staged in the blob store under
// a temporary key, waiting to be relocated next to its submission record.
type IncomingAttachment struct {
	OriginalName string
	MimeType     string
	Size         int64
	TmpKey       string
}

// Ingestor processes raw submissions end to end.
type Ingestor struct {
	submissions submission.SubmissionRepository
	agents      agent.AgentRepository
	resolver    *resolver.Resolver
	relocate    AttachmentRelocator
	emitter     *events.Emitter
	mailer      *mailer.Mailer
	logger      ectologger.Logger
}

// AttachmentRelocator copies a staged attachment from its temporary key to
// its final key. The blob store backs this directly.
type AttachmentRelocator interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

// New creates a new ingestor.
func New(
	submissions submission.SubmissionRepository,
	agents agent.AgentRepository,
	res *resolver.Resolver,
	relocate AttachmentRelocator,
	emitter *events.Emitter,
	mail *mailer.Mailer,
	logger ectologger.Logger,
) *Ingestor {
	return &Ingestor{
		submissions: submissions,
		agents:      agents,
		resolver:    res,
		relocate:    relocate,
		emitter:     emitter,
		mailer:      mail,
		logger:      logger,
	}
}

// Ingest validates, normalizes and persists one raw submission, then applies
// the linking side effects. Validation failures return a 400 before anything
// is written. Once the record is written the submission always succeeds;
// linking failures degrade to an unlinked response.
func (i *Ingestor) Ingest(ctx context.Context, t models.SubmissionType, raw Raw, attachments []IncomingAttachment) (*models.SubmissionResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "ingest.Ingestor.Ingest")
	defer span.End()

	log := i.logger.WithContext(ctx).WithField("submission_type", string(t))

	if v := schema.ForType(t); v != nil {
		result := v.Validate(raw)
		if !result.Valid {
			httpErr := httperror.ToHTTPError(httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid %s payload", t))
			httpErr.Meta = map[string]any{"errors": result.Errors}
			return nil, httpErr
		}
	}

	sub := &models.Submission{
		ID:         uuid.New().String(),
		Type:       t,
		ReceivedAt: time.Now().UTC(),
		Payload:    extractPayload(t, raw),
	}

	fp, err := fingerprint.FromValue(sub.Payload)
	if err != nil {
		log.WithError(err).Warn("failed to fingerprint payload")
	} else {
		sub.Fingerprint = fp
	}

	sub.Attachments, err = i.relocateAttachments(ctx, sub.ID, attachments)
	if err != nil {
		return nil, err
	}

	if err := i.submissions.Save(ctx, sub); err != nil {
		return nil, err
	}
	log = log.WithField("submission_id", sub.ID)
	log.Info("submission persisted")

	// Record is durable from here; linking problems must not surface as errors.
	resp := &models.SubmissionResponse{Submission: *sub}
	found, created, err := i.link(ctx, sub)
	if err != nil {
		log.WithError(err).Warn("submission persisted but not linked to an agent")
		return resp, nil
	}
	if found == nil {
		log.Info("submission has no resolvable contact; stored as orphan")
		return resp, nil
	}

	resp.AgentID = found.ID
	resp.Linked = true

	i.emitter.EmitSubmissionReceived(ctx, sub, found.ID)
	if created {
		i.emitter.EmitAgentCreated(ctx, found)
		i.mailer.SendWelcome(ctx, found)
	}
	i.mailer.SendSubmissionReceipt(ctx, found, sub)

	return resp, nil
}

// link resolves the submission's contact to an agent and records the link
// plus the progress side effects. A nil agent with a nil error means the
// submission had nothing to resolve on and stays an orphan.
func (i *Ingestor) link(ctx context.Context, sub *models.Submission) (*models.Agent, bool, error) {
	ctx, span := tracing.StartSpan(ctx, "ingest.Ingestor.link")
	defer span.End()

	contact := sub.Payload.Contact
	if contact.Email == "" && contact.HasName() {
		// Name but no email: synthesize a stable per-submission address so the
		// agent still gets created and a later reconcile can merge by hand.
		contact.Email = sub.ID + "@submission.local"
	}

	found, created, err := i.resolver.FindOrCreateAgent(ctx, contact)
	if errors.Is(err, resolver.ErrNoEmail) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if i.isIdenticalResubmission(ctx, found, sub) {
		i.logger.WithContext(ctx).WithFields(map[string]any{
			"agent_id":        found.ID,
			"submission_type": string(sub.Type),
		}).Info("identical resubmission; keeping existing link")
		return found, created, nil
	}

	LinkSubmission(found, sub)

	if err := i.agents.Save(ctx, found); err != nil {
		return nil, false, err
	}
	return found, created, nil
}

// isIdenticalResubmission reports whether the agent's current link for this
// type points at a submission with the same payload fingerprint. Such a
// resubmission is stored as a record but the original link is kept.
func (i *Ingestor) isIdenticalResubmission(ctx context.Context, a *models.Agent, sub *models.Submission) bool {
	if sub.Fingerprint == "" {
		return false
	}
	existingID := a.Submissions[models.SubmissionIDKey(sub.Type)]
	if existingID == "" {
		return false
	}

	prev, err := i.submissions.Get(ctx, existingID, sub.Type)
	if err != nil || prev == nil {
		return false
	}
	return !fingerprint.HasChanged(prev.Fingerprint, sub.Fingerprint)
}

// LinkSubmission records the submission on the agent: the type link slot and
// the progress flags. A later submission of the same type overwrites the
// slot; the superseded submission record itself stays on disk.
func LinkSubmission(a *models.Agent, sub *models.Submission) {
	a.Submissions[models.SubmissionIDKey(sub.Type)] = sub.ID
	a.Progress[models.ProgressKey(sub.Type)] = true

	if sub.Payload.SignatureText != "" && (sub.Type == models.SubmissionIntake || sub.Type == models.SubmissionPacket) {
		a.Progress[models.ProgressProducerAgreementSigned] = true
	}
}

// relocateAttachments copies each staged attachment from its temporary key
// to its final key under the submission and removes the staged copy.
func (i *Ingestor) relocateAttachments(ctx context.Context, subID string, attachments []IncomingAttachment) ([]models.Attachment, error) {
	if len(attachments) == 0 {
		return nil, nil
	}

	out := make([]models.Attachment, 0, len(attachments))
	for _, att := range attachments {
		data, err := i.relocate.Get(ctx, att.TmpKey)
		if err != nil {
			return nil, httperror.WrapError(http.StatusInternalServerError, err)
		}

		finalKey := i.submissions.AttachmentKey(subID, path.Base(att.OriginalName))
		if err := i.relocate.Put(ctx, finalKey, data, att.MimeType); err != nil {
			return nil, httperror.WrapError(http.StatusInternalServerError, err)
		}

		if err := i.relocate.Delete(ctx, att.TmpKey); err != nil {
			i.logger.WithContext(ctx).WithError(err).WithField("key", att.TmpKey).Warn("failed to remove staged attachment")
		}

		out = append(out, models.Attachment{
			OriginalName: att.OriginalName,
			MimeType:     att.MimeType,
			Size:         att.Size,
			StorageKey:   finalKey,
		})
	}
	return out, nil
}
