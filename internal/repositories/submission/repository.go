// Package submission persists submission records as JSON documents in the
// blob store under the submissions/ namespace. Submissions are immutable
// once written; there is no update or delete path.
package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/internal/blob"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const rootPrefix = "submissions/"

// SubmissionRepository defines the interface for submission record operations
type SubmissionRepository interface {
	Save(ctx context.Context, sub *models.Submission) error
	Get(ctx context.Context, id string, t models.SubmissionType) (*models.Submission, error)
	List(ctx context.Context) ([]models.Submission, []string, error)
	AttachmentKey(id, filename string) string
}

// Repository implements SubmissionRepository
type Repository struct {
	store  blob.Store
	logger ectologger.Logger
}

// NewRepository creates a new submission repository
func NewRepository(store blob.Store, logger ectologger.Logger) *Repository {
	return &Repository{
		store:  store,
		logger: logger,
	}
}

// RecordKey returns the blob key of a submission record.
func RecordKey(id string, t models.SubmissionType) string {
	return fmt.Sprintf("%s%s/%s.json", rootPrefix, id, t)
}

// AttachmentKey returns the blob key for an attachment stored alongside a
// submission record.
func (r *Repository) AttachmentKey(id, filename string) string {
	return fmt.Sprintf("%s%s/attachments/%s", rootPrefix, id, filename)
}

// Save writes the submission record. Called exactly once per submission,
// at ingestion time.
func (r *Repository) Save(ctx context.Context, sub *models.Submission) error {
	ctx, span := tracing.StartSpan(ctx, "SubmissionRepository.Save")
	defer span.End()

	data, err := json.MarshalIndent(sub, "", "  ")
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}

	if err := r.store.Put(ctx, RecordKey(sub.ID, sub.Type), data, "application/json"); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"submission_id":   sub.ID,
			"submission_type": sub.Type,
		}).Error("failed to write submission record")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to write submission record")
	}

	return nil
}

// Get returns the submission with the given id and type, or nil when it does
// not exist. A malformed record is logged and treated as not found.
func (r *Repository) Get(ctx context.Context, id string, t models.SubmissionType) (*models.Submission, error) {
	ctx, span := tracing.StartSpan(ctx, "SubmissionRepository.Get")
	defer span.End()

	data, err := r.store.Get(ctx, RecordKey(id, t))
	if err != nil {
		if blob.IsNotExist(err) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to read submission record")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to read submission record")
	}

	var sub models.Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("submission_id", id).Error("malformed submission record; treating as not found")
		return nil, nil
	}

	return &sub, nil
}

// List returns every parseable submission record plus the keys of any
// malformed ones, so a reconciliation sweep can report them without aborting.
func (r *Repository) List(ctx context.Context) ([]models.Submission, []string, error) {
	ctx, span := tracing.StartSpan(ctx, "SubmissionRepository.List")
	defer span.End()

	keys, err := r.store.List(ctx, rootPrefix)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list submission records")
		return nil, nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list submission records")
	}

	var subs []models.Submission
	var malformed []string
	for _, key := range keys {
		if !isRecordKey(key) {
			continue
		}
		data, err := r.store.Get(ctx, key)
		if err != nil {
			if blob.IsNotExist(err) {
				continue
			}
			return nil, nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to read submission record")
		}

		var sub models.Submission
		if err := json.Unmarshal(data, &sub); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("skipping malformed submission record")
			malformed = append(malformed, key)
			continue
		}
		subs = append(subs, sub)
	}

	return subs, malformed, nil
}

// isRecordKey reports whether key names a submission record rather than an
// attachment, i.e. submissions/<id>/<type>.json.
func isRecordKey(key string) bool {
	rest := strings.TrimPrefix(key, rootPrefix)
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || !strings.HasSuffix(parts[1], ".json") {
		return false
	}
	name := strings.TrimSuffix(parts[1], ".json")
	_, err := models.ParseSubmissionType(name)
	return err == nil
}
