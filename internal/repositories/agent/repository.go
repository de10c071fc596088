// Package agent persists agent records as JSON documents in the blob store
// under the agents/ namespace, alongside a secondary email index used by
// identity resolution.
package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/internal/blob"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const (
	rootPrefix    = "agents/"
	recordName    = "agent.json"
	emailIndexKey = "agents/.index/emails.json"
)

// AgentRepository defines the interface for agent record operations
type AgentRepository interface {
	Get(ctx context.Context, id string) (*models.Agent, error)
	Save(ctx context.Context, agent *models.Agent) error
	List(ctx context.Context) ([]models.Agent, error)
	LookupEmail(ctx context.Context, normalizedEmail string) (string, error)
	IndexEmail(ctx context.Context, normalizedEmail, agentID string) error
}

// Repository implements AgentRepository
type Repository struct {
	store  blob.Store
	logger ectologger.Logger
}

// NewRepository creates a new agent repository
func NewRepository(store blob.Store, logger ectologger.Logger) *Repository {
	return &Repository{
		store:  store,
		logger: logger,
	}
}

// RecordKey returns the blob key of an agent record.
func RecordKey(id string) string {
	return rootPrefix + id + "/" + recordName
}

// Get returns the agent with the given id, or nil when it does not exist.
// A malformed record is logged and treated as not found.
func (r *Repository) Get(ctx context.Context, id string) (*models.Agent, error) {
	ctx, span := tracing.StartSpan(ctx, "AgentRepository.Get")
	defer span.End()

	data, err := r.store.Get(ctx, RecordKey(id))
	if err != nil {
		if blob.IsNotExist(err) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to read agent record")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to read agent record")
	}

	var agent models.Agent
	if err := json.Unmarshal(data, &agent); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("agent_id", id).Error("malformed agent record; treating as not found")
		return nil, nil
	}
	agent.EnsureMaps()

	return &agent, nil
}

// Save writes the full agent record, replacing any existing document, and
// refreshes the email index entry. There is no locking; concurrent writers
// to the same agent race and the later writer wins.
func (r *Repository) Save(ctx context.Context, agent *models.Agent) error {
	ctx, span := tracing.StartSpan(ctx, "AgentRepository.Save")
	defer span.End()

	data, err := json.MarshalIndent(agent, "", "  ")
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}

	if err := r.store.Put(ctx, RecordKey(agent.ID), data, "application/json"); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("agent_id", agent.ID).Error("failed to write agent record")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to write agent record")
	}

	if email := normalizers.NormalizeEmail(agent.Profile.Email); email != "" {
		if err := r.IndexEmail(ctx, email, agent.ID); err != nil {
			// The index is a lookup accelerator; the record itself is the
			// source of truth and the resolver falls back to a full scan.
			r.logger.WithContext(ctx).WithError(err).WithField("agent_id", agent.ID).Warn("failed to update email index")
		}
	}

	return nil
}

// List returns every parseable agent record. Corrupt entries are logged and
// skipped so reconciliation sweeps never abort on one bad record.
func (r *Repository) List(ctx context.Context) ([]models.Agent, error) {
	ctx, span := tracing.StartSpan(ctx, "AgentRepository.List")
	defer span.End()

	keys, err := r.store.List(ctx, rootPrefix)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list agent records")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list agent records")
	}

	agents := make([]models.Agent, 0, len(keys))
	for _, key := range keys {
		if !strings.HasSuffix(key, "/"+recordName) {
			continue
		}
		data, err := r.store.Get(ctx, key)
		if err != nil {
			if blob.IsNotExist(err) {
				continue
			}
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to read agent record")
		}

		var agent models.Agent
		if err := json.Unmarshal(data, &agent); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithField("key", key).Warn("skipping malformed agent record")
			continue
		}
		agent.EnsureMaps()
		agents = append(agents, agent)
	}

	return agents, nil
}

// LookupEmail returns the agent id indexed under the normalized email, or ""
// when the index has no entry.
func (r *Repository) LookupEmail(ctx context.Context, normalizedEmail string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "AgentRepository.LookupEmail")
	defer span.End()

	index, err := r.readIndex(ctx)
	if err != nil {
		return "", err
	}
	return index[normalizedEmail], nil
}

// IndexEmail records normalizedEmail -> agentID in the email index. The first
// writer for an email wins; an existing entry for a different agent is kept
// so repeated resolution stays deterministic.
func (r *Repository) IndexEmail(ctx context.Context, normalizedEmail, agentID string) error {
	ctx, span := tracing.StartSpan(ctx, "AgentRepository.IndexEmail")
	defer span.End()

	index, err := r.readIndex(ctx)
	if err != nil {
		return err
	}

	if existing, ok := index[normalizedEmail]; ok && existing == agentID {
		return nil
	} else if ok && existing != agentID {
		r.logger.WithContext(ctx).WithFields(map[string]any{
			"email":    normalizedEmail,
			"existing": existing,
			"agent_id": agentID,
		}).Warn("email already indexed to another agent; keeping first entry")
		return nil
	}

	index[normalizedEmail] = agentID

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return err
	}
	return r.store.Put(ctx, emailIndexKey, data, "application/json")
}

func (r *Repository) readIndex(ctx context.Context) (map[string]string, error) {
	data, err := r.store.Get(ctx, emailIndexKey)
	if err != nil {
		if blob.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	var index map[string]string
	if err := json.Unmarshal(data, &index); err != nil {
		r.logger.WithContext(ctx).WithError(err).Warn("malformed email index; treating as empty")
		return map[string]string{}, nil
	}
	return index, nil
}
