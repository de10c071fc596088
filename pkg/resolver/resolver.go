// Package resolver implements identity resolution: mapping a submission's
// contact fields onto exactly one agent record, creating it when no match
// exists. Agents match on normalized email only.
package resolver

import (
	"context"
	"errors"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/internal/repositories/agent"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// ErrNoEmail is returned when the contact has no email to resolve on. The
// caller decides whether to supply a synthetic fallback address.
var ErrNoEmail = errors.New("contact has no email address")

// Resolver finds or creates agents by contact info.
type Resolver struct {
	agents agent.AgentRepository
	logger ectologger.Logger
}

// New creates a new resolver.
func New(agents agent.AgentRepository, logger ectologger.Logger) *Resolver {
	return &Resolver{
		agents: agents,
		logger: logger,
	}
}

// FindOrCreateAgent resolves the contact to an existing agent by normalized
// email, or creates and persists a new one. The created flag reports whether
// a new agent was synthesized.
//
// Lookup goes through the email index first; on an index miss it falls back
// to scanning the full agent listing and repairs the index when that scan
// finds a match. Two agents sharing an email should not happen, but can under
// concurrent creation; the first match in listing order wins deterministically.
func (r *Resolver) FindOrCreateAgent(ctx context.Context, contact models.ContactInfo) (*models.Agent, bool, error) {
	ctx, span := tracing.StartSpan(ctx, "resolver.FindOrCreateAgent")
	defer span.End()

	email := normalizers.NormalizeEmail(contact.Email)
	if email == "" {
		return nil, false, ErrNoEmail
	}

	log := r.logger.WithContext(ctx).WithField("email", email)

	// Index fast path
	if id, err := r.agents.LookupEmail(ctx, email); err == nil && id != "" {
		found, err := r.agents.Get(ctx, id)
		if err != nil {
			return nil, false, err
		}
		if found != nil {
			return found, false, nil
		}
		log.WithField("agent_id", id).Warn("email index points at a missing agent; falling back to scan")
	} else if err != nil {
		log.WithError(err).Warn("email index lookup failed; falling back to scan")
	}

	// Full listing scan, first match in listing order wins
	all, err := r.agents.List(ctx)
	if err != nil {
		return nil, false, err
	}
	for i := range all {
		if normalizers.NormalizeEmail(all[i].Profile.Email) == email {
			found := &all[i]
			if err := r.agents.IndexEmail(ctx, email, found.ID); err != nil {
				log.WithError(err).Warn("failed to repair email index")
			}
			return found, false, nil
		}
	}

	// No match anywhere; synthesize and persist before returning
	created := models.NewAgent(models.Profile{
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		Email:     contact.Email,
		Phone:     contact.Phone,
	})
	if err := r.agents.Save(ctx, created); err != nil {
		return nil, false, err
	}

	log.WithField("agent_id", created.ID).Info("created agent")
	return created, true, nil
}
