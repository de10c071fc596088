// Package reconcile implements the sweep that re-links stored submissions to
// agents. It repairs the aftermath of ingestion-time linking failures: every
// submission that can resolve to an agent but is not recorded on one gets
// linked, with the same side effects ingestion would have applied.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/internal/repositories/agent"
	"github.com/Ramsey-B/fern/internal/repositories/submission"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/ingest"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/resolver"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Sweeper runs reconciliation sweeps. At most one sweep runs at a time; an
// overlapping request is rejected with a conflict.
type Sweeper struct {
	submissions submission.SubmissionRepository
	agents      agent.AgentRepository
	resolver    *resolver.Resolver
	emitter     *events.Emitter
	logger      ectologger.Logger
	running     atomic.Bool
}

// New creates a new sweeper.
func New(
	submissions submission.SubmissionRepository,
	agents agent.AgentRepository,
	res *resolver.Resolver,
	emitter *events.Emitter,
	logger ectologger.Logger,
) *Sweeper {
	return &Sweeper{
		submissions: submissions,
		agents:      agents,
		resolver:    res,
		emitter:     emitter,
		logger:      logger,
	}
}

// Sweep walks every stored submission and links the unlinked ones. The sweep
// never aborts on a single bad record; malformed records and per-submission
// failures are collected into the report's Errors. Running a sweep twice in
// a row is safe: an already-linked submission is left alone.
func (s *Sweeper) Sweep(ctx context.Context) (*models.ReconcileReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, httperror.NewHTTPError(http.StatusConflict, "a reconciliation sweep is already running")
	}
	defer s.running.Store(false)

	ctx, span := tracing.StartSpan(ctx, "reconcile.Sweeper.Sweep")
	defer span.End()

	report := &models.ReconcileReport{
		Errors:    []string{},
		StartedAt: time.Now().UTC(),
	}
	log := s.logger.WithContext(ctx)

	subs, malformed, err := s.submissions.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, key := range malformed {
		report.Errors = append(report.Errors, fmt.Sprintf("malformed submission record: %s", key))
	}

	linked, err := s.linkedSubmissionIDs(ctx)
	if err != nil {
		return nil, err
	}

	for i := range subs {
		sub := &subs[i]
		report.Processed++

		if linked[sub.ID] {
			continue
		}

		didLink, created, err := s.linkOne(ctx, sub)
		switch {
		case errors.Is(err, resolver.ErrNoEmail):
			report.Skipped++
		case err != nil:
			log.WithError(err).WithField("submission_id", sub.ID).Warn("failed to link submission")
			report.Errors = append(report.Errors, fmt.Sprintf("submission %s: %v", sub.ID, err))
		case didLink:
			report.Linked++
			if created {
				report.AgentsCreated++
			}
		}
	}

	report.FinishedAt = time.Now().UTC()
	log.WithFields(map[string]any{
		"processed":      report.Processed,
		"linked":         report.Linked,
		"agents_created": report.AgentsCreated,
		"skipped":        report.Skipped,
		"errors":         len(report.Errors),
	}).Info("reconciliation sweep finished")

	s.emitter.EmitReconcileCompleted(ctx, report)
	return report, nil
}

// linkedSubmissionIDs collects every submission id already recorded on an
// agent, so the sweep can skip submissions that are linked.
func (s *Sweeper) linkedSubmissionIDs(ctx context.Context) (map[string]bool, error) {
	agents, err := s.agents.List(ctx)
	if err != nil {
		return nil, err
	}

	linked := make(map[string]bool)
	for i := range agents {
		for _, t := range models.AllSubmissionTypes {
			if id := agents[i].Submissions[models.SubmissionIDKey(t)]; id != "" {
				linked[id] = true
			}
		}
	}
	return linked, nil
}

// linkOne applies ingestion's linking rule to a single stored submission.
func (s *Sweeper) linkOne(ctx context.Context, sub *models.Submission) (didLink, created bool, err error) {
	contact := sub.Payload.Contact
	if contact.Email == "" && contact.HasName() {
		contact.Email = sub.ID + "@submission.local"
	}

	found, created, err := s.resolver.FindOrCreateAgent(ctx, contact)
	if err != nil {
		return false, false, err
	}

	// A later submission of the same type may already occupy the slot; the
	// newer link wins and the swept submission stays an unlinked record.
	key := models.SubmissionIDKey(sub.Type)
	if existing := found.Submissions[key]; existing != "" && existing != sub.ID {
		return false, created, nil
	}

	ingest.LinkSubmission(found, sub)
	if err := s.agents.Save(ctx, found); err != nil {
		return false, created, err
	}

	if created {
		s.emitter.EmitAgentCreated(ctx, found)
	}
	s.emitter.EmitSubmissionReceived(ctx, sub, found.ID)
	return true, created, nil
}
