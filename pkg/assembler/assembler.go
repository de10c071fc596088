// Package assembler turns an agent's linked submissions into stored PDF
// documents. Assembly is re-runnable: each run writes a fresh timestamped
// document and repoints the agent's record at it.
package assembler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/internal/blob"
	"github.com/Ramsey-B/fern/internal/repositories/agent"
	"github.com/Ramsey-B/fern/internal/repositories/submission"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/pdfgen"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const timestampFormat = "20060102T150405Z"

// Assembler renders and stores submission documents for agents.
type Assembler struct {
	agents      agent.AgentRepository
	submissions submission.SubmissionRepository
	store       blob.Store
	renderer    *pdfgen.Renderer
	emitter     *events.Emitter
	logger      ectologger.Logger
}

// New creates a new assembler.
func New(
	agents agent.AgentRepository,
	submissions submission.SubmissionRepository,
	store blob.Store,
	renderer *pdfgen.Renderer,
	emitter *events.Emitter,
	logger ectologger.Logger,
) *Assembler {
	return &Assembler{
		agents:      agents,
		submissions: submissions,
		store:       store,
		renderer:    renderer,
		emitter:     emitter,
		logger:      logger,
	}
}

// DocumentKey returns the blob key a rendered document is stored under.
func DocumentKey(agentID string, t models.SubmissionType, at time.Time) string {
	return fmt.Sprintf("agents/%s/%s-%s.pdf", agentID, t, at.UTC().Format(timestampFormat))
}

// AssembleAndStore renders one submission to PDF, stores it and records the
// document key and progress on the agent.
func (a *Assembler) AssembleAndStore(ctx context.Context, ag *models.Agent, sub *models.Submission) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "assembler.Assembler.AssembleAndStore")
	defer span.End()

	data, err := a.renderer.Render(ctx, ag, sub)
	if err != nil {
		return "", err
	}

	key := DocumentKey(ag.ID, sub.Type, time.Now())
	if err := a.store.Put(ctx, key, data, "application/pdf"); err != nil {
		a.logger.WithContext(ctx).WithError(err).WithField("key", key).Error("failed to store rendered document")
		return "", httperror.NewHTTPError(http.StatusInternalServerError, "failed to store rendered document")
	}

	ag.Submissions[models.SubmissionPDFKey(sub.Type)] = key
	ag.Progress[models.ProgressKey(sub.Type)] = true
	if err := a.agents.Save(ctx, ag); err != nil {
		return "", err
	}

	a.emitter.EmitDocumentGenerated(ctx, ag.ID, sub.Type, key)
	a.logger.WithContext(ctx).WithFields(map[string]any{
		"agent_id": ag.ID,
		"type":     string(sub.Type),
		"key":      key,
	}).Info("assembled document")

	return key, nil
}

// AssembleAgent renders a document for every submission linked on the agent.
// One failed render never blocks the rest; failures land in the report.
func (a *Assembler) AssembleAgent(ctx context.Context, agentID string) (*models.AssembleReport, error) {
	ctx, span := tracing.StartSpan(ctx, "assembler.Assembler.AssembleAgent")
	defer span.End()

	ag, err := a.agents.Get(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if ag == nil {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "agent %s not found", agentID)
	}

	report := &models.AssembleReport{
		AgentID:  agentID,
		Rendered: []string{},
		Errors:   []string{},
	}

	for _, t := range models.AllSubmissionTypes {
		subID := ag.Submissions[models.SubmissionIDKey(t)]
		if subID == "" {
			continue
		}

		sub, err := a.submissions.Get(ctx, subID, t)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", t, err))
			continue
		}
		if sub == nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: linked submission %s not found", t, subID))
			continue
		}

		key, err := a.AssembleAndStore(ctx, ag, sub)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", t, err))
			continue
		}
		report.Rendered = append(report.Rendered, key)
	}

	return report, nil
}
