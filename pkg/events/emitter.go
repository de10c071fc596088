// Package events handles event emission for onboarding lifecycle changes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Emitter publishes onboarding lifecycle events. A nil producer disables
// emission entirely, so callers never need to branch on whether Kafka is
// configured.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

func (e *Emitter) emit(ctx context.Context, event *kafka.OnboardingEvent) {
	if e == nil || e.producer == nil {
		return
	}
	if err := e.producer.PublishOnboardingEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithField("event_type", event.EventType).Error("Failed to emit event")
	}
}

// EmitAgentCreated emits an agent.created event
func (e *Emitter) EmitAgentCreated(ctx context.Context, agent *models.Agent) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitAgentCreated")
	defer span.End()

	detail, _ := json.Marshal(map[string]string{"email": agent.Profile.Email})
	e.emit(ctx, &kafka.OnboardingEvent{
		EventType: "agent.created",
		AgentID:   agent.ID,
		Detail:    detail,
	})
}

// EmitSubmissionReceived emits a submission.received event
func (e *Emitter) EmitSubmissionReceived(ctx context.Context, sub *models.Submission, agentID string) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitSubmissionReceived")
	defer span.End()

	detail, _ := json.Marshal(map[string]string{"type": string(sub.Type)})
	e.emit(ctx, &kafka.OnboardingEvent{
		EventType:    "submission.received",
		AgentID:      agentID,
		SubmissionID: sub.ID,
		Detail:       detail,
	})
}

// EmitDocumentGenerated emits a document.generated event
func (e *Emitter) EmitDocumentGenerated(ctx context.Context, agentID string, t models.SubmissionType, key string) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitDocumentGenerated")
	defer span.End()

	detail, _ := json.Marshal(map[string]string{"type": string(t), "key": key})
	e.emit(ctx, &kafka.OnboardingEvent{
		EventType: "document.generated",
		AgentID:   agentID,
		Detail:    detail,
	})
}

// EmitReconcileCompleted emits a reconcile.completed event
func (e *Emitter) EmitReconcileCompleted(ctx context.Context, report *models.ReconcileReport) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitReconcileCompleted")
	defer span.End()

	detail, _ := json.Marshal(report)
	e.emit(ctx, &kafka.OnboardingEvent{
		EventType: "reconcile.completed",
		Detail:    detail,
	})
}
