// Package mailer sends transactional onboarding mail. Delivery is best
// effort; a send failure is logged and never fails the operation that
// triggered it.
package mailer

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"gopkg.in/gomail.v2"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Config holds SMTP settings. An empty Host disables the mailer.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends onboarding notification mail over SMTP.
type Mailer struct {
	cfg    Config
	dialer *gomail.Dialer
	logger ectologger.Logger
}

// New creates a mailer. When cfg.Host is empty the mailer is disabled and
// every send is a no-op.
func New(cfg Config, logger ectologger.Logger) *Mailer {
	m := &Mailer{cfg: cfg, logger: logger}
	if cfg.Host != "" {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return m
}

// Enabled reports whether the mailer has an SMTP host configured.
func (m *Mailer) Enabled() bool {
	return m != nil && m.dialer != nil
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) {
	if !m.Enabled() || to == "" {
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.WithContext(ctx).WithError(err).WithField("to", to).Error("Failed to send mail")
	}
}

// SendWelcome mails a newly created agent.
func (m *Mailer) SendWelcome(ctx context.Context, agent *models.Agent) {
	ctx, span := tracing.StartSpan(ctx, "mailer.Mailer.SendWelcome")
	defer span.End()

	body := fmt.Sprintf("Hi %s,\n\nYour onboarding profile has been created. You can track your progress from the onboarding portal.\n", agent.Profile.FirstName)
	m.send(ctx, agent.Profile.Email, "Welcome to onboarding", body)
}

// SendSubmissionReceipt mails the agent a receipt for a processed submission.
func (m *Mailer) SendSubmissionReceipt(ctx context.Context, agent *models.Agent, sub *models.Submission) {
	ctx, span := tracing.StartSpan(ctx, "mailer.Mailer.SendSubmissionReceipt")
	defer span.End()

	body := fmt.Sprintf("Hi %s,\n\nWe received your %s form on %s. No further action is needed for this step.\n",
		agent.Profile.FirstName, sub.Type, sub.ReceivedAt.Format("Jan 2, 2006"))
	m.send(ctx, agent.Profile.Email, fmt.Sprintf("We received your %s form", sub.Type), body)
}
