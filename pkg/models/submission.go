package models

import (
	"fmt"
	"time"
)

// SubmissionType identifies one of the four supported form payload shapes.
type SubmissionType string

const (
	SubmissionIntake  SubmissionType = "intake"
	SubmissionW9      SubmissionType = "w9"
	SubmissionBanking SubmissionType = "banking"
	SubmissionPacket  SubmissionType = "packet"
)

// AllSubmissionTypes lists every supported type in a stable order.
var AllSubmissionTypes = []SubmissionType{
	SubmissionIntake,
	SubmissionW9,
	SubmissionBanking,
	SubmissionPacket,
}

// ParseSubmissionType validates a raw type string.
func ParseSubmissionType(s string) (SubmissionType, error) {
	t := SubmissionType(s)
	switch t {
	case SubmissionIntake, SubmissionW9, SubmissionBanking, SubmissionPacket:
		return t, nil
	}
	return "", fmt.Errorf("unknown submission type %q", s)
}

// ContactInfo carries the fields the identity resolver matches on.
type ContactInfo struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// HasName reports whether at least one of first/last name is present.
func (c ContactInfo) HasName() bool {
	return c.FirstName != "" || c.LastName != ""
}

// BusinessInfo carries agency/business fields from the intake form.
type BusinessInfo struct {
	BusinessName string `json:"business_name,omitempty"`
	EIN          string `json:"ein,omitempty"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	Zip          string `json:"zip,omitempty"`
}

// LicensingInfo carries insurance-licensing fields from the intake form.
type LicensingInfo struct {
	NPN            string   `json:"npn,omitempty"`
	ResidentState  string   `json:"resident_state,omitempty"`
	LicensedStates []string `json:"licensed_states"`
}

// BackgroundInfo carries background-disclosure answers. Answers maps the
// question key to the normalized yes/no answer.
type BackgroundInfo struct {
	Answers     map[string]bool `json:"answers,omitempty"`
	Explanation string          `json:"explanation,omitempty"`
}

// TaxInfo carries W-9 fields.
type TaxInfo struct {
	LegalName      string `json:"legal_name,omitempty"`
	BusinessName   string `json:"business_name,omitempty"`
	Classification string `json:"classification,omitempty"`
	TIN            string `json:"tin,omitempty"`
	ExemptPayee    string `json:"exempt_payee,omitempty"`
	Address        string `json:"address,omitempty"`
	City           string `json:"city,omitempty"`
	State          string `json:"state,omitempty"`
	Zip            string `json:"zip,omitempty"`
}

// BankingInfo carries direct-deposit fields.
type BankingInfo struct {
	BankName       string `json:"bank_name,omitempty"`
	RoutingNumber  string `json:"routing_number,omitempty"`
	AccountNumber  string `json:"account_number,omitempty"`
	AccountType    string `json:"account_type,omitempty"`
	AuthorizeDebit bool   `json:"authorize_debit"`
}

// SubmissionPayload is the canonical normalized payload. Which sections are
// populated depends on the submission type; a packet may populate all of them.
type SubmissionPayload struct {
	Contact         ContactInfo     `json:"contact"`
	Business        *BusinessInfo   `json:"business,omitempty"`
	Licensing       *LicensingInfo  `json:"licensing,omitempty"`
	Background      *BackgroundInfo `json:"background,omitempty"`
	Tax             *TaxInfo        `json:"tax,omitempty"`
	Banking         *BankingInfo    `json:"banking,omitempty"`
	Acknowledgments map[string]bool `json:"acknowledgments,omitempty"`
	SignatureText   string          `json:"signature_text,omitempty"`
}

// Attachment references one uploaded file stored alongside a submission.
type Attachment struct {
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
	StorageKey   string `json:"storage_key"`
}

// Submission is one immutable form payload. It is created by ingestion and
// only its attachments are backfilled during that same ingestion; nothing
// mutates it afterwards.
type Submission struct {
	ID          string            `json:"id"`
	Type        SubmissionType    `json:"type"`
	ReceivedAt  time.Time         `json:"received_at"`
	Fingerprint string            `json:"fingerprint,omitempty"`
	Payload     SubmissionPayload `json:"payload"`
	Attachments []Attachment      `json:"attachments,omitempty"`
}

// SubmissionResponse wraps a single submission.
type SubmissionResponse struct {
	Submission Submission `json:"submission"`
	AgentID    string     `json:"agent_id,omitempty"`
	Linked     bool       `json:"linked"`
}

// ReconcileReport summarises one reconciliation sweep.
type ReconcileReport struct {
	Processed     int       `json:"processed"`
	Linked        int       `json:"linked"`
	AgentsCreated int       `json:"agents_created"`
	Skipped       int       `json:"skipped"`
	Errors        []string  `json:"errors"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// AssembleReport summarises a document-assembly recovery run for one agent.
type AssembleReport struct {
	AgentID  string   `json:"agent_id"`
	Rendered []string `json:"rendered"`
	Errors   []string `json:"errors"`
}
