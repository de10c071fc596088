package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Progress stage keys set as side effects of ingestion and document assembly.
const (
	ProgressIntakeSubmitted         = "intakeSubmitted"
	ProgressW9Submitted             = "w9Submitted"
	ProgressBankingSubmitted        = "bankingSubmitted"
	ProgressPacketSubmitted         = "packetSubmitted"
	ProgressProducerAgreementSigned = "producerAgreementSigned"
)

// Upload purposes recognised on the agent record.
const (
	UploadCertificationProof = "certificationProof"
	UploadW9File             = "w9"
)

// SignatureKindDrawn and SignatureKindTyped are the two accepted signature kinds.
const (
	SignatureKindDrawn = "drawn"
	SignatureKindTyped = "typed"
)

// Profile holds the agent's contact fields. Mutable, last write wins.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// Signature records a captured signature against a named document slot.
// For drawn signatures Value is a blob storage key; for typed signatures
// it is the literal text the agent entered.
type Signature struct {
	Kind     string    `json:"kind"`
	Value    string    `json:"value"`
	SignedAt time.Time `json:"signed_at"`
}

// Agent is the onboarding subject's persistent profile and progress record.
// Created on the first submission with resolvable contact info or via an
// explicit create call. Never deleted by the system.
type Agent struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Profile   Profile   `json:"profile"`

	// Progress maps stage name -> completed flag.
	Progress map[string]bool `json:"progress"`

	// Submissions maps "<type>Id" -> submission id and, once rendered,
	// "<type>PdfPath" -> generated document storage key. At most one active
	// submission per type; a later submission overwrites the link.
	Submissions map[string]string `json:"submissions"`

	// Signatures maps document slot name -> captured signature.
	Signatures map[string]Signature `json:"signatures"`

	// Uploads maps upload purpose -> blob storage key.
	Uploads map[string]string `json:"uploads"`
}

// NewAgent creates an agent with a fresh identifier, trimmed profile fields
// and empty progress/submissions/signatures/uploads maps.
func NewAgent(profile Profile) *Agent {
	return &Agent{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Profile: Profile{
			FirstName: strings.TrimSpace(profile.FirstName),
			LastName:  strings.TrimSpace(profile.LastName),
			Email:     strings.TrimSpace(profile.Email),
			Phone:     strings.TrimSpace(profile.Phone),
		},
		Progress:    make(map[string]bool),
		Submissions: make(map[string]string),
		Signatures:  make(map[string]Signature),
		Uploads:     make(map[string]string),
	}
}

// EnsureMaps replaces nil collection fields with empty maps. Records written
// or edited outside the service may omit them; callers write into these maps
// directly.
func (a *Agent) EnsureMaps() {
	if a.Progress == nil {
		a.Progress = make(map[string]bool)
	}
	if a.Submissions == nil {
		a.Submissions = make(map[string]string)
	}
	if a.Signatures == nil {
		a.Signatures = make(map[string]Signature)
	}
	if a.Uploads == nil {
		a.Uploads = make(map[string]string)
	}
}

// SubmissionIDKey returns the submissions-map key holding the submission id
// for the given type, e.g. "intakeId".
func SubmissionIDKey(t SubmissionType) string {
	return string(t) + "Id"
}

// SubmissionPDFKey returns the submissions-map key holding the generated
// document storage key for the given type, e.g. "intakePdfPath".
func SubmissionPDFKey(t SubmissionType) string {
	return string(t) + "PdfPath"
}

// ProgressKey returns the progress stage flag set when a submission of the
// given type lands, e.g. "intakeSubmitted".
func ProgressKey(t SubmissionType) string {
	return string(t) + "Submitted"
}

// CreateAgentRequest is the payload for the explicit agent-creation call.
type CreateAgentRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
}

// PatchProgressRequest updates one or more progress flags on an agent.
type PatchProgressRequest struct {
	Progress map[string]bool `json:"progress" validate:"required,min=1"`
}

// SignatureRequest records a signature against a named document slot.
// For drawn signatures Value carries a base64-encoded PNG; for typed
// signatures it carries the literal text.
type SignatureRequest struct {
	Kind  string `json:"kind" validate:"required,oneof=drawn typed"`
	Value string `json:"value" validate:"required"`
}

// AgentResponse wraps a single agent.
type AgentResponse struct {
	Agent   Agent `json:"agent"`
	Created bool  `json:"created"`
}

// DocumentInfo describes one generated or uploaded document on an agent.
type DocumentInfo struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Key      string `json:"key"`
}

// DocumentListResponse lists an agent's documents.
type DocumentListResponse struct {
	AgentID   string         `json:"agent_id"`
	Documents []DocumentInfo `json:"documents"`
}
