// Package pdfgen renders a submission into a printable PDF document.
// Sensitive banking values are masked before they reach the page; the full
// values only ever live in the submission record.
package pdfgen

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/jung-kurt/gofpdf"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

var typeTitles = map[models.SubmissionType]string{
	models.SubmissionIntake:  "Producer Intake Form",
	models.SubmissionW9:      "Form W-9 Summary",
	models.SubmissionBanking: "Direct Deposit Authorization",
	models.SubmissionPacket:  "Onboarding Packet",
}

type row struct {
	label string
	value string
}

type section struct {
	title string
	rows  []row
}

// Renderer renders submissions to PDF.
type Renderer struct{}

// NewRenderer creates a new renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the PDF document for a submission. Empty payload fields are
// omitted rather than rendered blank.
func (r *Renderer) Render(ctx context.Context, a *models.Agent, sub *models.Submission) ([]byte, error) {
	_, span := tracing.StartSpan(ctx, "pdfgen.Renderer.Render")
	defer span.End()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, typeTitles[sub.Type], "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, fmt.Sprintf("Agent: %s %s", a.Profile.FirstName, a.Profile.LastName), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	for _, sec := range buildSections(sub) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, sec.title, "B", 1, "L", false, 0, "")
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "", 10)
		for _, rw := range sec.rows {
			pdf.CellFormat(60, 6, rw.label, "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, rw.value, "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	pdf.SetY(-25)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated from submission %s received %s",
		sub.ID, sub.ReceivedAt.UTC().Format("2006-01-02 15:04:05 UTC")), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}
	return buf.Bytes(), nil
}

// buildSections maps the populated payload sections to rendered sections.
// Pure so masking and omission rules can be tested without producing a PDF.
func buildSections(sub *models.Submission) []section {
	var out []section
	p := sub.Payload

	contact := section{title: "Contact"}
	contact.add("Name", strings.TrimSpace(p.Contact.FirstName+" "+p.Contact.LastName))
	contact.add("Email", p.Contact.Email)
	contact.add("Phone", p.Contact.Phone)
	out = appendSection(out, contact)

	if b := p.Business; b != nil {
		s := section{title: "Business"}
		s.add("Business Name", b.BusinessName)
		s.add("EIN", b.EIN)
		s.add("Address", joinAddress(b.Address, b.City, b.State, b.Zip))
		out = appendSection(out, s)
	}

	if l := p.Licensing; l != nil {
		s := section{title: "Licensing"}
		s.add("NPN", l.NPN)
		s.add("Resident State", l.ResidentState)
		s.add("Licensed States", strings.Join(l.LicensedStates, ", "))
		out = appendSection(out, s)
	}

	if bg := p.Background; bg != nil {
		s := section{title: "Background Disclosures"}
		for _, q := range []string{"felony", "bankruptcy", "licenseRevoked", "eoClaim"} {
			if answer, ok := bg.Answers[q]; ok {
				s.add(q, yesNo(answer))
			}
		}
		s.add("Explanation", bg.Explanation)
		out = appendSection(out, s)
	}

	if tx := p.Tax; tx != nil {
		s := section{title: "Tax Information"}
		s.add("Legal Name", tx.LegalName)
		s.add("Business Name", tx.BusinessName)
		s.add("Classification", tx.Classification)
		s.add("TIN", tx.TIN)
		s.add("Exempt Payee Code", tx.ExemptPayee)
		s.add("Address", joinAddress(tx.Address, tx.City, tx.State, tx.Zip))
		out = appendSection(out, s)
	}

	if bk := p.Banking; bk != nil {
		s := section{title: "Banking"}
		s.add("Bank Name", bk.BankName)
		s.add("Routing Number", MaskRouting(bk.RoutingNumber))
		s.add("Account Number", MaskAccount(bk.AccountNumber))
		s.add("Account Type", bk.AccountType)
		s.add("Direct Deposit Authorized", yesNo(bk.AuthorizeDebit))
		out = appendSection(out, s)
	}

	if len(p.Acknowledgments) > 0 || p.SignatureText != "" {
		s := section{title: "Acknowledgments"}
		for _, key := range []string{"certified", "authorizeDirectDeposit", "acceptProducerAgreement"} {
			if v, ok := p.Acknowledgments[key]; ok {
				s.add(key, yesNo(v))
			}
		}
		s.add("Signed", p.SignatureText)
		out = appendSection(out, s)
	}

	return out
}

func (s *section) add(label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	s.rows = append(s.rows, row{label: label, value: value})
}

func appendSection(out []section, s section) []section {
	if len(s.rows) == 0 {
		return out
	}
	return append(out, s)
}

func joinAddress(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, ", ")
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// MaskAccount hides all but the last four digits of an account number. A
// value too short to keep anything visible is masked entirely.
func MaskAccount(v string) string {
	return mask(v, 4)
}

// MaskRouting hides all but the last three digits of a routing number.
func MaskRouting(v string) string {
	return mask(v, 3)
}

func mask(v string, visible int) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if len(v) <= visible {
		return strings.Repeat("*", len(v))
	}
	return strings.Repeat("*", len(v)-visible) + v[len(v)-visible:]
}
