package ingest

import (
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
)

// backgroundQuestions are the intake disclosure questions carried into the
// canonical payload as normalized yes/no answers.
var backgroundQuestions = []string{"felony", "bankruptcy", "licenseRevoked", "eoClaim"}

// extractPayload maps raw field names onto the canonical payload shape for
// the given submission type. The mapping is fixed per type; unknown raw
// fields are ignored.
func extractPayload(t models.SubmissionType, raw Raw) models.SubmissionPayload {
	switch t {
	case models.SubmissionIntake:
		return models.SubmissionPayload{
			Contact:       extractContact(raw),
			Business:      extractBusiness(raw),
			Licensing:     extractLicensing(raw),
			Background:    extractBackground(raw),
			SignatureText: raw.String("signatureText"),
		}
	case models.SubmissionW9:
		return models.SubmissionPayload{
			Contact: extractContact(raw),
			Tax:     extractTax(raw),
			Acknowledgments: map[string]bool{
				"certified": raw.Bool("certified"),
			},
			SignatureText: raw.String("signatureText"),
		}
	case models.SubmissionBanking:
		return models.SubmissionPayload{
			Contact: extractContact(raw),
			Banking: extractBanking(raw),
			Acknowledgments: map[string]bool{
				"authorizeDirectDeposit": raw.Bool("authorizeDirectDeposit"),
			},
			SignatureText: raw.String("signatureText"),
		}
	case models.SubmissionPacket:
		return models.SubmissionPayload{
			Contact:    extractContact(raw),
			Business:   extractBusiness(raw),
			Licensing:  extractLicensing(raw),
			Background: extractBackground(raw),
			Tax:        extractTax(raw),
			Banking:    extractBanking(raw),
			Acknowledgments: map[string]bool{
				"certified":               raw.Bool("certified"),
				"authorizeDirectDeposit":  raw.Bool("authorizeDirectDeposit"),
				"acceptProducerAgreement": raw.Bool("acceptProducerAgreement"),
			},
			SignatureText: raw.String("signatureText"),
		}
	}
	return models.SubmissionPayload{}
}

func extractContact(raw Raw) models.ContactInfo {
	return models.ContactInfo{
		FirstName: raw.String("firstName"),
		LastName:  raw.String("lastName"),
		Email:     raw.String("email"),
		Phone:     raw.String("phone"),
	}
}

func extractBusiness(raw Raw) *models.BusinessInfo {
	return &models.BusinessInfo{
		BusinessName: raw.String("businessName"),
		EIN:          raw.String("ein"),
		Address:      raw.String("address"),
		City:         raw.String("city"),
		State:        raw.String("state"),
		Zip:          raw.String("zip"),
	}
}

func extractLicensing(raw Raw) *models.LicensingInfo {
	return &models.LicensingInfo{
		NPN:            raw.String("npn"),
		ResidentState:  raw.String("residentState"),
		LicensedStates: raw.StringList("licensedStates"),
	}
}

func extractBackground(raw Raw) *models.BackgroundInfo {
	answers := make(map[string]bool, len(backgroundQuestions))
	for _, q := range backgroundQuestions {
		answers[q] = raw.Bool(q)
	}
	return &models.BackgroundInfo{
		Answers:     answers,
		Explanation: raw.String("backgroundExplanation"),
	}
}

func extractTax(raw Raw) *models.TaxInfo {
	tin := raw.String("tin")
	if n := normalizers.NormalizeTIN(tin); n != "" {
		tin = n
	}
	return &models.TaxInfo{
		LegalName:      raw.String("legalName"),
		BusinessName:   raw.String("businessName"),
		Classification: raw.String("taxClassification"),
		TIN:            tin,
		ExemptPayee:    raw.String("exemptPayeeCode"),
		Address:        raw.String("address"),
		City:           raw.String("city"),
		State:          raw.String("state"),
		Zip:            raw.String("zip"),
	}
}

func extractBanking(raw Raw) *models.BankingInfo {
	routing := raw.String("routingNumber")
	if n := normalizers.NormalizeRoutingNumber(routing); n != "" {
		routing = n
	}
	return &models.BankingInfo{
		BankName:       raw.String("bankName"),
		RoutingNumber:  routing,
		AccountNumber:  normalizers.DigitsOnly(raw.String("accountNumber")),
		AccountType:    raw.String("accountType"),
		AuthorizeDebit: raw.Bool("authorizeDirectDeposit"),
	}
}
