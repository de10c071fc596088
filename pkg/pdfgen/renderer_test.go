package pdfgen

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

func TestMaskAccount(t *testing.T) {
	assert.Equal(t, "******3210", MaskAccount("9876543210"))
	assert.Equal(t, "****", MaskAccount("1234"))
	assert.Equal(t, "***", MaskAccount("123"))
	assert.Equal(t, "", MaskAccount("  "))
}

func TestMaskRouting(t *testing.T) {
	assert.Equal(t, "******789", MaskRouting("123456789"))
	assert.Equal(t, "**", MaskRouting("12"))
}

func TestBuildSections_MasksBankingAndOmitsEmpty(t *testing.T) {
	sub := &models.Submission{
		Type: models.SubmissionBanking,
		Payload: models.SubmissionPayload{
			Contact: models.ContactInfo{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"},
			Banking: &models.BankingInfo{
				RoutingNumber:  "123456789",
				AccountNumber:  "9876543210",
				AccountType:    "checking",
				AuthorizeDebit: true,
			},
		},
	}

	sections := buildSections(sub)
	require.Len(t, sections, 2)

	banking := sections[1]
	assert.Equal(t, "Banking", banking.title)

	values := map[string]string{}
	for _, r := range banking.rows {
		values[r.label] = r.value
	}
	assert.Equal(t, "******789", values["Routing Number"])
	assert.Equal(t, "******3210", values["Account Number"])
	assert.NotContains(t, values, "Bank Name")
}

func TestRender_ProducesPDF(t *testing.T) {
	r := NewRenderer()

	agent := models.NewAgent(models.Profile{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"})
	sub := &models.Submission{
		ID:         "sub-1",
		Type:       models.SubmissionIntake,
		ReceivedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Payload: models.SubmissionPayload{
			Contact:   models.ContactInfo{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"},
			Licensing: &models.LicensingInfo{NPN: "1234567", LicensedStates: []string{"CA", "NY"}},
		},
	}

	data, err := r.Render(context.Background(), agent, sub)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}
