package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

func TestForType_CoversAllTypes(t *testing.T) {
	for _, typ := range models.AllSubmissionTypes {
		assert.NotNil(t, ForType(typ), string(typ))
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	v := ForType(models.SubmissionBanking)

	t.Run("missing routing and account", func(t *testing.T) {
		result := v.Validate(map[string]any{"bankName": "First Bank"})
		assert.False(t, result.Valid)
		assert.Len(t, result.Errors, 2)
	})

	t.Run("complete payload", func(t *testing.T) {
		result := v.Validate(map[string]any{
			"bankName":      "First Bank",
			"routingNumber": "021000021",
			"accountNumber": "000123456789",
		})
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
	})
}

func TestValidate_IntakeContactOptional(t *testing.T) {
	// an intake with no contact info still validates; it becomes an orphan
	// submission recovered by the reconciliation sweep
	result := ForType(models.SubmissionIntake).Validate(map[string]any{})
	assert.True(t, result.Valid)
}

func TestValidate_Formats(t *testing.T) {
	v := ForType(models.SubmissionIntake)

	result := v.Validate(map[string]any{"email": "not-an-email"})
	require.False(t, result.Valid)
	assert.Equal(t, "email", result.Errors[0].Field)

	result = v.Validate(map[string]any{"email": "jane@example.com"})
	assert.True(t, result.Valid)
}

func TestValidate_MultiValueField(t *testing.T) {
	v := ForType(models.SubmissionIntake)

	assert.True(t, v.Validate(map[string]any{"licensedStates": "CA"}).Valid)
	assert.True(t, v.Validate(map[string]any{"licensedStates": []string{"CA", "NY"}}).Valid)
	assert.True(t, v.Validate(map[string]any{"licensedStates": []any{"CA", "NY"}}).Valid)
	assert.False(t, v.Validate(map[string]any{"licensedStates": 12}).Valid)
}
