package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_KeyOrderIndependent(t *testing.T) {
	a := Generate(map[string]any{"first_name": "Jane", "last_name": "Doe"})
	b := Generate(map[string]any{"last_name": "Doe", "first_name": "Jane"})
	assert.Equal(t, a, b)
}

func TestGenerate_NestedAndArrays(t *testing.T) {
	a := Generate(map[string]any{"licensing": map[string]any{"states": []any{"CA", "NY"}}})
	b := Generate(map[string]any{"licensing": map[string]any{"states": []any{"NY", "CA"}}})
	assert.NotEqual(t, a, b, "array order is significant")
}

func TestFromValue(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	a, err := FromValue(payload{Email: "jane@x.com", Name: "Jane"})
	require.NoError(t, err)
	b, err := FromValue(payload{Name: "Jane", Email: "jane@x.com"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.False(t, HasChanged(a, b))
}
