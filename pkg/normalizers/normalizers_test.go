package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeEmail(" Jane@Example.com "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "5551234567", NormalizePhone("(555) 123-4567"))
	assert.Equal(t, "", NormalizePhone("n/a"))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "jane doe", NormalizeName("  Jane   Doe Jr. "))
	assert.Equal(t, "robert smith", NormalizeName("Robert Smith III"))
}

func TestNormalizeTIN(t *testing.T) {
	assert.Equal(t, "123456789", NormalizeTIN("12-3456789"))
	assert.Equal(t, "", NormalizeTIN("12345"))
}

func TestApplyChain(t *testing.T) {
	assert.Equal(t, "jane@example.com", ApplyChain(" Jane@Example.com ", "trim", "lowercase"))
	// unknown normalizer names pass the value through
	assert.Equal(t, "x", ApplyChain("x", "nope"))
}
