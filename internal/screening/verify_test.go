package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-screener/internal/types"
)

func quote(s string) *string { return &s }

func TestVerifyRequirements_VerifiedCitation(t *testing.T) {
	resume := "Built APIs with Python for 5 years.\nLed a team of four engineers."
	matches := []types.RequirementMatch{
		{Requirement: "Python experience required", IsMet: true, CitationQuote: quote("Built APIs with Python for 5 years.")},
	}

	v := VerifyRequirements(matches, resume)

	assert.Equal(t, 1, v.Verified)
	assert.Equal(t, 1, v.Total)
	assert.Zero(t, v.Hallucinations)
}

func TestVerifyRequirements_NormalizesWhitespaceAndCase(t *testing.T) {
	resume := "Built   APIs\n  with PYTHON\tfor 5 years."
	matches := []types.RequirementMatch{
		{Requirement: "Python", IsMet: true, CitationQuote: quote("built apis with python for 5 years.")},
	}

	v := VerifyRequirements(matches, resume)

	assert.Equal(t, 1, v.Verified)
	assert.Zero(t, v.Hallucinations)
}

func TestVerifyRequirements_FabricatedCitationIsHallucination(t *testing.T) {
	matches := []types.RequirementMatch{
		{Requirement: "Kubernetes", IsMet: true, CitationQuote: quote("Deployed 40 Kubernetes clusters")},
	}

	v := VerifyRequirements(matches, "Ran a bakery for ten years.")

	assert.Zero(t, v.Verified)
	assert.Equal(t, 1, v.Hallucinations)
}

func TestVerifyRequirements_MetWithoutCitationIsHallucination(t *testing.T) {
	matches := []types.RequirementMatch{
		{Requirement: "AWS", IsMet: true, CitationQuote: nil},
		{Requirement: "GCP", IsMet: true, CitationQuote: quote("")},
	}

	v := VerifyRequirements(matches, "Extensive AWS and GCP work.")

	assert.Zero(t, v.Verified)
	assert.Equal(t, 2, v.Hallucinations)
}

func TestVerifyRequirements_UnmetClaimsCountForNeither(t *testing.T) {
	matches := []types.RequirementMatch{
		{Requirement: "Rust", IsMet: false},
		{Requirement: "Go", IsMet: true, CitationQuote: quote("wrote Go services")},
	}

	v := VerifyRequirements(matches, "Previously wrote Go services at scale.")

	assert.Equal(t, 1, v.Verified)
	assert.Equal(t, 2, v.Total)
	assert.Zero(t, v.Hallucinations)
	assert.LessOrEqual(t, v.Verified+v.Hallucinations, v.Total)
}

func TestVerifyRequirements_EmptyMatches(t *testing.T) {
	v := VerifyRequirements(nil, "anything")

	assert.Zero(t, v.Total)
	assert.Zero(t, v.Verified)
	assert.Zero(t, v.Hallucinations)
}
