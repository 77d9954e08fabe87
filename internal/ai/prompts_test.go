package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRequestType(t *testing.T) {
	cases := map[string]RequestType{
		"summary":       TypeSummary,
		"ATS_SCORE":     TypeATSScore,
		"ats-score":     TypeATSScore,
		"cv-extraction": TypeCVExtraction,
		"extract_cv":    TypeCVExtraction,
		"cover_letter":  TypeCoverLetter,
		"":              TypeGeneral,
		"unknown":       TypeGeneral,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseRequestType(in), in)
	}
}

func TestEveryTypeHasBuilder(t *testing.T) {
	for _, rt := range []RequestType{
		TypeSummary, TypeBullets, TypeSkills, TypeKeywords, TypeATSScore,
		TypeCVExtraction, TypeJobTailoring, TypeCoverLetter, TypeOptimize, TypeGeneral,
	} {
		_, ok := promptBuilders[rt]
		assert.True(t, ok, rt)
		assert.Contains(t, BuildPrompt(rt, "hello there", PromptContext{}), "JSON", rt)
	}
}

func TestBuildPromptEmbedsContext(t *testing.T) {
	pc := PromptContext{
		ResumeData:     json.RawMessage(`{"summary":"Backend engineer"}`),
		JobDescription: "Go developer at Acme",
		TargetRole:     "Staff Engineer",
		Template:       "executive",
		Company:        "Acme",
	}

	p := BuildPrompt(TypeCoverLetter, "write it", pc)
	assert.Contains(t, p, "write it")
	assert.Contains(t, p, "Backend engineer")
	assert.Contains(t, p, "Go developer at Acme")
	assert.Contains(t, p, "Staff Engineer")
	assert.Contains(t, p, "Company: Acme")

	assert.Contains(t, BuildPrompt(TypeOptimize, "x", pc), "executive template")
}

func TestBuildPromptCVExtractionUsesCVText(t *testing.T) {
	p := BuildPrompt(TypeCVExtraction, "ignored when cv text set", PromptContext{CVText: "Ada Lovelace, Analyst"})
	assert.Contains(t, p, "Ada Lovelace, Analyst")
	assert.Contains(t, p, "personalInfo")
	assert.NotContains(t, p, "ignored when cv text set")
}

func TestBuildPromptBulletsListsInput(t *testing.T) {
	p := BuildPrompt(TypeBullets, "improve", PromptContext{Bullets: []string{"did stuff", "fixed bugs"}})
	assert.Contains(t, p, "- did stuff\n- fixed bugs\n")
}
