// Package ai turns a free-form assistant request into a provider call and
// normalizes whatever the provider returns into one stable Envelope.
package ai

import "time"

// Skills groups skill suggestions by category.
type Skills struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
	Other     []string `json:"other"`
}

// Suggestions is the structured part of every assistant reply.
type Suggestions struct {
	Summary         string   `json:"summary"`
	Bullets         []string `json:"bullets"`
	Skills          Skills   `json:"skills"`
	Keywords        []string `json:"keywords"`
	ATSScore        int      `json:"ats_score"`
	Recommendations []string `json:"recommendations"`
}

// Metadata describes how an envelope was produced.
type Metadata struct {
	Provider     string      `json:"provider,omitempty"`
	Type         RequestType `json:"type,omitempty"`
	ErrorType    ErrorKind   `json:"errorType,omitempty"`
	FallbackUsed bool        `json:"fallbackUsed"`
	GeneratedAt  time.Time   `json:"generatedAt"`
}

// Envelope is the fixed response shape for every assistant call, successful or not.
type Envelope struct {
	Suggestions       Suggestions    `json:"suggestions"`
	Content           string         `json:"content,omitempty"`
	ExtractedData     map[string]any `json:"extractedData,omitempty"`
	Confidence        float64        `json:"confidence"`
	TemplateOptimized bool           `json:"template_optimized"`
	Error             string         `json:"error,omitempty"`
	Metadata          *Metadata      `json:"metadata,omitempty"`
}

// IsError reports whether the envelope carries a failure.
func (e Envelope) IsError() bool {
	return e.Error != ""
}

// fillDefaults replaces nil slices so they marshal as [] rather than null.
func (e *Envelope) fillDefaults() {
	s := &e.Suggestions
	s.Bullets = nonNil(s.Bullets)
	s.Keywords = nonNil(s.Keywords)
	s.Recommendations = nonNil(s.Recommendations)
	s.Skills.Technical = nonNil(s.Skills.Technical)
	s.Skills.Soft = nonNil(s.Skills.Soft)
	s.Skills.Other = nonNil(s.Skills.Other)
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
