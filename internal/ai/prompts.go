package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RequestType selects the prompt template for an assistant call.
type RequestType string

const (
	TypeSummary      RequestType = "summary"
	TypeBullets      RequestType = "bullets"
	TypeSkills       RequestType = "skills"
	TypeKeywords     RequestType = "keywords"
	TypeATSScore     RequestType = "ats_score"
	TypeCVExtraction RequestType = "cv_extraction"
	TypeJobTailoring RequestType = "job_tailoring"
	TypeCoverLetter  RequestType = "cover_letter"
	TypeOptimize     RequestType = "optimize"
	TypeGeneral      RequestType = "general"
)

// ParseRequestType maps client strings onto a RequestType. Unknown values fall back to TypeGeneral.
func ParseRequestType(raw string) RequestType {
	t := RequestType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	if _, ok := promptBuilders[t]; ok {
		return t
	}
	switch t {
	case "ats", "ats_analysis":
		return TypeATSScore
	case "extract", "cv_extract", "extract_cv":
		return TypeCVExtraction
	case "tailoring", "job_match":
		return TypeJobTailoring
	}
	return TypeGeneral
}

// PromptContext carries the optional fields a client may send alongside the prompt.
type PromptContext struct {
	ResumeData     json.RawMessage `json:"resumeData,omitempty"`
	JobDescription string          `json:"jobDescription,omitempty"`
	TargetRole     string          `json:"targetRole,omitempty"`
	Template       string          `json:"template,omitempty"`
	Company        string          `json:"company,omitempty"`
	Bullets        []string        `json:"bullets,omitempty"`
	CVText         string          `json:"cvText,omitempty"`
}

type promptBuilder func(prompt string, pc PromptContext) string

var promptBuilders = map[RequestType]promptBuilder{
	TypeSummary:      buildSummaryPrompt,
	TypeBullets:      buildBulletsPrompt,
	TypeSkills:       buildSkillsPrompt,
	TypeKeywords:     buildKeywordsPrompt,
	TypeATSScore:     buildATSPrompt,
	TypeCVExtraction: buildCVExtractionPrompt,
	TypeJobTailoring: buildTailoringPrompt,
	TypeCoverLetter:  buildCoverLetterPrompt,
	TypeOptimize:     buildOptimizePrompt,
	TypeGeneral:      buildGeneralPrompt,
}

// BuildPrompt renders the provider prompt for t.
func BuildPrompt(t RequestType, prompt string, pc PromptContext) string {
	build, ok := promptBuilders[t]
	if !ok {
		build = buildGeneralPrompt
	}
	return build(prompt, pc)
}

const envelopeSchema = `{
  "suggestions": {
    "summary": "string",
    "bullets": ["string"],
    "skills": {"technical": ["string"], "soft": ["string"], "other": ["string"]},
    "keywords": ["string"],
    "ats_score": 0,
    "recommendations": ["string"]
  },
  "content": "string",
  "confidence": 0.0,
  "template_optimized": false
}`

const resumeDataSchema = `{
  "personalInfo": {"fullName": "", "email": "", "phone": "", "location": "", "linkedin": "", "website": "", "title": ""},
  "summary": "",
  "experience": [{"company": "", "position": "", "location": "", "startDate": "", "endDate": "", "current": false, "description": "", "achievements": [""]}],
  "education": [{"institution": "", "degree": "", "field": "", "startDate": "", "endDate": "", "gpa": ""}],
  "skills": [{"name": "", "level": "", "category": ""}],
  "projects": [{"name": "", "description": "", "technologies": [""], "link": ""}],
  "certifications": [{"name": "", "issuer": "", "date": "", "link": ""}],
  "languages": [{"name": "", "proficiency": ""}],
  "references": [{"name": "", "position": "", "company": "", "email": "", "phone": ""}],
  "keywords": [""]
}`

func jsonInstruction(schema string) string {
	return "Respond ONLY with valid JSON (no markdown, no commentary) matching this structure:\n" + schema
}

func writeContext(b *strings.Builder, pc PromptContext) {
	if pc.TargetRole != "" {
		fmt.Fprintf(b, "Target role: %s\n", pc.TargetRole)
	}
	if pc.Template != "" {
		fmt.Fprintf(b, "Resume template: %s\n", pc.Template)
	}
	if len(pc.ResumeData) > 0 && string(pc.ResumeData) != "null" {
		fmt.Fprintf(b, "Current resume data:\n%s\n", pc.ResumeData)
	}
	if pc.JobDescription != "" {
		fmt.Fprintf(b, "Job description:\n%s\n", pc.JobDescription)
	}
}

func buildSummaryPrompt(prompt string, pc PromptContext) string {
	var b strings.Builder
	b.WriteString("You are an expert resume writer. Write a concise, compelling professional summary of 3-4 sentences.\n")
	b.WriteString("Lead with years of experience and core expertise, quantify impact where the data allows, and avoid first-person pronouns.\n\n")
	writeContext(&b, pc)
	fmt.Fprintf(&b, "User request: %s\n\n", prompt)
	b.WriteString("Put the summary in suggestions.summary and also in content.\n")
	b.WriteString(jsonInstruction(envelopeSchema))
	return b.String()
}

func buildBulletsPrompt(prompt string, pc PromptContext) string {
	var b strings.Builder
	b.WriteString("You are an expert resume writer. Rewrite the experience bullet points below so each starts with a strong action verb, ")
	b.WriteString("states a measurable result and stays under 25 words.\n\n")
	writeContext(&b, pc)
	if len(pc.Bullets) > 0 {
		b.WriteString("Bullets to improve:\n")
		for _, bullet := range pc.Bullets {
			fmt.Fprintf(&b, "- %s\n", bullet)
		}
	}
	fmt.Fprintf(&b, "User request: %s\n\n", prompt)
	b.WriteString("Return the improved bullets in suggestions.bullets, in the same order, and a one-line note in suggestions.summary.\n")
	b.WriteString(jsonInstruction(envelopeSchema))
	return b.String()
}

func buildSkillsPrompt(prompt string, pc PromptContext) string {
	var b strings.Builder
	b.WriteString("You are a career coach. Suggest relevant skills for this candidate, grouped as technical, soft and other.\n")
	b.WriteString("Only suggest skills supported by the resume or clearly expected for the target role.\n\n")
	writeContext(&b, pc)
	fmt.Fprintf(&b, "User request: %s\n\n", prompt)
	b.WriteString("Fill suggestions.skills and give a short rationale in suggestions.summary.\n")
	b.WriteString(jsonInstruction(envelopeSchema))
	return b.String()
}

func buildKeywordsPrompt(prompt string, pc PromptContext) string {
	var b strings.Builder
	b.WriteString("You are an applicant tracking system expert. Extract the 10-20 most important keywords and phrases ")
	b.WriteString("a recruiter would search for in the job description: hard skills, tools, certifications and domain terms.\n\n")
	writeContext(&b, pc)
	fmt.Fprintf(&b, "User request: %s\n\n", prompt)
	b.WriteString("Return them in suggestions.keywords ordered by importance and summarize the role focus in suggestions.summary.\n")
	b.WriteString(jsonInstruction(envelopeSchema))
	return b.String()
}

func buildATSPrompt(prompt string, pc PromptContext) string {
	var b strings.Builder
	b.WriteString("You are an applicant tracking system. Score how well the resume matches the job description from 0 to 100, ")
	b.WriteString("considering keyword coverage, relevant experience, formatting and section completeness.\n\n")
	writeContext(&b, pc)
	fmt.Fprintf(&b, "User request: %s\n\n", prompt)
	b.WriteString("Put the integer score in suggestions.ats_score, missing keywords in suggestions.keywords, ")
	b.WriteString("concrete fixes in suggestions.recommendations and a one-paragraph verdict in suggestions.summary.\n")
	b.WriteString(jsonInstruction(envelopeSchema))
	return b.String()
}

func buildCVExtractionPrompt(prompt string, pc PromptContext) string {
	var b strings.Builder
	b.WriteString("You are a resume parser. Extract every piece of structured information from the CV text below. ")
	b.WriteString("Do not invent data; leave fields empty when the CV does not contain them. Dates use YYYY-MM.\n\n")
	cv := pc.CVText
	if cv == "" {
		cv = prompt
	}
	fmt.Fprintf(&b, "CV text:\n%s\n\n", cv)
	b.WriteString("Respond with the envelope below, placing the parsed resume in extractedData and a one-line description in suggestions.summary.\n")
	b.WriteString(jsonInstruction(`{"suggestions": {"summary": "string"}, "extractedData": ` + resumeDataSchema + `, "confidence": 0.0}`))
	return b.String()
}

func buildTailoringPrompt(prompt string, pc PromptContext) string {
	var b strings.Builder
	b.WriteString("You are a career coach. Compare the resume with the job description and explain how to tailor it. ")
	b.WriteString("Identify matching strengths, missing keywords and sections to rewrite.\n\n")
	writeContext(&b, pc)
	fmt.Fprintf(&b, "User request: %s\n\n", prompt)
	b.WriteString("Put the match score in suggestions.ats_score, missing keywords in suggestions.keywords, rewritten bullets in ")
	b.WriteString("suggestions.bullets, specific changes in suggestions.recommendations and an overview in suggestions.summary.\n")
	b.WriteString(jsonInstruction(envelopeSchema))
	return b.String()
}

func buildCoverLetterPrompt(prompt string, pc PromptContext) string {
	var b strings.Builder
	b.WriteString("You are an expert career writer. Write a tailored cover letter of 3-4 paragraphs in a professional, warm tone. ")
	b.WriteString("Reference concrete achievements from the resume and connect them to the job requirements.\n\n")
	if pc.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", pc.Company)
	}
	writeContext(&b, pc)
	fmt.Fprintf(&b, "User request: %s\n\n", prompt)
	b.WriteString("Put the full letter in content and a two-sentence synopsis in suggestions.summary.\n")
	b.WriteString(jsonInstruction(envelopeSchema))
	return b.String()
}

func buildOptimizePrompt(prompt string, pc PromptContext) string {
	var b strings.Builder
	b.WriteString("You are an expert resume reviewer. Optimize the resume for clarity, impact and ATS compatibility")
	if pc.Template != "" {
		fmt.Fprintf(&b, " while keeping it suited to the %s template layout", pc.Template)
	}
	b.WriteString(".\n\n")
	writeContext(&b, pc)
	fmt.Fprintf(&b, "User request: %s\n\n", prompt)
	b.WriteString("Give an improved summary, improved bullets, recommended skills, keywords and recommendations. ")
	b.WriteString("Set template_optimized to true when your advice accounts for the template.\n")
	b.WriteString(jsonInstruction(envelopeSchema))
	return b.String()
}

func buildGeneralPrompt(prompt string, pc PromptContext) string {
	var b strings.Builder
	b.WriteString("You are a helpful resume and career assistant.\n\n")
	writeContext(&b, pc)
	fmt.Fprintf(&b, "User request: %s\n\n", prompt)
	b.WriteString("Answer in suggestions.summary and add any actionable items to suggestions.recommendations.\n")
	b.WriteString(jsonInstruction(envelopeSchema))
	return b.String()
}
