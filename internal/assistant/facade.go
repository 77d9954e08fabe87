package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"resume-builder/internal/ai"
	"resume-builder/internal/resumes"
)

// ATSReport is the typed result of an ATS scoring call.
type ATSReport struct {
	Score           int      `json:"score"`
	Summary         string   `json:"summary"`
	MissingKeywords []string `json:"missingKeywords"`
	Recommendations []string `json:"recommendations"`
}

// TailoringReport explains how to adapt a résumé to one job description.
type TailoringReport struct {
	MatchScore       int      `json:"matchScore"`
	Summary          string   `json:"summary"`
	MissingKeywords  []string `json:"missingKeywords"`
	SuggestedBullets []string `json:"suggestedBullets"`
	Recommendations  []string `json:"recommendations"`
}

// Facade exposes one method per résumé-editor AI feature.
type Facade struct {
	A   Assister
	now func() time.Time
}

// NewFacade wraps an Assister.
func NewFacade(a Assister) *Facade {
	return &Facade{A: a, now: time.Now}
}

func (f *Facade) GenerateSummary(ctx context.Context, data resumes.ResumeData, targetRole string) (string, error) {
	pc, err := contextFor(data)
	if err != nil {
		return "", err
	}
	pc.TargetRole = targetRole
	prompt := "Write a professional summary for this resume."
	if targetRole != "" {
		prompt = "Write a professional summary targeting the role of " + targetRole + "."
	}
	env, err := f.call(ctx, ai.TypeSummary, prompt, pc)
	if err != nil {
		return "", err
	}
	return firstNonEmpty(env.Suggestions.Summary, env.Content)
}

func (f *Facade) ImproveBullets(ctx context.Context, bullets []string, role string) ([]string, error) {
	pc := ai.PromptContext{Bullets: bullets, TargetRole: role}
	env, err := f.call(ctx, ai.TypeBullets, "Improve these achievement bullets.", pc)
	if err != nil {
		return nil, err
	}
	if len(env.Suggestions.Bullets) == 0 {
		return nil, ErrEmptyResult
	}
	return env.Suggestions.Bullets, nil
}

func (f *Facade) ExtractKeywords(ctx context.Context, jobDescription string) ([]string, error) {
	pc := ai.PromptContext{JobDescription: jobDescription}
	env, err := f.call(ctx, ai.TypeKeywords, "Extract the ATS keywords from this job description.", pc)
	if err != nil {
		return nil, err
	}
	if len(env.Suggestions.Keywords) == 0 {
		return nil, ErrEmptyResult
	}
	return env.Suggestions.Keywords, nil
}

// ScoreATS rates data against jobDescription. The score is clamped to 0..100.
func (f *Facade) ScoreATS(ctx context.Context, data resumes.ResumeData, jobDescription string) (ATSReport, error) {
	pc, err := contextFor(data)
	if err != nil {
		return ATSReport{}, err
	}
	pc.JobDescription = jobDescription
	env, err := f.call(ctx, ai.TypeATSScore, "Score this resume for ATS compatibility.", pc)
	if err != nil {
		return ATSReport{}, err
	}
	return ATSReport{
		Score:           clamp(env.Suggestions.ATSScore),
		Summary:         env.Suggestions.Summary,
		MissingKeywords: env.Suggestions.Keywords,
		Recommendations: env.Suggestions.Recommendations,
	}, nil
}

func (f *Facade) AnalyzeJobTailoring(ctx context.Context, data resumes.ResumeData, jobDescription string) (TailoringReport, error) {
	pc, err := contextFor(data)
	if err != nil {
		return TailoringReport{}, err
	}
	pc.JobDescription = jobDescription
	env, err := f.call(ctx, ai.TypeJobTailoring, "Explain how to tailor this resume to the job.", pc)
	if err != nil {
		return TailoringReport{}, err
	}
	return TailoringReport{
		MatchScore:       clamp(env.Suggestions.ATSScore),
		Summary:          env.Suggestions.Summary,
		MissingKeywords:  env.Suggestions.Keywords,
		SuggestedBullets: env.Suggestions.Bullets,
		Recommendations:  env.Suggestions.Recommendations,
	}, nil
}

func (f *Facade) GenerateCoverLetter(ctx context.Context, data resumes.ResumeData, jobDescription, company string) (string, error) {
	pc, err := contextFor(data)
	if err != nil {
		return "", err
	}
	pc.JobDescription = jobDescription
	pc.Company = company
	prompt := "Write a cover letter for this job."
	if company != "" {
		prompt = "Write a cover letter for this job at " + company + "."
	}
	env, err := f.call(ctx, ai.TypeCoverLetter, prompt, pc)
	if err != nil {
		return "", err
	}
	return firstNonEmpty(env.Content, env.Suggestions.Summary)
}

// ExtractCV parses free CV text into ResumeData. Every extracted entry gets a
// fresh millisecond-based id, unique within its list.
func (f *Facade) ExtractCV(ctx context.Context, cvText string) (resumes.ResumeData, error) {
	pc := ai.PromptContext{CVText: cvText}
	env, err := f.call(ctx, ai.TypeCVExtraction, "Extract structured resume data from this CV.", pc)
	if err != nil {
		return resumes.ResumeData{}, err
	}
	if len(env.ExtractedData) == 0 {
		return resumes.ResumeData{}, ErrEmptyResult
	}
	data, err := decodeExtracted(env.ExtractedData)
	if err != nil {
		return resumes.ResumeData{}, err
	}
	assignIDs(&data, f.now())
	return data, nil
}

func (f *Facade) call(ctx context.Context, t ai.RequestType, prompt string, pc ai.PromptContext) (ai.Envelope, error) {
	env, err := f.A.Assist(ctx, ai.Request{Prompt: prompt, Type: t, Context: pc})
	if err != nil {
		return ai.Envelope{}, fmt.Errorf("%s: %w", t, err)
	}
	return env, nil
}

func contextFor(data resumes.ResumeData) (ai.PromptContext, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return ai.PromptContext{}, fmt.Errorf("encode resume data: %w", err)
	}
	return ai.PromptContext{ResumeData: raw}, nil
}

// extractedResume accepts skills as objects or as plain strings.
type extractedResume struct {
	resumes.ResumeData
	Skills json.RawMessage `json:"skills"`
}

func decodeExtracted(m map[string]any) (resumes.ResumeData, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return resumes.ResumeData{}, fmt.Errorf("encode extracted data: %w", err)
	}
	var ex extractedResume
	if err := json.Unmarshal(raw, &ex); err != nil {
		return resumes.ResumeData{}, fmt.Errorf("%w: extracted data does not match resume shape: %v", ErrEmptyResult, err)
	}
	data := ex.ResumeData
	data.Skills = nil
	if len(ex.Skills) > 0 {
		var objs []resumes.Skill
		if err := json.Unmarshal(ex.Skills, &objs); err == nil {
			data.Skills = objs
		} else {
			var names []string
			if err := json.Unmarshal(ex.Skills, &names); err == nil {
				for _, n := range names {
					if n = strings.TrimSpace(n); n != "" {
						data.Skills = append(data.Skills, resumes.Skill{Name: n})
					}
				}
			}
		}
	}
	data.Normalize()
	return data, nil
}

func assignIDs(d *resumes.ResumeData, now time.Time) {
	base := now.UnixMilli()
	id := func(i int) string { return strconv.FormatInt(base+int64(i), 10) }
	for i := range d.Experience {
		d.Experience[i].ID = id(i)
	}
	for i := range d.Education {
		d.Education[i].ID = id(i)
	}
	for i := range d.Skills {
		d.Skills[i].ID = id(i)
	}
	for i := range d.Projects {
		d.Projects[i].ID = id(i)
	}
	for i := range d.Certifications {
		d.Certifications[i].ID = id(i)
	}
	for i := range d.Languages {
		d.Languages[i].ID = id(i)
	}
	for i := range d.References {
		d.References[i].ID = id(i)
	}
}

func firstNonEmpty(values ...string) (string, error) {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v, nil
		}
	}
	return "", ErrEmptyResult
}

func clamp(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}
