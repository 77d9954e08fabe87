package ai

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// shapeKind enumerates the reply shapes providers are known to produce.
type shapeKind int

const (
	shapeEnvelope shapeKind = iota
	shapeCVResume
	shapeString
	shapeAdvice
	shapeResumeAdvice
	shapeResumeFeedback
	shapeCoverLetter
	shapeGeneric
	shapeOpaque
)

func (k shapeKind) String() string {
	switch k {
	case shapeEnvelope:
		return "envelope"
	case shapeCVResume:
		return "cv_resume"
	case shapeString:
		return "string"
	case shapeAdvice:
		return "advice"
	case shapeResumeAdvice:
		return "resume_advice"
	case shapeResumeFeedback:
		return "resume_feedback"
	case shapeCoverLetter:
		return "cover_letter"
	case shapeGeneric:
		return "generic"
	default:
		return "opaque"
	}
}

// Confidence constants are per-shape UI hints, not a measured probability.
const (
	confidenceEnvelope  = 0.9
	confidenceCVResume  = 0.9
	confidenceString    = 0.85
	confidenceAdvice    = 0.85
	confidenceFeedback  = 0.8
	confidenceCover     = 0.9
	confidenceGeneric   = 0.75
	confidenceOpaque    = 0.5
	confidencePlainText = 0.8
)

// genericKeys are checked in order for the generic single-field shape.
var genericKeys = []string{"answer", "response", "text", "message"}

// detectShape classifies a decoded JSON value. Order matters: the first match wins.
func detectShape(v any) shapeKind {
	switch val := v.(type) {
	case string:
		return shapeString
	case map[string]any:
		if sugg, ok := val["suggestions"].(map[string]any); ok {
			if _, ok := sugg["summary"]; ok {
				return shapeEnvelope
			}
		}
		if hasKeys(val, "cv", "resume") {
			return shapeCVResume
		}
		switch {
		case hasKeys(val, "advice"):
			return shapeAdvice
		case hasKeys(val, "resume_advice"):
			return shapeResumeAdvice
		case hasKeys(val, "resume_feedback"):
			return shapeResumeFeedback
		case hasKeys(val, "coverLetter"):
			return shapeCoverLetter
		}
		for _, k := range genericKeys {
			if hasKeys(val, k) {
				return shapeGeneric
			}
		}
	}
	return shapeOpaque
}

// Normalize converts raw provider text into an Envelope. It never fails:
// text that is not JSON becomes a plain-text reply, kept verbatim.
func Normalize(raw string) Envelope {
	text := stripCodeFence(raw)

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		env := Envelope{
			Suggestions: Suggestions{Summary: raw},
			Content:     raw,
			Confidence:  confidencePlainText,
		}
		env.fillDefaults()
		return env
	}

	env := fromValue(decoded)
	if env.Suggestions.Summary == "" {
		switch {
		case env.Content != "":
			env.Suggestions.Summary = env.Content
		case text != "":
			env.Suggestions.Summary = compactJSON(decoded)
		}
	}
	env.fillDefaults()
	return env
}

func fromValue(v any) Envelope {
	obj, _ := v.(map[string]any)

	switch detectShape(v) {
	case shapeEnvelope:
		return fromEnvelope(obj)

	case shapeCVResume:
		summary, bullets := textOf(obj["resume"])
		content, _ := textOf(obj["cv"])
		env := Envelope{
			Suggestions:   Suggestions{Summary: summary, Bullets: bullets},
			Content:       content,
			ExtractedData: obj,
			Confidence:    confidenceCVResume,
		}
		liftSiblings(obj, &env.Suggestions)
		return env

	case shapeString:
		s := v.(string)
		return Envelope{
			Suggestions: Suggestions{Summary: s},
			Content:     s,
			Confidence:  confidenceString,
		}

	case shapeAdvice:
		return fromKeyed(obj, "advice", confidenceAdvice, false)
	case shapeResumeAdvice:
		return fromKeyed(obj, "resume_advice", confidenceAdvice, false)
	case shapeResumeFeedback:
		return fromKeyed(obj, "resume_feedback", confidenceFeedback, false)
	case shapeCoverLetter:
		return fromKeyed(obj, "coverLetter", confidenceCover, true)

	case shapeGeneric:
		for _, k := range genericKeys {
			if _, ok := obj[k]; ok {
				return fromKeyed(obj, k, confidenceGeneric, true)
			}
		}
	}

	env := Envelope{
		Suggestions: Suggestions{Summary: compactJSON(v)},
		Confidence:  confidenceOpaque,
	}
	if obj != nil {
		env.ExtractedData = obj
	}
	return env
}

// fromKeyed maps a single well-known field into the summary, lifting known siblings.
func fromKeyed(obj map[string]any, key string, confidence float64, withContent bool) Envelope {
	text, bullets := textOf(obj[key])
	env := Envelope{
		Suggestions: Suggestions{Summary: text, Bullets: bullets},
		Confidence:  confidence,
	}
	if withContent {
		env.Content = text
	}
	liftSiblings(obj, &env.Suggestions)
	return env
}

func fromEnvelope(obj map[string]any) Envelope {
	sugg, _ := obj["suggestions"].(map[string]any)
	summary, _ := textOf(sugg["summary"])
	env := Envelope{
		Suggestions: Suggestions{Summary: summary},
		Confidence:  confidenceEnvelope,
	}
	liftSiblings(sugg, &env.Suggestions)

	if content, ok := obj["content"].(string); ok {
		env.Content = content
	}
	if data, ok := obj["extractedData"].(map[string]any); ok {
		env.ExtractedData = data
	}
	if c, ok := toFloat(obj["confidence"]); ok && c > 0 && c <= 1 {
		env.Confidence = c
	}
	if b, ok := obj["template_optimized"].(bool); ok {
		env.TemplateOptimized = b
	}
	return env
}

// liftSiblings copies recognized suggestion fields from obj without touching the summary.
func liftSiblings(obj map[string]any, s *Suggestions) {
	if obj == nil {
		return
	}
	if list := stringList(obj["bullets"]); len(list) > 0 {
		s.Bullets = list
	}
	if list := stringList(obj["keywords"]); len(list) > 0 {
		s.Keywords = list
	}
	if list := stringList(obj["recommendations"]); len(list) > 0 {
		s.Recommendations = list
	}
	switch skills := obj["skills"].(type) {
	case map[string]any:
		s.Skills.Technical = stringList(skills["technical"])
		s.Skills.Soft = stringList(skills["soft"])
		s.Skills.Other = stringList(skills["other"])
	case []any:
		s.Skills.Technical = stringList(skills)
	}
	if score, ok := toFloat(obj["ats_score"]); ok {
		s.ATSScore = clampScore(score)
	}
}

// textOf renders a nested value as display text. String lists also come back as bullets.
func textOf(v any) (string, []string) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			if t, _ := textOf(item); t != "" {
				items = append(items, t)
			}
		}
		return strings.Join(items, "\n"), items
	case map[string]any:
		for _, k := range []string{"summary", "text", "content"} {
			if s, ok := val[k].(string); ok && s != "" {
				return s, nil
			}
		}
		return compactJSON(val), nil
	default:
		return compactJSON(val), nil
	}
}

func stringList(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if t, _ := textOf(item); strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(val, "%")), 64)
		return f, err == nil
	}
	return 0, false
}

func clampScore(f float64) int {
	n := int(math.Round(f))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func hasKeys(obj map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return false
		}
	}
	return true
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// stripCodeFence removes a surrounding markdown code block, with or without a language tag.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		if tag := strings.TrimSpace(s[:nl]); !strings.ContainsAny(tag, "{[\" ") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
