package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

// Provider is one upstream LLM.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Request is a single assistant call.
type Request struct {
	Prompt  string
	Type    RequestType
	Context PromptContext
}

// Service runs the primary provider and falls back to the secondary one
// only when the primary rejects the call for quota or rate-limit reasons.
// It keeps no state between calls.
type Service struct {
	primary   Provider
	secondary Provider
	timeout   time.Duration
	now       func() time.Time
}

// NewService takes providers in precedence order. Only the first two are used.
func NewService(providers []Provider, timeout time.Duration) *Service {
	s := &Service{timeout: timeout, now: time.Now}
	if len(providers) > 0 {
		s.primary = providers[0]
	}
	if len(providers) > 1 {
		s.secondary = providers[1]
	}
	return s
}

// Providers returns the configured provider names in order.
func (s *Service) Providers() []string {
	out := []string{}
	for _, p := range []Provider{s.primary, s.secondary} {
		if p != nil {
			out = append(out, p.Name())
		}
	}
	return out
}

// Assist builds the prompt, calls providers and normalizes the reply.
// On failure the returned Envelope is the error envelope for the returned error.
func (s *Service) Assist(ctx context.Context, req Request) (Envelope, error) {
	start := s.now()
	if req.Type == "" {
		req.Type = TypeGeneral
	}
	defer func() {
		metrics.ObserveAIDuration(string(req.Type), time.Since(start))
	}()

	if req.Prompt == "" {
		return ErrorEnvelope(KindGeneric, "", req.Type, s.now()), ErrInvalidRequest
	}
	if s.primary == nil {
		telemetry.Error("ai.assist.failed", map[string]any{"type": req.Type, "error": ErrNoProvider})
		return ErrorEnvelope(KindMissingAPIKey, "", req.Type, s.now()), ErrNoProvider
	}

	prompt := BuildPrompt(req.Type, req.Prompt, req.Context)

	provider := s.primary
	text, err := s.call(ctx, provider, req.Type, prompt)
	fallbackUsed := false
	if err != nil && IsQuotaError(err) && s.secondary != nil {
		telemetry.Warn("ai.provider.fallback", map[string]any{
			"type":  req.Type,
			"from":  s.primary.Name(),
			"to":    s.secondary.Name(),
			"error": err,
		})
		metrics.IncAIFallback()
		provider = s.secondary
		fallbackUsed = true
		text, err = s.call(ctx, provider, req.Type, prompt)
	}
	if err != nil {
		kind := Classify(err)
		telemetry.Error("ai.assist.failed", map[string]any{
			"type":         req.Type,
			"provider":     provider.Name(),
			"errorType":    kind,
			"fallbackUsed": fallbackUsed,
			"error":        err,
		})
		env := ErrorEnvelope(kind, provider.Name(), req.Type, s.now())
		env.Metadata.FallbackUsed = fallbackUsed
		return env, fmt.Errorf("%s: %w", provider.Name(), err)
	}

	env := Normalize(text)
	env.Metadata = &Metadata{
		Provider:     provider.Name(),
		Type:         req.Type,
		FallbackUsed: fallbackUsed,
		GeneratedAt:  s.now().UTC(),
	}
	return env, nil
}

func (s *Service) call(ctx context.Context, p Provider, t RequestType, prompt string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := p.Generate(ctx, prompt)
	if err == nil && text == "" {
		err = ErrEmptyResponse
	}

	outcome := "success"
	switch {
	case err == nil:
	case IsQuotaError(err):
		outcome = "quota"
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
	default:
		outcome = "error"
	}
	metrics.IncAIRequest(string(t), p.Name(), outcome)
	telemetry.Info("ai.provider.call", map[string]any{
		"provider":    p.Name(),
		"type":        t,
		"outcome":     outcome,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return text, err
}
