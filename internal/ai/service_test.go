package ai

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

type fakeProvider struct {
	name   string
	reply  string
	err    error
	calls  atomic.Int32
	prompt string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	f.prompt = prompt
	return f.reply, f.err
}

func TestAssistPrimarySuccess(t *testing.T) {
	primary := &fakeProvider{name: "gemini", reply: `{"advice":"Use action verbs"}`}
	secondary := &fakeProvider{name: "openrouter", reply: "unused"}
	svc := NewService([]Provider{primary, secondary}, time.Second)

	env, err := svc.Assist(context.Background(), Request{Prompt: "help", Type: TypeSummary})
	require.NoError(t, err)
	assert.Equal(t, "Use action verbs", env.Suggestions.Summary)
	assert.Equal(t, "gemini", env.Metadata.Provider)
	assert.False(t, env.Metadata.FallbackUsed)
	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Equal(t, int32(0), secondary.calls.Load())
	assert.Contains(t, primary.prompt, "help")
}

func TestAssistQuotaErrorFallsBackOnce(t *testing.T) {
	for _, msg := range []string{
		"googleapi: Error 429: RESOURCE_EXHAUSTED",
		"You exceeded your current quota, please check your plan and billing details",
	} {
		t.Run(msg, func(t *testing.T) {
			primary := &fakeProvider{name: "gemini", err: errors.New(msg)}
			secondary := &fakeProvider{name: "openrouter", reply: `{"answer":"fallback reply"}`}
			svc := NewService([]Provider{primary, secondary}, 0)

			env, err := svc.Assist(context.Background(), Request{Prompt: "help", Type: TypeGeneral})
			require.NoError(t, err)
			assert.Equal(t, "fallback reply", env.Suggestions.Summary)
			assert.Equal(t, "openrouter", env.Metadata.Provider)
			assert.True(t, env.Metadata.FallbackUsed)
			assert.Equal(t, int32(1), primary.calls.Load())
			assert.Equal(t, int32(1), secondary.calls.Load())
		})
	}
}

func TestAssistNonQuotaErrorDoesNotFallBack(t *testing.T) {
	for _, primaryErr := range []error{
		errors.New("googleapi: Error 500: internal"),
		errors.New("googleapi: Error 400: Invalid JSON payload at byte 4291"),
		&googleapi.Error{Code: 400, Message: "quota project header is malformed"},
	} {
		t.Run(primaryErr.Error(), func(t *testing.T) {
			primary := &fakeProvider{name: "gemini", err: primaryErr}
			secondary := &fakeProvider{name: "openrouter", reply: "unused"}
			svc := NewService([]Provider{primary, secondary}, 0)

			env, err := svc.Assist(context.Background(), Request{Prompt: "help", Type: TypeGeneral})
			require.Error(t, err)
			assert.Equal(t, int32(0), secondary.calls.Load())
			assert.Equal(t, KindGeneric, env.Metadata.ErrorType)
			assert.False(t, env.Metadata.FallbackUsed)
		})
	}
}

func TestAssistSecondaryFailureIsFatal(t *testing.T) {
	primary := &fakeProvider{name: "gemini", err: errors.New("RESOURCE_EXHAUSTED")}
	secondary := &fakeProvider{name: "openrouter", err: errors.New("429 Too Many Requests: Rate limit exceeded")}
	svc := NewService([]Provider{primary, secondary}, 0)

	env, err := svc.Assist(context.Background(), Request{Prompt: "help"})
	require.Error(t, err)
	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Equal(t, int32(1), secondary.calls.Load())
	assert.Equal(t, KindRateLimit, env.Metadata.ErrorType)
	assert.Equal(t, "openrouter", env.Metadata.Provider)
	assert.True(t, env.Metadata.FallbackUsed)
}

func TestAssistQuotaWithoutSecondary(t *testing.T) {
	primary := &fakeProvider{name: "gemini", err: errors.New("exceeded your current quota")}
	svc := NewService([]Provider{primary}, 0)

	env, err := svc.Assist(context.Background(), Request{Prompt: "help"})
	require.Error(t, err)
	assert.Equal(t, KindQuotaExceeded, env.Metadata.ErrorType)
	assert.False(t, env.Metadata.FallbackUsed)
}

func TestAssistNoProviders(t *testing.T) {
	env, err := NewService(nil, 0).Assist(context.Background(), Request{Prompt: "help"})
	assert.ErrorIs(t, err, ErrNoProvider)
	assert.Equal(t, KindMissingAPIKey, env.Metadata.ErrorType)
}

func TestAssistEmptyReplyIsError(t *testing.T) {
	primary := &fakeProvider{name: "gemini", reply: ""}
	_, err := NewService([]Provider{primary}, 0).Assist(context.Background(), Request{Prompt: "help"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestAssistRequiresPrompt(t *testing.T) {
	primary := &fakeProvider{name: "gemini", reply: "x"}
	_, err := NewService([]Provider{primary}, 0).Assist(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Equal(t, int32(0), primary.calls.Load())
}

func TestProvidersOrder(t *testing.T) {
	svc := NewService([]Provider{&fakeProvider{name: "a"}, &fakeProvider{name: "b"}, &fakeProvider{name: "c"}}, 0)
	assert.Equal(t, []string{"a", "b"}, svc.Providers())
}
