package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/resumes"
)

type scriptedExtractor struct {
	errs  []error
	calls int
}

func (s *scriptedExtractor) ExtractCV(context.Context, string) (resumes.ResumeData, error) {
	s.calls++
	if s.calls <= len(s.errs) && s.errs[s.calls-1] != nil {
		return resumes.ResumeData{}, s.errs[s.calls-1]
	}
	return resumes.ResumeData{Summary: "ok"}, nil
}

func instantAnalyzer(x CVExtractor, waits *[]time.Duration) *CVAnalyzer {
	a := NewCVAnalyzer(x)
	a.after = func(d time.Duration) <-chan time.Time {
		*waits = append(*waits, d)
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}
	return a
}

func TestAnalyzeRetriesWithLinearDelay(t *testing.T) {
	x := &scriptedExtractor{errs: []error{errors.New("boom"), errors.New("boom again")}}
	var waits []time.Duration
	var updates []string
	a := instantAnalyzer(x, &waits)
	a.OnAttempt = func(st AttemptStatus) { updates = append(updates, st.Status) }

	res, err := a.Analyze(context.Background(), "cv")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Data.Summary)
	assert.Equal(t, 3, x.calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, waits)

	require.Len(t, res.Attempts, 3)
	assert.Equal(t, AttemptFailed, res.Attempts[0].Status)
	assert.Equal(t, "boom", res.Attempts[0].Error)
	assert.Equal(t, AttemptFailed, res.Attempts[1].Status)
	assert.Equal(t, AttemptSuccess, res.Attempts[2].Status)
	assert.NotNil(t, res.Attempts[2].FinishedAt)
	assert.Equal(t, []string{
		AttemptRunning, AttemptFailed,
		AttemptRunning, AttemptFailed,
		AttemptRunning, AttemptSuccess,
	}, updates)
}

func TestAnalyzeStopsAtFirstSuccess(t *testing.T) {
	x := &scriptedExtractor{}
	var waits []time.Duration
	res, err := instantAnalyzer(x, &waits).Analyze(context.Background(), "cv")
	require.NoError(t, err)
	assert.Equal(t, 1, x.calls)
	assert.Empty(t, waits)
	assert.Equal(t, AttemptSuccess, res.Attempts[0].Status)
	assert.Equal(t, AttemptPending, res.Attempts[1].Status)
	assert.Equal(t, AttemptPending, res.Attempts[2].Status)
}

func TestAnalyzeExhaustsAttempts(t *testing.T) {
	final := errors.New("still down")
	x := &scriptedExtractor{errs: []error{errors.New("a"), errors.New("b"), final}}
	var waits []time.Duration
	res, err := instantAnalyzer(x, &waits).Analyze(context.Background(), "cv")
	require.Error(t, err)
	assert.ErrorIs(t, err, final)
	assert.Equal(t, 3, x.calls)
	for _, st := range res.Attempts {
		assert.Equal(t, AttemptFailed, st.Status)
	}
}

func TestAnalyzeCancelledDuringWait(t *testing.T) {
	x := &scriptedExtractor{errs: []error{errors.New("a"), errors.New("b"), errors.New("c")}}
	ctx, cancel := context.WithCancel(context.Background())
	a := NewCVAnalyzer(x)
	a.after = func(time.Duration) <-chan time.Time {
		cancel()
		return make(chan time.Time)
	}

	res, err := a.Analyze(ctx, "cv")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, x.calls)
	assert.Equal(t, AttemptPending, res.Attempts[1].Status)
}
