package assistant

import (
	"context"
	"fmt"
	"time"

	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/telemetry"
)

// Attempt states reported to the UI.
const (
	AttemptPending = "pending"
	AttemptRunning = "running"
	AttemptSuccess = "success"
	AttemptFailed  = "failed"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 2 * time.Second
)

// CVExtractor is the single call the analyzer retries.
type CVExtractor interface {
	ExtractCV(ctx context.Context, cvText string) (resumes.ResumeData, error)
}

// AttemptStatus is the display state of one extraction attempt.
type AttemptStatus struct {
	Attempt    int        `json:"attempt"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// AnalysisResult carries the extracted data and the attempt history.
type AnalysisResult struct {
	Data     resumes.ResumeData `json:"data"`
	Attempts []AttemptStatus    `json:"attempts"`
}

// CVAnalyzer retries CV extraction sequentially. The wait before attempt n+1
// is RetryDelay*n.
type CVAnalyzer struct {
	Extractor   CVExtractor
	MaxAttempts int
	RetryDelay  time.Duration
	// OnAttempt, when set, is called after every status change.
	OnAttempt func(AttemptStatus)

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// NewCVAnalyzer returns an analyzer with 3 attempts and a 2s base delay.
func NewCVAnalyzer(x CVExtractor) *CVAnalyzer {
	return &CVAnalyzer{
		Extractor:   x,
		MaxAttempts: DefaultMaxAttempts,
		RetryDelay:  DefaultRetryDelay,
	}
}

// Analyze stops at the first successful attempt. When every attempt fails the
// last error is returned along with the full history. Cancelling ctx aborts a
// pending wait.
func (a *CVAnalyzer) Analyze(ctx context.Context, cvText string) (AnalysisResult, error) {
	maxAttempts := a.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	now := a.now
	if now == nil {
		now = time.Now
	}
	after := a.after
	if after == nil {
		after = time.After
	}

	res := AnalysisResult{Attempts: make([]AttemptStatus, maxAttempts)}
	for i := range res.Attempts {
		res.Attempts[i] = AttemptStatus{Attempt: i + 1, Status: AttemptPending}
	}

	var lastErr error
	for n := 1; n <= maxAttempts; n++ {
		if n > 1 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-after(a.RetryDelay * time.Duration(n-1)):
			}
		}

		st := &res.Attempts[n-1]
		started := now()
		st.Status = AttemptRunning
		st.StartedAt = &started
		a.report(*st)

		data, err := a.Extractor.ExtractCV(ctx, cvText)
		finished := now()
		st.FinishedAt = &finished
		if err == nil {
			st.Status = AttemptSuccess
			a.report(*st)
			res.Data = data
			return res, nil
		}

		lastErr = err
		st.Status = AttemptFailed
		st.Error = err.Error()
		a.report(*st)
		telemetry.Warn("assistant.cv.attempt_failed", map[string]interface{}{
			"attempt": n,
			"max":     maxAttempts,
			"error":   err.Error(),
		})
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
	}
	return res, fmt.Errorf("cv analysis failed after %d attempts: %w", maxAttempts, lastErr)
}

func (a *CVAnalyzer) report(st AttemptStatus) {
	if a.OnAttempt != nil {
		a.OnAttempt(st)
	}
}
