package ai

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/openai/openai-go/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorKind is the failure bucket surfaced to clients in metadata.errorType.
type ErrorKind string

const (
	KindRateLimit     ErrorKind = "rate_limit"
	KindQuotaExceeded ErrorKind = "quota_exceeded"
	KindMissingAPIKey ErrorKind = "missing_api_key"
	KindGeneric       ErrorKind = "generic_ai_service_error"
)

var (
	// ErrNoProvider is returned when no provider has an API key configured.
	ErrNoProvider = errors.New("no AI provider configured")
	// ErrEmptyResponse is returned by providers that answer with no text.
	ErrEmptyResponse = errors.New("empty response from AI provider")
	// ErrInvalidRequest is returned for requests without a prompt.
	ErrInvalidRequest = errors.New("prompt is required")
)

// quotaSignatures mark untyped errors that move the call to the secondary provider.
var quotaSignatures = []string{
	"resource_exhausted",
	"resourceexhausted",
	"exceeded your current quota",
	"rate limit",
	"too many requests",
}

// status429 only matches 429 when it is reported as a status code.
var status429 = regexp.MustCompile(`\b(error|status|code|http)[ :=]*429\b|^429\b`)

// IsQuotaError reports whether err is a quota or rate-limit rejection.
// Typed upstream errors are decided by their status; anything else falls
// back to case-insensitive signature matching on the error text.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if quota, typed := typedQuota(err); typed {
		return quota
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range quotaSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return status429.MatchString(msg)
}

// typedQuota inspects the error types returned by the Gemini and OpenRouter SDKs.
func typedQuota(err error) (quota bool, typed bool) {
	var oaErr *openai.Error
	if errors.As(err, &oaErr) {
		return oaErr.StatusCode == http.StatusTooManyRequests, true
	}
	var gaxErr *apierror.APIError
	if errors.As(err, &gaxErr) {
		if gaxErr.HTTPCode() == http.StatusTooManyRequests {
			return true, true
		}
		if st := gaxErr.GRPCStatus(); st != nil {
			return st.Code() == codes.ResourceExhausted, true
		}
		return false, true
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code == http.StatusTooManyRequests, true
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return st.Code() == codes.ResourceExhausted, true
	}
	return false, false
}

// Classify buckets an error into an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNoProvider) {
		return KindMissingAPIKey
	}
	msg := strings.ToLower(err.Error())
	quota, typed := typedQuota(err)
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "api_key") || strings.Contains(msg, "not configured"):
		return KindMissingAPIKey
	case typed && !quota:
		return KindGeneric
	case strings.Contains(msg, "quota") || strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "resourceexhausted"):
		return KindQuotaExceeded
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests") || status429.MatchString(msg):
		return KindRateLimit
	case typed && quota:
		return KindRateLimit
	}
	return KindGeneric
}

// Message returns the user-facing text for kind.
func Message(kind ErrorKind) string {
	switch kind {
	case KindRateLimit:
		return "The AI service is receiving too many requests. Please wait a moment and try again."
	case KindQuotaExceeded:
		return "The AI service quota has been exceeded. Please try again later."
	case KindMissingAPIKey:
		return "The AI service is not configured. Please contact support."
	default:
		return "The AI service is temporarily unavailable. Please try again."
	}
}

// HTTPStatus maps kind onto the function response status.
func HTTPStatus(kind ErrorKind) int {
	switch kind {
	case KindRateLimit, KindQuotaExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorEnvelope builds the fixed failure envelope.
func ErrorEnvelope(kind ErrorKind, provider string, t RequestType, now time.Time) Envelope {
	env := Envelope{
		Error: Message(kind),
		Metadata: &Metadata{
			Provider:    provider,
			Type:        t,
			ErrorType:   kind,
			GeneratedAt: now.UTC(),
		},
	}
	env.fillDefaults()
	return env
}
