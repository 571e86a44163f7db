// ABOUTME: Typed generation failures so the pipeline can pick fallback wording
// ABOUTME: Classification maps transport/API errors onto a small closed kind set

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
)

// FailureKind categorizes why a generation attempt failed.
type FailureKind string

const (
	KindTimeout         FailureKind = "timeout"
	KindRateLimited     FailureKind = "rate_limited"
	KindInvalidResponse FailureKind = "invalid_response"
	KindUnknown         FailureKind = "unknown"
)

// Failure is the error type returned by Client.Complete. The pipeline never
// retries; it only inspects Kind to choose user-visible fallback wording.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("generation failed: %s", f.Kind)
	}
	return fmt.Sprintf("generation failed (%s): %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Classify wraps err in a Failure with the best-fitting kind. A Failure
// passes through unchanged.
func Classify(err error) *Failure {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Failure{Kind: KindTimeout, Err: err}
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			return &Failure{Kind: KindRateLimited, Err: err}
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return &Failure{Kind: KindTimeout, Err: err}
		}
	}

	return &Failure{Kind: KindUnknown, Err: err}
}
