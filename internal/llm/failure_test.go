// ABOUTME: Tests for generation failure classification
// ABOUTME: Exercises the error mapping without talking to any backend

package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
)

func TestClassify_DeadlineExceeded(t *testing.T) {
	err := fmt.Errorf("request aborted: %w", context.DeadlineExceeded)
	assert.Equal(t, KindTimeout, Classify(err).Kind)
}

func TestClassify_RateLimited(t *testing.T) {
	apiErr := &openai.Error{StatusCode: 429}
	assert.Equal(t, KindRateLimited, Classify(apiErr).Kind)
}

func TestClassify_ServerTimeout(t *testing.T) {
	apiErr := &openai.Error{StatusCode: 504}
	assert.Equal(t, KindTimeout, Classify(apiErr).Kind)
}

func TestClassify_Unknown(t *testing.T) {
	assert.Equal(t, KindUnknown, Classify(errors.New("connection reset")).Kind)

	apiErr := &openai.Error{StatusCode: 500}
	assert.Equal(t, KindUnknown, Classify(apiErr).Kind)
}

func TestClassify_PassesThroughFailure(t *testing.T) {
	orig := &Failure{Kind: KindInvalidResponse}
	assert.Same(t, orig, Classify(orig))
	assert.Same(t, orig, Classify(fmt.Errorf("wrapped: %w", orig)))
}

func TestFailure_ErrorAndUnwrap(t *testing.T) {
	inner := errors.New("boom")
	f := &Failure{Kind: KindUnknown, Err: inner}
	assert.Contains(t, f.Error(), "unknown")
	assert.ErrorIs(t, f, inner)

	bare := &Failure{Kind: KindInvalidResponse}
	assert.Contains(t, bare.Error(), "invalid_response")
}
