package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

var (
	feedbackReply = json.RawMessage(`{"feedback":"Revisit select with timeouts."}`)
	planReply     = json.RawMessage(`{"plan":"1. Redo module 2 quiz. 2. Build a worker pool."}`)
)

func feedbackRequest() (context.Context, Request) {
	ctx := WithPurpose(context.Background(), PurposeCompetencyFeedback)
	return ctx, Request{
		Messages:  []Message{{Role: RoleUser, Content: "Module 2 quiz: 2/5."}},
		Schema:    feedbackSchema,
		MaxTokens: 256,
	}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := NewMockProvider()
	mock.Script(PurposeCompetencyFeedback, MockResponse{Content: feedbackReply})
	p := WithRetry(mock, retryConfig())

	ctx, req := feedbackRequest()
	resp, err := p.Generate(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != string(feedbackReply) {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockProvider()
	mock.Script(PurposeRemediationPlan,
		MockResponse{Err: &ErrProviderUnavailable{Provider: ProviderAnthropic, Err: errors.New("overloaded")}},
		MockResponse{Content: planReply},
	)
	p := WithRetry(mock, retryConfig())

	resp, err := p.Generate(WithPurpose(context.Background(), PurposeRemediationPlan), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != string(planReply) {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	down := MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
	mock := NewMockProvider(down, down, down, MockResponse{Content: planReply})
	p := WithRetry(mock, retryConfig())

	_, err := p.Generate(WithPurpose(context.Background(), PurposeRemediationPlan), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount())
	}
}

func TestRetry_NotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"max tokens", &ErrMaxTokensExceeded{Schema: "project-evaluation", Content: json.RawMessage(`{"overall_score":8`)}},
		{"bad key", &ErrRequestRejected{Provider: ProviderOpenAI, Status: 401, Err: errors.New("invalid api key")}},
		{"missing key", &ErrMissingAPIKey{Provider: ProviderGemini, EnvVar: "SKILLPATH_GEMINI_API_KEY"}},
		{"deadline", context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(MockResponse{Err: tt.err}, MockResponse{Content: feedbackReply})
			p := WithRetry(mock, retryConfig())

			ctx, req := feedbackRequest()
			if _, err := p.Generate(ctx, req); !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
			if mock.CallCount() != 1 {
				t.Fatalf("expected 1 call (no retry), got %d", mock.CallCount())
			}
		})
	}
}

func TestRetry_InvalidResponseRetriedOnce(t *testing.T) {
	mock := NewMockProvider()
	mock.ValidateSchemas = true
	mock.Script(PurposeCompetencyFeedback,
		MockResponse{Content: json.RawMessage(`{"feedback":""`)},
		MockResponse{Content: json.RawMessage(`{"summary":"wrong field"}`)},
		MockResponse{Content: feedbackReply},
	)
	p := WithRetry(mock, retryConfig())

	ctx, req := feedbackRequest()
	_, err := p.Generate(ctx, req)
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
	if inv.Schema != "competency-feedback" {
		t.Fatalf("schema = %q", inv.Schema)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	down := MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
	mock := NewMockProvider(down, down, MockResponse{Content: planReply})
	p := WithRetry(mock, RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1})

	ctx, cancel := context.WithCancel(WithPurpose(context.Background(), PurposeRemediationPlan))
	time.AfterFunc(5*time.Millisecond, cancel)

	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected the wait to be abandoned after 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_RateLimitRespectsRetryAfter(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{Provider: ProviderAnthropic, RetryAfter: 1 * time.Millisecond, Err: errors.New("429")}},
		MockResponse{Content: feedbackReply},
	)
	p := WithRetry(mock, retryConfig())

	ctx, req := feedbackRequest()
	resp, err := p.Generate(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != string(feedbackReply) {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_ModelIDDelegates(t *testing.T) {
	p := WithRetry(NewMockProvider(), retryConfig())
	if p.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", p.ModelID())
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&ErrRateLimit{Err: errors.New("429")}, true},
		{&ErrProviderUnavailable{Err: errors.New("502")}, true},
		{&ErrInvalidResponse{Schema: "exam-verdict", Err: errors.New("missing passed")}, true},
		{errors.New("connection reset"), true},
		{&ErrRequestRejected{Status: 400, Err: errors.New("bad schema")}, false},
		{&ErrMaxTokensExceeded{}, false},
		{context.Canceled, false},
	}
	for _, tt := range tests {
		if got := Retryable(tt.err); got != tt.want {
			t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
