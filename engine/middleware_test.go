package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jonwraymond/coachkit/auth"
	"github.com/jonwraymond/coachkit/observe"
)

func okHandler(resp *Response) Handler {
	return func(context.Context, *Request) (*Response, error) {
		return resp, nil
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	stage := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, req *Request) (*Response, error) {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}

	h := Chain(okHandler(&Response{Success: true}), stage("outer"), stage("inner"))
	if _, err := h(context.Background(), anonymousReq("hello", "")); err != nil {
		t.Fatalf("chain error: %v", err)
	}
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("execution order = %v, want [outer inner]", order)
	}
}

func TestValidateStopsBeforeNext(t *testing.T) {
	called := false
	h := Chain(func(context.Context, *Request) (*Response, error) {
		called = true
		return &Response{Success: true}, nil
	}, Validate())

	if _, err := h(context.Background(), anonymousReq("", "")); !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
	if called {
		t.Error("handler ran despite failed validation")
	}
}

func TestRateLimitSkipsDownstreamEffects(t *testing.T) {
	called := false
	h := Chain(func(context.Context, *Request) (*Response, error) {
		called = true
		return &Response{Success: true}, nil
	}, RateLimit(limiterFunc(func(string) bool { return false })))

	if _, err := h(context.Background(), anonymousReq("hello there friend", "")); !errors.Is(err, ErrRateLimited) {
		t.Errorf("error = %v, want ErrRateLimited", err)
	}
	if called {
		t.Error("handler ran despite rate-limit denial")
	}
}

func TestTimingLogsOutcome(t *testing.T) {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("debug", &buf)

	h := Chain(okHandler(&Response{Success: true}), Timing(logger, observe.NopMetrics()))
	if _, err := h(context.Background(), anonymousReq("hello there my friend", "")); err != nil {
		t.Fatalf("chain error: %v", err)
	}

	var entry map[string]any
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, line)
	}
	if entry["outcome"] != "responded" {
		t.Errorf("outcome = %v, want responded", entry["outcome"])
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Error("duration_ms field missing")
	}
}

func TestTimingSurvivesMissingIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("debug", &buf)

	h := Chain(okHandler(&Response{Success: true}), Timing(logger, observe.NopMetrics()), Validate())

	for _, req := range []*Request{nil, {Text: "hello"}} {
		buf.Reset()
		_, err := h(context.Background(), req)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("error = %v, want ErrValidation", err)
		}

		var entry map[string]any
		line := strings.TrimSpace(buf.String())
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %v (%q)", err, line)
		}
		if entry["outcome"] != "invalid" {
			t.Errorf("outcome = %v, want invalid", entry["outcome"])
		}
		if entry["actor"] != "" {
			t.Errorf("actor = %v, want empty", entry["actor"])
		}
	}
}

func TestOutcomeFor(t *testing.T) {
	tests := []struct {
		name string
		resp *Response
		err  error
		want string
	}{
		{"success", &Response{Success: true}, nil, "responded"},
		{"cache hit", &Response{Success: true, Cached: true}, nil, "cache_hit"},
		{"validation", nil, ErrValidation, "invalid"},
		{"rate limited", nil, ErrRateLimited, "rate_limited"},
		{"quota", nil, &QuotaDenial{Used: 5, Limit: 5}, "quota_denied"},
		{"tier", nil, &TierDenial{}, "tier_denied"},
		{"other", nil, errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outcomeFor(tt.resp, tt.err); got != tt.want {
				t.Errorf("outcomeFor = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateAllowsKnownCategories(t *testing.T) {
	h := Chain(okHandler(&Response{Success: true}), Validate())
	req := &Request{
		Identity: auth.Anonymous("10.0.0.1"),
		Text:     "How do I handle a disagreement at work?",
		Category: "conflict_resolution",
	}
	if _, err := h(context.Background(), req); err != nil {
		t.Errorf("known category rejected: %v", err)
	}
}
