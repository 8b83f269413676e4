package llm_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kiru56776/AI-math/llm"
)

const successBody = `{"candidates":[{"content":{"role":"model","parts":[{"text":"4 😎"}]}}]}`

func newTestClient(t *testing.T, baseURL string, maxTry int, retryAll bool) *llm.GeminiClient {
	t.Helper()
	return llm.NewGeminiClient(llm.GeminiConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		Timeout:        5 * time.Second,
		MaxTryCount:    maxTry,
		RetryAllErrors: retryAll,
		BackoffUnit:    time.Millisecond,
	})
}

func textRequest(text string) llm.Request {
	return llm.BuildRequest(nil, []llm.Part{llm.TextPart(text)}, "directive", false, llm.PurposeChat)
}

func TestGenerate_Success(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(successBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 3, true)
	resp, err := c.Generate(context.Background(), textRequest("2+2?"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.Text != "4 😎" {
		t.Fatalf("answer mismatch: got %q", resp.Text)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected 1 call, got %d", n)
	}
}

func TestGenerate_RateLimitedThenSuccess(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(successBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 3, true)
	start := time.Now()
	resp, err := c.Generate(context.Background(), textRequest("2+2?"))
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.Text != "4 😎" {
		t.Fatalf("answer mismatch: got %q", resp.Text)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("expected exactly 3 calls, got %d", n)
	}
	// Backoff before attempt k is 2^k units: 1ms after attempt 0, 2ms after attempt 1.
	if elapsed < 3*time.Millisecond {
		t.Fatalf("expected total wait >= 3ms, got %v", elapsed)
	}
}

func TestGenerate_RateLimitExhaustsBudget(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 3, true)
	_, err := c.Generate(context.Background(), textRequest("hi"))
	if err == nil {
		t.Fatal("expected terminal failure")
	}
	if kind := llm.KindOf(err); kind != llm.FailureRateLimited {
		t.Fatalf("expected rate_limited, got %s", kind)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("attempts must not exceed the budget: got %d", n)
	}
}

func TestGenerate_ServerErrorRetriedThenTerminal(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 3, true)
	_, err := c.Generate(context.Background(), textRequest("hi"))
	if err == nil {
		t.Fatal("expected terminal failure")
	}
	if kind := llm.KindOf(err); kind != llm.FailureUpstream {
		t.Fatalf("expected upstream_error, got %s", kind)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("expected 3 calls, got %d", n)
	}
}

func TestGenerate_RetryAllErrorsOff_NonRateLimitIsTerminal(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 3, false)
	_, err := c.Generate(context.Background(), textRequest("hi"))
	if err == nil {
		t.Fatal("expected terminal failure")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected a single call, got %d", n)
	}
}

func TestGenerate_EmptyCandidatesNeverRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 3, true)
	_, err := c.Generate(context.Background(), textRequest("hi"))
	if err == nil {
		t.Fatal("expected empty-result failure")
	}
	if kind := llm.KindOf(err); kind != llm.FailureEmptyResult {
		t.Fatalf("expected empty_result, got %s", kind)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("empty result must not be retried: got %d calls", n)
	}
	var uf *llm.UpstreamFailure
	if !errors.As(err, &uf) {
		t.Fatalf("expected *UpstreamFailure, got %T", err)
	}
}

func TestGenerate_MalformedBodyClassifiedUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 1, true)
	_, err := c.Generate(context.Background(), textRequest("hi"))
	if err == nil {
		t.Fatal("expected failure")
	}
	if kind := llm.KindOf(err); kind != llm.FailureUpstream {
		t.Fatalf("expected upstream_error, got %s", kind)
	}
}

func TestGenerate_SourcesBlock(t *testing.T) {
	body := `{"candidates":[{
		"content":{"role":"model","parts":[{"text":"answer"}]},
		"groundingMetadata":{"groundingChunks":[
			{"web":{"uri":"https://a.example","title":"Alpha"}},
			{"web":{"uri":"","title":"NoURL"}},
			{"web":{"uri":"https://b.example","title":"Beta"}}
		]}
	}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 1, true)
	resp, err := c.Generate(context.Background(), textRequest("hi"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := "answer\n\nSources:\n1. Alpha - https://a.example\n2. Beta - https://b.example"
	if resp.Text != want {
		t.Fatalf("sources block mismatch:\ngot:  %q\nwant: %q", resp.Text, want)
	}
	if len(resp.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(resp.Citations))
	}
}

func TestGenerate_NoSourcesBlockWhenNoCitations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(successBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 1, true)
	resp, err := c.Generate(context.Background(), textRequest("hi"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.Text != "4 😎" {
		t.Fatalf("expected bare answer, got %q", resp.Text)
	}
}
