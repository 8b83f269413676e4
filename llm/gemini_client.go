package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kiru56776/AI-math/misc"
)

// GeminiConfig holds the knobs of the upstream client. Zero values are
// filled in by NewGeminiClient; GeminiConfigFromEnv builds one from the
// process environment.
type GeminiConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration // per-attempt HTTP timeout
	MaxTryCount    int           // total attempts (1 initial + retries)
	RetryAllErrors bool          // retry non-429 failures too
	BackoffUnit    time.Duration // wait before retry k is 2^k of these
}

// GeminiConfigFromEnv reads the client configuration from the environment.
func GeminiConfigFromEnv() GeminiConfig {
	return GeminiConfig{
		BaseURL:        misc.GetBaseURL(),
		APIKey:         misc.GetGeminiAPIKey(),
		Timeout:        time.Duration(misc.GetRequestTimeout()) * time.Second,
		MaxTryCount:    misc.GetMaxTryCount(),
		RetryAllErrors: misc.GetRetryAllErrors(),
		BackoffUnit:    time.Second,
	}
}

// GeminiClient implements Client against the generateContent REST API.
type GeminiClient struct {
	baseURL     string
	apiKey      string
	httpc       *http.Client
	maxTry      int
	retryAll    bool
	backoffUnit time.Duration
}

// NewGeminiClient creates an upstream client from the given config.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxTryCount < 1 {
		cfg.MaxTryCount = 3
	}
	if cfg.BackoffUnit <= 0 {
		cfg.BackoffUnit = time.Second
	}
	return &GeminiClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		httpc:       &http.Client{Timeout: cfg.Timeout},
		maxTry:      cfg.MaxTryCount,
		retryAll:    cfg.RetryAllErrors,
		backoffUnit: cfg.BackoffUnit,
	}
}

// --- wire shapes ---

type systemInstruction struct {
	Parts []Part `json:"parts"`
}

type geminiTool struct {
	GoogleSearch struct{} `json:"googleSearch"`
}

type geminiRequest struct {
	Contents          []Turn             `json:"contents"`
	SystemInstruction *systemInstruction `json:"systemInstruction,omitempty"`
	Tools             []geminiTool       `json:"tools,omitempty"`
}

type groundingWeb struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type groundingChunk struct {
	Web *groundingWeb `json:"web,omitempty"`
}

type groundingMetadata struct {
	GroundingChunks []groundingChunk `json:"groundingChunks"`
}

type candidate struct {
	Content struct {
		Role  string `json:"role"`
		Parts []Part `json:"parts"`
	} `json:"content"`
	GroundingMetadata *groundingMetadata `json:"groundingMetadata,omitempty"`
}

type geminiResponse struct {
	Candidates []candidate `json:"candidates"`
}

// Generate implements Client. It performs up to MaxTryCount attempts with
// pure exponential backoff between them: the wait before retry k (0-indexed)
// is 2^k backoff units, no jitter, no cap beyond the attempt budget.
// Empty-result outcomes are terminal immediately; non-429 failures are
// retried identically to rate limiting unless RetryAllErrors is off.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (Response, error) {
	var last *UpstreamFailure
	for attempt := 0; attempt < c.maxTry; attempt++ {
		resp, fail := c.doAttempt(ctx, req)
		if fail == nil {
			return resp, nil
		}
		if fail.Kind == FailureEmptyResult {
			return Response{}, fail
		}
		if fail.Kind == FailureUpstream && !c.retryAll {
			return Response{}, fail
		}
		last = fail
		misc.Debug("Generate: attempt %d/%d failed: %s", attempt+1, c.maxTry, fail.Error())
		if attempt < c.maxTry-1 {
			if err := c.waitBackoff(ctx, attempt); err != nil {
				return Response{}, &UpstreamFailure{Kind: FailureUpstream, Detail: "wait aborted: " + err.Error()}
			}
		}
	}
	return Response{}, last
}

// waitBackoff suspends only the calling goroutine for 2^attempt units,
// honouring context cancellation.
func (c *GeminiClient) waitBackoff(ctx context.Context, attempt int) error {
	timer := time.NewTimer(c.backoffUnit << uint(attempt))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *GeminiClient) doAttempt(ctx context.Context, req Request) (Response, *UpstreamFailure) {
	payload := geminiRequest{Contents: req.Contents}
	if req.SystemInstruction != "" {
		payload.SystemInstruction = &systemInstruction{Parts: []Part{TextPart(req.SystemInstruction)}}
	}
	if req.Tools {
		payload.Tools = []geminiTool{{}}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, &UpstreamFailure{Kind: FailureUpstream, Detail: "marshal request: " + err.Error()}
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, req.Model, url.QueryEscape(c.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, &UpstreamFailure{Kind: FailureUpstream, Detail: "build request: " + err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpc.Do(httpReq)
	if err != nil {
		return Response{}, &UpstreamFailure{Kind: FailureUpstream, Detail: "transport: " + err.Error()}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 4<<20))
	if err != nil {
		return Response{}, &UpstreamFailure{Kind: FailureUpstream, Status: httpResp.StatusCode, Detail: "read body: " + err.Error()}
	}
	if httpResp.StatusCode == http.StatusTooManyRequests {
		return Response{}, &UpstreamFailure{Kind: FailureRateLimited, Status: httpResp.StatusCode, Detail: truncateDetail(raw)}
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return Response{}, &UpstreamFailure{Kind: FailureUpstream, Status: httpResp.StatusCode, Detail: truncateDetail(raw)}
	}

	var decoded geminiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Response{}, &UpstreamFailure{Kind: FailureUpstream, Status: httpResp.StatusCode, Detail: "decode body: " + err.Error()}
	}
	return extractResponse(decoded)
}

// extractResponse pulls the answer text and citation metadata out of a 2xx
// response. A valid envelope with no usable candidate is an empty-result
// outcome (safety filtering and the like), not a network failure.
func extractResponse(decoded geminiResponse) (Response, *UpstreamFailure) {
	if len(decoded.Candidates) == 0 {
		return Response{}, &UpstreamFailure{Kind: FailureEmptyResult, Detail: "no candidates"}
	}
	first := decoded.Candidates[0]
	answer := ""
	for _, p := range first.Content.Parts {
		if p.Text != "" {
			answer = p.Text
			break
		}
	}
	if answer == "" {
		return Response{}, &UpstreamFailure{Kind: FailureEmptyResult, Detail: "candidate has no text part"}
	}

	citations := collectCitations(first.GroundingMetadata)
	return Response{Text: appendSources(answer, citations), Citations: citations}, nil
}

// collectCitations gathers {title, url} pairs for every attribution carrying
// both fields, preserving response order.
func collectCitations(gm *groundingMetadata) []Citation {
	if gm == nil {
		return nil
	}
	var out []Citation
	for _, chunk := range gm.GroundingChunks {
		if chunk.Web == nil || chunk.Web.Title == "" || chunk.Web.URI == "" {
			continue
		}
		out = append(out, Citation{Title: chunk.Web.Title, URL: chunk.Web.URI})
	}
	return out
}

// appendSources formats citations as a trailing Sources block.
// Omitted entirely when there are no citations.
func appendSources(answer string, citations []Citation) string {
	if len(citations) == 0 {
		return answer
	}
	var b strings.Builder
	b.WriteString(answer)
	b.WriteString("\n\nSources:")
	for i, c := range citations {
		fmt.Fprintf(&b, "\n%d. %s - %s", i+1, c.Title, c.URL)
	}
	return b.String()
}

func truncateDetail(raw []byte) string {
	const maxDetail = 512
	s := string(raw)
	if len(s) > maxDetail {
		return s[:maxDetail] + "..."
	}
	return s
}
