// Package story calls the external generation pipeline that turns a teacher's
// request into an illustrated story plus a printable worksheet. The pipeline
// is an opaque webhook; this client only handles transport and response
// normalization.
package story

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/infra"
)

// ErrMissingWebhookURL indicates that the client was configured without a target.
var ErrMissingWebhookURL = errors.New("story: webhook url is required")

// Options configures the generation pipeline client.
type Options struct {
	WebhookURL     string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the story generation webhook.
type Client struct {
	webhookURL string
	httpClient *http.Client
	logger     *infra.Logger
}

// GenerateRequest captures the inputs for one story.
type GenerateRequest struct {
	Topic       string
	Grade       string
	Subject     string
	ImageLayout domain.ImageLayout
	RequestID   string
}

// Result is the normalized pipeline output.
type Result struct {
	StoryURL     string
	WorksheetURL string
}

type webhookPayload struct {
	Topic       string `json:"topic"`
	Grade       string `json:"grade"`
	Subject     string `json:"subject"`
	ImageFormat string `json:"image_format"`
	RequestID   string `json:"request_id,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// webhookResponse tolerates both snake_case and camelCase keys; the pipeline
// has emitted both across versions.
type webhookResponse struct {
	StoryURL      string `json:"story_url"`
	StoryURLAlt   string `json:"storyUrl"`
	SheetURL      string `json:"worksheet_url"`
	SheetURLAlt   string `json:"worksheetUrl"`
	ErrorMessage  string `json:"error"`
	DetailMessage string `json:"message"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	url := strings.TrimSpace(opts.WebhookURL)
	if url == "" {
		return nil, ErrMissingWebhookURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		webhookURL: url,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Generate invokes the pipeline once and returns the artifact URLs. Failures
// are wrapped in domain.ErrProviderFailure so callers can keep quota untouched.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, errors.New("story: topic is required")
	}
	payload := webhookPayload{
		Topic:       req.Topic,
		Grade:       req.Grade,
		Subject:     req.Subject,
		ImageFormat: string(req.ImageLayout),
		RequestID:   req.RequestID,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("story: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("story: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("story: http request: %w: %w", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("story: read response: %w: %w", domain.ErrProviderFailure, err)
	}
	c.logger.Debug().
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Str("request_id", req.RequestID).
		Msg("story: pipeline response")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("story: pipeline status %d: %s: %w", resp.StatusCode, truncate(raw, 200), domain.ErrProviderFailure)
	}

	result, err := decodeResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("story: %w: %w", err, domain.ErrProviderFailure)
	}
	return result, nil
}

// decodeResponse accepts either a bare object or a one-element array, both of
// which the pipeline has been observed to return.
func decodeResponse(raw []byte) (*Result, error) {
	trimmed := bytes.TrimSpace(raw)
	var wr webhookResponse
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var list []webhookResponse
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode array response: %w", err)
		}
		if len(list) == 0 {
			return nil, errors.New("empty array response")
		}
		wr = list[0]
	} else {
		if err := json.Unmarshal(trimmed, &wr); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	if wr.ErrorMessage != "" {
		return nil, fmt.Errorf("pipeline error: %s", wr.ErrorMessage)
	}
	storyURL := firstNonEmpty(wr.StoryURL, wr.StoryURLAlt)
	sheetURL := firstNonEmpty(wr.SheetURL, wr.SheetURLAlt)
	if storyURL == "" || sheetURL == "" {
		return nil, errors.New("response missing artifact urls")
	}
	return &Result{StoryURL: storyURL, WorksheetURL: sheetURL}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
