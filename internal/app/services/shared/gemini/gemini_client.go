package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"claimlens-service/internal/app/config"
	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Client calls the Gemini generateContent REST endpoint with inline
// document parts. Generation settings keep output deterministic so that
// rerunning reconciliation on identical inputs yields identical results.
type Client struct {
	cfg        config.Gemini
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

func NewClient(cfg config.Gemini, log *zap.Logger) *Client {
	rpm := cfg.RequestsPerMin
	if rpm <= 0 {
		rpm = 30
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		log:        log,
	}
}

// Extract sends the task prompt plus every file as an inline part and
// returns the raw model text. Rate-limit failures are retried with
// exponential backoff before surfacing.
func (c *Client) Extract(ctx context.Context, files []models.DocumentFile, task string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", exceptions.ErrOracleSendRequest(err)
	}

	parts := make([]part, 0, len(files)+1)
	parts = append(parts, part{Text: task})
	for _, f := range files {
		parts = append(parts, part{InlineData: &inlineData{
			MIMEType: f.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(f.Data),
		}})
	}

	payload := generateRequest{
		Contents: []content{{Parts: parts}},
		GenerationConfig: generationConfig{
			Temperature:     c.cfg.Temperature,
			TopP:            c.cfg.TopP,
			TopK:            c.cfg.TopK,
			MaxOutputTokens: c.cfg.MaxOutputTokens,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", exceptions.ErrOracleCreateRequest(err)
	}

	maxRetries := c.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	baseDelay := time.Duration(c.cfg.RetryBaseSeconds) * time.Second
	if baseDelay <= 0 {
		baseDelay = 2 * time.Second
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseDelay * time.Duration(1<<(attempt-1))
			c.log.Warn("Gemini.Extract retrying after rate limit",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", exceptions.ErrOracleSendRequest(ctx.Err())
			}
		}

		text, retryable, err := c.generate(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", exceptions.ErrOracleRateLimited(lastErr)
}

func (c *Client) generate(ctx context.Context, body []byte) (string, bool, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.cfg.BaseURL, c.cfg.Model, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", false, exceptions.ErrOracleCreateRequest(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, exceptions.ErrOracleSendRequest(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, exceptions.ErrOracleSendRequest(err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", true, exceptions.ErrOracleRateLimited(fmt.Errorf("status %d: %s", resp.StatusCode, respBody))
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("status %d: %s", resp.StatusCode, respBody)
		if isQuotaError(string(respBody)) {
			return "", true, exceptions.ErrOracleRateLimited(err)
		}
		return "", false, exceptions.ErrOracleSendRequest(err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", false, exceptions.ErrOracleMalformedResponse(err)
	}
	if parsed.Error != nil {
		err := fmt.Errorf("%s: %s", parsed.Error.Status, parsed.Error.Message)
		if parsed.Error.Code == 429 || isQuotaError(parsed.Error.Message) {
			return "", true, exceptions.ErrOracleRateLimited(err)
		}
		return "", false, exceptions.ErrOracleSendRequest(err)
	}

	var sb strings.Builder
	for _, candidate := range parsed.Candidates {
		for _, p := range candidate.Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", false, exceptions.ErrOracleEmptyResponse(fmt.Errorf("no candidate text in response"))
	}
	return text, false, nil
}

func isQuotaError(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "quota") || strings.Contains(lower, "resource_exhausted") || strings.Contains(lower, "rate limit")
}
