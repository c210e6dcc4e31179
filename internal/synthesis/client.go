package synthesis

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

	"golang.org/x/time/rate"

	"github.com/launchpad-ai/launchpad-backend/config"
)

var (
	// ErrProxyUnconfigured is returned when no proxy URL is set; callers
	// treat it like any other remote failure and fall back locally.
	ErrProxyUnconfigured = errors.New("model proxy not configured")

	// ErrEmptyCompletion marks a 2xx response whose text was blank.
	ErrEmptyCompletion = errors.New("model proxy returned empty text")
)

// Part is one element of a model request: text, or an inline base64 image.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type proxyRequest struct {
	Model    string    `json:"model"`
	Contents []content `json:"contents"`
}

type content struct {
	Parts []Part `json:"parts"`
}

type proxyResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// ProxyClient talks to the model relay. It holds no per-request timeout of
// its own; each operation passes the deadline it can afford.
type ProxyClient struct {
	baseURL string
	model   string
	client  *http.Client
	limiter *rate.Limiter
}

func NewProxyClient(cfg config.SynthesisConfig) *ProxyClient {
	rpm := cfg.RequestsPerMin
	if rpm <= 0 {
		rpm = 30
	}
	return &ProxyClient{
		baseURL: strings.TrimRight(cfg.ProxyURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm),
	}
}

// TextPart wraps a prompt string.
func TextPart(text string) Part { return Part{Text: text} }

// ImagePart converts a data URI (or bare base64 payload) into an inline
// image part.
func ImagePart(dataURI string) Part {
	mime := "image/jpeg"
	data := dataURI
	if strings.HasPrefix(dataURI, "data:") {
		if idx := strings.Index(dataURI, ","); idx > 0 {
			header := dataURI[len("data:"):idx]
			data = dataURI[idx+1:]
			if semi := strings.Index(header, ";"); semi > 0 {
				mime = header[:semi]
			} else if header != "" {
				mime = header
			}
		}
	}
	return Part{InlineData: &InlineData{MimeType: mime, Data: data}}
}

// Generate sends one completion request and returns the raw text. Rate
// limiting happens inside the same deadline as the request itself, so a
// saturated limiter surfaces as a timeout rather than an unbounded wait.
func (c *ProxyClient) Generate(ctx context.Context, timeout time.Duration, parts []Part) (string, error) {
	if c.baseURL == "" {
		return "", ErrProxyUnconfigured
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(proxyRequest{
		Model:    c.model,
		Contents: []content{{Parts: parts}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal proxy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build proxy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model proxy: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read proxy response: %w", err)
	}

	var parsed proxyResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode proxy response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 || parsed.Error != "" {
		msg := parsed.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("model proxy error (status %d): %s", resp.StatusCode, msg)
	}
	if strings.TrimSpace(parsed.Text) == "" {
		return "", ErrEmptyCompletion
	}
	return parsed.Text, nil
}
