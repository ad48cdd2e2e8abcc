// StudyBuddy - Focus Scoring and Study Content Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/studybuddy

package studio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/studybuddy/internal/config"
	"github.com/tomtom215/studybuddy/internal/metrics"
	"github.com/tomtom215/studybuddy/internal/resilience"
)

// DefaultGeminiBaseURL is the public generateContent endpoint root.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// maxResponseBytes bounds a model reply.
const maxResponseBytes = 8 << 20

// Part is one piece of a prompt: text, or an inline document.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

// TextPart builds a text part.
func TextPart(s string) Part { return Part{Text: s} }

// InlinePart builds a document part.
func InlinePart(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}

// Completer sends a single-turn prompt to a language model and returns the
// text of its reply.
type Completer interface {
	Complete(ctx context.Context, parts []Part) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, parts []Part) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, parts []Part) (string, error) {
	return f(ctx, parts)
}

// Gemini request/response shapes.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string        `json:"text,omitempty"`
	InlineData *geminiInline `json:"inlineData,omitempty"`
}

type geminiInline struct {
	MIMEType string `json:"mimeType"`
	// Data is base64 encoded by the JSON encoder.
	Data []byte `json:"data"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Gemini calls the Gemini generateContent REST API.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[interface{}]
}

var _ Completer = (*Gemini)(nil)

// NewGemini builds a Gemini client from the studio configuration.
func NewGemini(cfg config.StudioConfig) *Gemini {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultGeminiBaseURL
	}
	return &Gemini{
		apiKey:  cfg.APIKey,
		model:   strings.TrimPrefix(cfg.Model, "models/"),
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: resilience.NewCircuitBreaker(resilience.BreakerConfig{
			Name:             "studio-gemini",
			Timeout:          cfg.BreakerTimeout,
			FailureThreshold: cfg.BreakerFailureThreshold,
		}),
	}
}

func (g *Gemini) buildRequest(parts []Part) geminiRequest {
	content := geminiContent{Role: "user"}
	for _, p := range parts {
		if len(p.Data) > 0 {
			content.Parts = append(content.Parts, geminiPart{
				InlineData: &geminiInline{MIMEType: p.MIMEType, Data: p.Data},
			})
			continue
		}
		content.Parts = append(content.Parts, geminiPart{Text: p.Text})
	}
	return geminiRequest{Contents: []geminiContent{content}}
}

// Complete implements Completer. Calls go through a circuit breaker; while
// it is open, Complete fails immediately with ErrUpstream.
func (g *Gemini) Complete(ctx context.Context, parts []Part) (string, error) {
	if len(parts) == 0 {
		return "", errors.New("empty prompt")
	}
	body, err := json.Marshal(g.buildRequest(parts))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	start := time.Now()
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.do(ctx, body)
	})
	metrics.RecordLLMCall(time.Since(start))
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		return "", err
	}
	return out.(string), nil
}

func (g *Gemini) do(ctx context.Context, body []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		// The URL carries the API key; report the failure without it.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", ErrUpstream, err)
	}

	var gr geminiResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("%w: status %d, undecodable body", ErrUpstream, resp.StatusCode)
	}
	if gr.Error != nil {
		return "", fmt.Errorf("%w: api error %d %s: %s", ErrUpstream, gr.Error.Code, gr.Error.Status, gr.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", ErrMalformedOutput)
	}

	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
