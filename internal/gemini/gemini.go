// Package gemini provides a client for the Gemini generateContent REST API.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/eui-labs/eui/internal/config"
)

// ErrMissingAPIKey is returned before any request is attempted when no API
// key is configured. Callers treat it as a configuration failure, distinct
// from transport errors.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")

type GeminiInterface interface {
	GenerateContent(ctx context.Context, model, system, prompt string) (string, error)
}

type Gemini struct {
	cfg    *config.GeminiEnvConfig
	client *resty.Client
}

func NewGemini(cfg *config.GeminiEnvConfig) (*Gemini, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	client := resty.New().
		SetBaseURL(cfg.GeminiBaseURL).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetTimeout(cfg.RequestTimeout)

	return &Gemini{
		cfg:    cfg,
		client: client,
	}, nil
}

// GenerateContent sends a single text prompt to the given model and returns
// the first candidate's text verbatim. No semantic validation of the text is
// performed here.
func (g *Gemini) GenerateContent(ctx context.Context, model, system, prompt string) (string, error) {
	if g.cfg.GeminiAPIKey == "" {
		return "", ErrMissingAPIKey
	}

	body := GenerateContentRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: prompt}}},
		},
	}
	if system != "" {
		body.SystemInstruction = &Content{Parts: []Part{{Text: system}}}
	}

	var out GenerateContentResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", g.cfg.GeminiAPIKey).
		SetBody(body).
		SetResult(&out).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", model))
	if err != nil {
		log.Error().Err(err).Str("model", model).Msg("generate-content request failed")
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp.IsError() {
		log.Error().Int("status", resp.StatusCode()).Str("body", resp.String()).Msg("generate-content non-2xx")
		return "", fmt.Errorf("generate-content status %d: %s", resp.StatusCode(), resp.String())
	}
	if out.Error != nil {
		return "", fmt.Errorf("generate-content api error %d: %s", out.Error.Code, out.Error.Message)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generate-content returned no candidates")
	}

	text := ""
	for _, p := range out.Candidates[0].Content.Parts {
		text += p.Text
	}
	if text == "" {
		return "", fmt.Errorf("generate-content returned an empty completion")
	}
	return text, nil
}
