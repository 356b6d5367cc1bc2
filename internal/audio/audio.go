// Package audio synthesizes per-scene narration through a Chatterbox-style
// HTTP text-to-speech service.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/eui-labs/eui/internal/config"
	"github.com/eui-labs/eui/internal/scriptgen"
)

type TTSInterface interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Chatterbox talks to the TTS sidecar. Synthesis of a long passage can be
// slow and the service occasionally drops connections while loading its
// model, so the client retries transient failures.
type Chatterbox struct {
	client  *retryablehttp.Client
	baseURL string
	voice   string
}

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

func NewChatterbox(cfg *config.TTSEnvConfig) (*Chatterbox, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 10 * time.Second
	client.HTTPClient.Timeout = cfg.TTSTimeout
	client.Logger = nil

	return &Chatterbox{
		client:  client,
		baseURL: cfg.TTSBaseURL,
		voice:   cfg.TTSVoice,
	}, nil
}

// Synthesize returns the encoded audio for one narration passage.
func (c *Chatterbox) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := sonic.Marshal(synthesizeRequest{Text: text, Voice: c.voice})
	if err != nil {
		return nil, fmt.Errorf("marshal synthesize request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create synthesize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("synthesize request failed")
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesize response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Int("status", resp.StatusCode).Str("body", string(payload)).Msg("synthesize non-2xx")
		return nil, fmt.Errorf("synthesize status %d: %s", resp.StatusCode, string(payload))
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("synthesize returned an empty audio payload")
	}
	return payload, nil
}

// GenerateNarration writes one audio file per scene (<scene>.mp3, numbered
// from 1) into outDir. Scenes without a usable speech string are counted as
// failures and skipped; a failed synthesis does not stop the remaining
// scenes.
func GenerateNarration(ctx context.Context, tts TTSInterface, scenes []scriptgen.Scene, outDir string) (failed int, err error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("create audio dir: %w", err)
	}

	for i, scene := range scenes {
		sceneNo := i + 1
		if strings.TrimSpace(scene.Speech) == "" {
			log.Warn().Int("scene", sceneNo).Msg("scene has no speech text, skipping narration")
			failed++
			continue
		}

		log.Info().Int("scene", sceneNo).Int("total", len(scenes)).Msg("synthesizing narration")
		payload, synthErr := tts.Synthesize(ctx, scene.Speech)
		if synthErr != nil {
			log.Error().Err(synthErr).Int("scene", sceneNo).Msg("narration synthesis failed")
			failed++
			continue
		}

		path := filepath.Join(outDir, fmt.Sprintf("%d.mp3", sceneNo))
		if writeErr := os.WriteFile(path, payload, 0o644); writeErr != nil {
			log.Error().Err(writeErr).Str("path", path).Msg("could not write narration file")
			failed++
			continue
		}
		log.Info().Str("path", path).Msg("narration written")
	}

	return failed, nil
}
