// Package config defines environment configuration structs and loaders.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type AppConfig struct {
	GeminiEnvConfig
	TTSEnvConfig
	ToolsEnvConfig
	PipelineEnvConfig
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GeminiEnvConfig configures the Gemini generation API.
type GeminiEnvConfig struct {
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	CodeModel     string `env:"EUI_CODE_MODEL" envDefault:"gemini-2.5-pro"`
	ScriptModel   string `env:"EUI_SCRIPT_MODEL" envDefault:"gemini-2.5-pro"`
	// RequestTimeout bounds a single generateContent call. The original
	// pipeline had no bound at all, which let a hung call stall the whole
	// batch; keep it generous but finite.
	RequestTimeout time.Duration `env:"GEMINI_TIMEOUT" envDefault:"5m"`
}

// TTSEnvConfig configures the Chatterbox-style text-to-speech service.
type TTSEnvConfig struct {
	TTSBaseURL string        `env:"TTS_BASE_URL" envDefault:"http://127.0.0.1:8555"`
	TTSVoice   string        `env:"TTS_VOICE"`
	TTSTimeout time.Duration `env:"TTS_TIMEOUT" envDefault:"3m"`
}

// ToolsEnvConfig names the external command-line tools the pipeline shells out to.
type ToolsEnvConfig struct {
	PyrightCmd string `env:"EUI_PYRIGHT_CMD" envDefault:"pyright"`
	ManimCmd   string `env:"EUI_MANIM_CMD" envDefault:"manim"`
	FfmpegCmd  string `env:"EUI_FFMPEG_CMD" envDefault:"ffmpeg"`
	FfprobeCmd string `env:"EUI_FFPROBE_CMD" envDefault:"ffprobe"`
	// KillGrace is how long a cancelled subprocess gets to exit on SIGTERM
	// before it is force-killed.
	KillGrace time.Duration `env:"EUI_KILL_GRACE" envDefault:"5s"`
}

// PipelineEnvConfig holds the on-disk layout of prompts, reference material
// and pipeline outputs.
type PipelineEnvConfig struct {
	PromptsDir      string `env:"EUI_PROMPTS_DIR" envDefault:"prompts"`
	ClassMethodsTxt string `env:"EUI_CLASS_METHODS" envDefault:"class_methods.txt"`
	OutDir          string `env:"EUI_OUT_DIR" envDefault:"out"`
	Environment     string `env:"ENVIRONMENT" envDefault:"dev"`
}
