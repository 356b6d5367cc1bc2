// Command eui runs the short-video production pipeline: script generation,
// scene code generation with static validation, narration, rendering and
// final assembly. Stages can be run individually or end to end.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/eui-labs/eui/internal/config"
	"github.com/eui-labs/eui/internal/pipeline"
	"github.com/eui-labs/eui/internal/utils/logger"
)

const usage = `Usage: eui <command> [flags]

Commands:
  script  generate the video script for a topic
  code    generate and type-check scene code from the script
  audio   synthesize per-scene narration from the script
  render  render validated scene code into video segments
  video   assemble segments and narration into the final video
  run     run every stage in order

Flags:
  -topic  the video topic (script, code and run)
`

func main() {
	logger.Init()

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	topic := fs.String("topic", "", "video topic")
	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing pipeline")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case "script":
		requireTopic(*topic)
		err = p.RunScript(ctx, *topic)
	case "code":
		err = p.RunCode(ctx, *topic)
	case "audio":
		err = p.RunAudio(ctx)
	case "render":
		err = p.RunRender(ctx)
	case "video":
		err = p.RunVideo(ctx)
	case "run":
		requireTopic(*topic)
		err = p.RunAll(ctx, *topic)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("pipeline stage failed")
	}
	log.Info().Str("command", command).Msg("done")
}

func requireTopic(topic string) {
	if topic == "" {
		log.Fatal().Msg("a -topic is required for this command")
	}
}
