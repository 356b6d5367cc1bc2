package codegen

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/eui-labs/eui/internal/checker"
	"github.com/eui-labs/eui/internal/gemini"
	"github.com/eui-labs/eui/internal/refdocs"
)

// Agent generates animation code for one scene at a time: build prompt,
// call the model, type-check, and on failure rebuild the prompt from the
// checker's own diagnostics, up to a fixed retry ceiling.
type Agent struct {
	model      gemini.GeminiInterface
	checker    checker.CheckerInterface
	index      *refdocs.Index
	pitfalls   string
	modelName  string
	maxRetries int
}

func NewAgent(model gemini.GeminiInterface, chk checker.CheckerInterface, index *refdocs.Index, pitfalls, modelName string) *Agent {
	return &Agent{
		model:      model,
		checker:    chk,
		index:      index,
		pitfalls:   pitfalls,
		modelName:  modelName,
		maxRetries: MaxCheckRetries,
	}
}

// Generate runs the retry loop for a single task until the code passes the
// type check, the model call fails, or the retry budget is exhausted. All
// terminal conditions come back as a Result, never a panic: a failed scene
// must not take down the batch.
func (a *Agent) Generate(ctx context.Context, task Task) Result {
	st := attemptState{
		description: task.Description,
		priorCode:   task.PriorCode,
	}

	for {
		prompt := renderPrompt(a.pitfalls, st)
		st.consumeFailure()

		log.Info().Int("attempt", st.retries).Str("description", truncate(task.Description, 70)).Msg("calling model")
		raw, err := a.model.GenerateContent(ctx, a.modelName, "", prompt)
		if err != nil {
			// Call failures are terminal for this task; only type-check
			// failures are retried.
			log.Error().Err(err).Msg("model call failed")
			return Result{
				Status:  StatusGenerationError,
				Retries: st.retries,
				Err:     fmt.Errorf("generate scene code: %w", err),
			}
		}
		st.code = gemini.StripFences(raw, "python")

		res := a.checker.Check(ctx, st.code)
		if res.Passed {
			log.Info().Int("failed_attempts", st.retries).Msg("scene code passed type check")
			return Result{Status: StatusSuccess, Code: st.code, Retries: st.retries}
		}

		if res.ToolMissing {
			// The missing binary will fail every retry the same way; the
			// budget is still consumed so the loop stays uniform.
			log.Warn().Msg("type checker unavailable, retrying will burn the remaining budget")
		}
		st.recordFailure(res.Diagnostics, a.index.ExtractContext(res.Diagnostics))

		if st.retries > a.maxRetries {
			log.Error().Int("max_retries", a.maxRetries).Msg("retry budget exhausted, keeping last attempt")
			return Result{
				Status:      StatusFailedValidation,
				Code:        st.code,
				Diagnostics: st.diagnostics,
				Retries:     st.retries,
			}
		}
		log.Warn().Int("attempt", st.retries).Msg("type check failed, rebuilding prompt with diagnostics")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
