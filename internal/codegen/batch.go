package codegen

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// GenerateBatch drives the retry loop once per task, in order. The last
// successfully validated code is carried into the next task as continuity
// context; any non-success resets the carry to empty so broken code is never
// propagated. Individual failures are recorded, never fatal: every task is
// attempted and the report is always complete.
func (a *Agent) GenerateBatch(ctx context.Context, tasks []Task) []SceneResult {
	results := make([]SceneResult, 0, len(tasks))
	carry := ""

	for i, task := range tasks {
		if strings.TrimSpace(task.Description) == "" {
			log.Warn().Int("scene", task.SceneNumber).Msg("scene has no animation description, skipping")
			results = append(results, SceneResult{
				SceneNumber: task.SceneNumber,
				Result:      Result{Status: StatusMissingInput},
			})
			carry = ""
			continue
		}

		log.Info().Int("scene", task.SceneNumber).Int("index", i+1).Int("total", len(tasks)).Msg("generating scene code")
		task.PriorCode = carry
		res := a.Generate(ctx, task)
		results = append(results, SceneResult{
			SceneNumber: task.SceneNumber,
			Description: task.Description,
			Result:      res,
		})

		if res.Status == StatusSuccess {
			carry = res.Code
		} else {
			carry = ""
		}
	}

	return results
}
