package codegen

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eui-labs/eui/internal/checker"
	"github.com/eui-labs/eui/internal/gemini"
	"github.com/eui-labs/eui/internal/refdocs"
)

// fakeModel returns scripted completions (or an error) and records prompts.
type fakeModel struct {
	completions []string
	err         error
	prompts     []string
}

func (f *fakeModel) GenerateContent(_ context.Context, _, _ string, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	i := len(f.prompts) - 1
	if i >= len(f.completions) {
		i = len(f.completions) - 1
	}
	return f.completions[i], nil
}

// fakeChecker fails the first failures calls, then passes.
type fakeChecker struct {
	failures    int
	diagnostics string
	toolMissing bool
	calls       int
}

func (f *fakeChecker) Check(_ context.Context, _ string) checker.Result {
	f.calls++
	if f.calls <= f.failures {
		return checker.Result{Diagnostics: f.diagnostics, ToolMissing: f.toolMissing}
	}
	return checker.Result{Passed: true}
}

func newTestAgent(m gemini.GeminiInterface, c checker.CheckerInterface) *Agent {
	index := refdocs.ParseIndex("Class: Circle\n  Method: rotate(self, angle)\n")
	return NewAgent(m, c, index, testPitfalls, "gemini-test")
}

func TestGenerate_FirstAttemptSuccess(t *testing.T) {
	model := &fakeModel{completions: []string{"```python\nclass A(Scene): pass\n```"}}
	chk := &fakeChecker{}
	res := newTestAgent(model, chk).Generate(context.Background(), Task{Description: "draw a circle"})

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "class A(Scene): pass", res.Code, "fences must be stripped before checking")
	assert.Equal(t, 0, res.Retries)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, 1, chk.calls)
}

func TestGenerate_RetriesExactlyKThenPasses(t *testing.T) {
	for k := 1; k <= MaxCheckRetries; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			model := &fakeModel{completions: []string{"attempt code"}}
			chk := &fakeChecker{failures: k, diagnostics: "boom"}
			res := newTestAgent(model, chk).Generate(context.Background(), Task{Description: "draw"})

			assert.Equal(t, StatusSuccess, res.Status)
			assert.Equal(t, k, res.Retries)
			assert.Equal(t, k+1, chk.calls)
			assert.Len(t, model.prompts, k+1)
		})
	}
}

func TestGenerate_ExhaustsBudgetOnPersistentFailure(t *testing.T) {
	model := &fakeModel{completions: []string{"bad code"}}
	chk := &fakeChecker{failures: 1000, diagnostics: "still broken"}
	res := newTestAgent(model, chk).Generate(context.Background(), Task{Description: "draw"})

	assert.Equal(t, StatusFailedValidation, res.Status)
	assert.Equal(t, MaxCheckRetries+1, chk.calls, "exactly MAX_RETRIES+1 total attempts")
	assert.Equal(t, MaxCheckRetries+1, res.Retries)
	assert.Equal(t, "bad code", res.Code, "last generated code is retained")
	assert.Equal(t, "still broken", res.Diagnostics, "last diagnostics are retained")
}

func TestGenerate_CallErrorIsTerminal(t *testing.T) {
	model := &fakeModel{err: errors.New("connection reset")}
	chk := &fakeChecker{}
	res := newTestAgent(model, chk).Generate(context.Background(), Task{Description: "draw"})

	assert.Equal(t, StatusGenerationError, res.Status)
	require.Error(t, res.Err)
	assert.Empty(t, res.Code)
	assert.Equal(t, 0, chk.calls, "nothing to validate after a call error")
	assert.Len(t, model.prompts, 1, "call errors are never retried")
}

func TestGenerate_MissingAPIKeyIsDistinguishable(t *testing.T) {
	model := &fakeModel{err: gemini.ErrMissingAPIKey}
	res := newTestAgent(model, &fakeChecker{}).Generate(context.Background(), Task{Description: "draw"})

	assert.Equal(t, StatusGenerationError, res.Status)
	assert.True(t, errors.Is(res.Err, gemini.ErrMissingAPIKey),
		"configuration errors must stay identifiable through wrapping")
}

func TestGenerate_ToolMissingConsumesBudget(t *testing.T) {
	model := &fakeModel{completions: []string{"code"}}
	chk := &fakeChecker{failures: 1000, diagnostics: "Error: 'pyright' command not found.", toolMissing: true}
	res := newTestAgent(model, chk).Generate(context.Background(), Task{Description: "draw"})

	assert.Equal(t, StatusFailedValidation, res.Status)
	assert.Equal(t, MaxCheckRetries+1, chk.calls)
	assert.Contains(t, res.Diagnostics, "not found")
}

func TestGenerate_RetryPromptCarriesDiagnosticsAndDefinitions(t *testing.T) {
	model := &fakeModel{completions: []string{"first code", "second code"}}
	chk := &fakeChecker{failures: 1, diagnostics: `undefined symbol for class "Circle"`}
	res := newTestAgent(model, chk).Generate(context.Background(), Task{Description: "draw"})

	require.Equal(t, StatusSuccess, res.Status)
	require.Len(t, model.prompts, 2)

	retryPrompt := model.prompts[1]
	assert.Contains(t, retryPrompt, "first code", "failing code is embedded in the corrective prompt")
	assert.Contains(t, retryPrompt, `for class "Circle"`)
	assert.Contains(t, retryPrompt, "Method: rotate(self, angle)",
		"class definitions looked up from diagnostics are embedded")
	assert.Equal(t, 1, res.Retries)
}

func TestGenerate_RetryPromptSuppressesContinuityContext(t *testing.T) {
	model := &fakeModel{completions: []string{"first code", "second code"}}
	chk := &fakeChecker{failures: 1, diagnostics: "boom"}
	agent := newTestAgent(model, chk)
	res := agent.Generate(context.Background(), Task{Description: "draw", PriorCode: "PREVIOUS_MARKER"})

	require.Equal(t, StatusSuccess, res.Status)
	require.Len(t, model.prompts, 2)
	assert.Contains(t, model.prompts[0], "PREVIOUS_MARKER")
	assert.NotContains(t, model.prompts[1], "PREVIOUS_MARKER")
}
