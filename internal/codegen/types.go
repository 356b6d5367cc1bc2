// Package codegen implements the scene code generation agent: a bounded
// retry loop around the Gemini caller and the static type checker, with
// checker diagnostics fed back into each corrective prompt.
package codegen

// Status is the terminal classification of one scene's generation run.
type Status string

const (
	// StatusSuccess: code generated and the type check passed.
	StatusSuccess Status = "success"
	// StatusFailedValidation: retry budget exhausted, last code retained.
	StatusFailedValidation Status = "failed-validation"
	// StatusGenerationError: the model call itself failed (configuration,
	// network, malformed response). Never retried.
	StatusGenerationError Status = "generation-error"
	// StatusMissingInput: the scene had no animation description.
	StatusMissingInput Status = "missing-input"
)

// MaxCheckRetries bounds regeneration after the first failed type check.
// Each retry is another paid model call, so a persistently failing prompt
// must stop instead of looping.
const MaxCheckRetries = 2

// Task is one scene needing generated animation code. PriorCode carries the
// previous scene's accepted code for stylistic continuity only; the batch
// runner owns it and overwrites whatever the caller set.
type Task struct {
	SceneNumber int
	Description string
	PriorCode   string
}

// Result is the terminal outcome of one task's retry loop. Exactly one of
// these shapes holds: validated Code; Code plus exhausted-retry Diagnostics;
// or Err with no usable code. Retries counts failed type checks.
type Result struct {
	Status      Status
	Code        string
	Diagnostics string
	Retries     int
	Err         error
}

// SceneResult pairs a task with its outcome, in batch order.
type SceneResult struct {
	SceneNumber int
	Description string
	Result
}

// attemptState is the mutable record threaded through the retry loop.
// hasFailure is an explicit presence flag: diagnostics from a failed check
// are guaranteed non-empty, but "no failed attempt yet" and "failure
// consumed into the prompt" must stay distinguishable from the strings
// themselves.
type attemptState struct {
	description string
	priorCode   string
	code        string
	diagnostics string
	definitions string
	hasFailure  bool
	retries     int
}

// recordFailure stores a failed check's diagnostics and the definitions
// extracted for them. code stays as-is: diagnostics always describe exactly
// the code currently held.
func (st *attemptState) recordFailure(diagnostics, definitions string) {
	st.diagnostics = diagnostics
	st.definitions = definitions
	st.hasFailure = true
	st.retries++
}

// consumeFailure clears the failure fields once they have been spent into a
// rebuilt prompt, so stale diagnostics cannot leak into a later attempt.
func (st *attemptState) consumeFailure() {
	st.diagnostics = ""
	st.definitions = ""
	st.hasFailure = false
}
