package codegen

import (
	"fmt"
	"strings"
)

const sectionRule = "#####################################################"

// renderPrompt assembles the generation prompt for the current attempt. It
// is a pure function of its inputs: identical state yields a byte-identical
// prompt.
//
// Section order:
//  1. retry context (failing code + diagnostics + extracted definitions),
//     present only when the current task already has a failed attempt;
//  2. otherwise continuity context from the previous scene, marked as
//     non-authoritative style reference;
//  3. the pitfalls document, always;
//  4. the task description with output-format constraints, always.
//
// Retry context and continuity context are mutually exclusive, retry wins.
func renderPrompt(pitfalls string, st attemptState) string {
	var context []string

	if st.hasFailure && st.code != "" {
		context = append(context, fmt.Sprintf(`%s
The following code was generated for the current animation description ('%s')
but failed static type checking:

Problematic Code:
'''python
%s
'''

Static Type Checker Output (Errors):
'''
%s
'''
`, sectionRule, st.description, st.code, st.diagnostics))

		if st.definitions != "" {
			context = append(context, st.definitions)
		}

		context = append(context, fmt.Sprintf(`
Please analyze these errors and the provided class definitions (if any) and
provide a corrected Manim script. Ensure the new script is complete,
runnable, and addresses these type errors.
The original animation description is: "%s"
%s`, st.description, sectionRule))
	} else if st.priorCode != "" {
		context = append(context, fmt.Sprintf(`%s
Context from a previously generated animation scene, for stylistic
continuity only. It is reference material, not part of the current task:

Previous Code:
'''python
%s
'''
%s`, sectionRule, st.priorCode, sectionRule))
	}

	context = append(context, fmt.Sprintf(`%s
Common Errors to avoid (review these carefully):
%s
%s`, sectionRule, pitfalls, sectionRule))

	return fmt.Sprintf(`%s
Generate a complete, runnable Manim Python script for the following
animation description. The script must be a single scene class inheriting
from Scene or a relevant Manim base scene class (e.g. MovingCameraScene,
ZoomedScene). Do not include any explanation, just the code inside a single
python code block. Optimize for a vertical short format, keep the animation
centered, and use only simple shapes and text.
%s
%s

%s
Current Animation Description:
%s
%s

If previous-scene code is present it may serve as the visual starting point
for this scene, but coherence with it is optional.
`, sectionRule, strings.Join(context, "\n"), sectionRule, sectionRule, st.description, sectionRule)
}
