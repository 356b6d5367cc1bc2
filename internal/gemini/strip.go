package gemini

import "strings"

// StripFences removes a surrounding markdown code fence from a model
// completion: a leading ```<lang> or bare ``` line, a trailing ```, and a
// leftover "<lang>" language tag at the start of the body. The cleaned text
// is returned trimmed; content between the fences is untouched.
func StripFences(s, lang string) string {
	cleaned := strings.TrimSpace(s)

	if lang != "" && strings.HasPrefix(cleaned, "```"+lang) {
		cleaned = strings.TrimSpace(cleaned[len("```"+lang):])
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimSpace(cleaned[3:])
	}

	if strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimSpace(cleaned[:len(cleaned)-3])
	}

	if lang != "" {
		lower := strings.ToLower(cleaned)
		if strings.HasPrefix(lower, lang+"\n") {
			cleaned = strings.TrimLeft(cleaned[len(lang)+1:], " \t")
		} else if strings.HasPrefix(lower, lang+" ") {
			cleaned = strings.TrimLeft(cleaned[len(lang)+1:], " \t")
		}
	}

	return strings.TrimSpace(cleaned)
}
