// Package refdocs loads the static reference material fed into generation
// prompts: the class-method index extracted from the animation library and
// the known-pitfalls document.
package refdocs

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Index maps class names to a textual block of their method and property
// signatures. The backing file is a flat listing of the form:
//
//	Class: Circle
//	  Method: rotate(self, angle)
//	  Property: radius
var (
	classHeaderRe = regexp.MustCompile(`^Class: (\S+)\s*$`)
	memberLineRe  = regexp.MustCompile(`^  (?:Method|Property): .+$`)

	forClassRe = regexp.MustCompile(`(?i)for class "([^"]+)"`)
	classRe    = regexp.MustCompile(`(?i)class "([^"]+)"`)
)

type Index struct {
	classes map[string]string
}

// LoadIndex reads and parses the class-method index file.
func LoadIndex(path string) (*Index, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read class index %s: %w", path, err)
	}
	return ParseIndex(string(content)), nil
}

// ParseIndex parses the flat class listing. Malformed lines are skipped.
func ParseIndex(content string) *Index {
	ix := &Index{classes: make(map[string]string)}

	var current string
	var members []string
	flush := func() {
		if current != "" && len(members) > 0 {
			ix.classes[current] = strings.TrimSpace(strings.Join(members, "\n"))
		}
		current = ""
		members = nil
	}

	for _, line := range strings.Split(content, "\n") {
		if m := classHeaderRe.FindStringSubmatch(line); m != nil {
			flush()
			current = m[1]
			continue
		}
		if current != "" && memberLineRe.MatchString(line) {
			members = append(members, line)
			continue
		}
		flush()
	}
	flush()

	return ix
}

// Len reports how many classes the index holds.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.classes)
}

// Lookup returns the signature block for a class name.
func (ix *Index) Lookup(name string) (string, bool) {
	if ix == nil {
		return "", false
	}
	info, ok := ix.classes[name]
	return info, ok
}

// ExtractContext scans static-checker diagnostics for class names mentioned
// in `for class "X"` / `class "X"` phrasings and returns the matching
// definitions from the index. Names with no definition are skipped. The
// result is "" when nothing is found, which is not an error: there is simply
// nothing extra to add to the retry prompt.
func (ix *Index) ExtractContext(diagnostics string) string {
	names := map[string]struct{}{}
	for _, m := range forClassRe.FindAllStringSubmatch(diagnostics, -1) {
		names[m[1]] = struct{}{}
	}
	for _, m := range classRe.FindAllStringSubmatch(diagnostics, -1) {
		names[m[1]] = struct{}{}
	}
	if len(names) == 0 {
		log.Debug().Msg("no class names found in checker diagnostics")
		return ""
	}

	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)
	log.Info().Strs("classes", sorted).Msg("looking up classes named in diagnostics")

	var parts []string
	for _, name := range sorted {
		info, ok := ix.Lookup(name)
		if !ok {
			log.Debug().Str("class", name).Msg("no definition found in class index")
			continue
		}
		parts = append(parts, fmt.Sprintf("Definition for class '%s':\n```python\n%s\n```\n", name, info))
	}
	if len(parts) == 0 {
		return ""
	}

	return "\n#####################################################\n" +
		"Relevant Class Definitions for Context:\n" +
		strings.Join(parts, "\n") +
		"#####################################################\n"
}

// LoadPitfalls reads the common-mistakes document embedded into every
// generation prompt. A missing file is tolerated with a placeholder so
// generation can still proceed.
func LoadPitfalls(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("pitfalls document not found, proceeding without it")
		return "Common error content not available."
	}
	return string(content)
}
