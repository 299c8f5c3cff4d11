package analysis

import "strings"

// ExtractCompetitors scans the response for word-boundary-delimited
// competitor mentions, resolving every alias to its canonical name. Returns
// canonical names in first-seen order plus the 1-based sentence number where
// each competitor's matched alias first appears.
//
// The sentence position is looked up by the literal matched text, not the
// canonical name. When a competitor has aliases spread across different
// sentences the recorded position follows whichever alias the combined scan
// hit first, which can differ from the canonical emit order.
func ExtractCompetitors(text string, registry *CompetitorRegistry) ([]string, map[string]int) {
	positions := make(map[string]int)
	if text == "" || IsErrorText(text) {
		return nil, positions
	}
	if registry == nil || registry.Empty() {
		return nil, positions
	}

	matches := registry.re.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil, positions
	}

	sents := SplitSentences(text)
	var found []string

	for _, match := range matches {
		literal := strings.ToLower(match)
		name, ok := registry.Canonical(literal)
		if !ok || containsString(found, name) {
			continue
		}
		found = append(found, name)

		for i, sentence := range sents {
			if strings.Contains(strings.ToLower(sentence), literal) {
				positions[name] = i + 1
				break
			}
		}
	}

	return found, positions
}
