package analysis

import (
	"regexp"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

var (
	tokenizerOnce sync.Once
	tokenizer     *sentences.DefaultSentenceTokenizer
	tokenizerErr  error
)

// Init loads the shared sentence tokenizer and warms the sentiment analyzer.
// Call once at process start. Analysis still works without it: segmentation
// falls back to punctuation splitting when no tokenizer is loaded.
func Init() error {
	tokenizerOnce.Do(func() {
		tokenizer, tokenizerErr = english.NewSentenceTokenizer(nil)
	})
	scorer()
	return tokenizerErr
}

var fallbackSplit = regexp.MustCompile(`[.!?]+`)

// SplitSentences segments text into an ordered sequence of trimmed,
// non-empty sentences. The punkt tokenizer is preferred; whenever it is
// unavailable or produces nothing, a plain punctuation split takes over.
// Never panics: degenerate input yields an empty slice.
func SplitSentences(text string) []string {
	if tok := tokenizer; tok != nil {
		var out []string
		for _, s := range tok.Tokenize(text) {
			if t := strings.TrimSpace(s.Text); t != "" {
				out = append(out, t)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallbackSentences(text)
}

func fallbackSentences(text string) []string {
	var out []string
	for _, frag := range fallbackSplit.Split(text, -1) {
		if frag = strings.TrimSpace(frag); frag != "" {
			out = append(out, frag)
		}
	}
	return out
}
