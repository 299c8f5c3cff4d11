package analysis

import (
	"fmt"
	"strings"
)

// Position labels which third of the response the brand first appears in.
type Position string

const (
	PositionFirstThird   Position = "First Third"
	PositionMiddleThird  Position = "Middle Third"
	PositionLastThird    Position = "Last Third"
	PositionNotMentioned Position = "Not Mentioned"
)

// Context labels the tone of the sentences that mention the brand.
type Context string

const (
	ContextPositive     Context = "Positive"
	ContextNeutral      Context = "Neutral"
	ContextNegative     Context = "Negative"
	ContextNotMentioned Context = "Not Mentioned"
)

// Sentiment thresholds for bucketing a compound VADER score.
const (
	positiveThreshold = 0.1
	negativeThreshold = -0.1
)

// SentenceContext is one brand-mentioning sentence with its sentiment.
type SentenceContext struct {
	Sentence  string  `json:"sentence"`
	Sentiment float64 `json:"sentiment"`
	Context   Context `json:"context"`
}

// AnalyzePosition finds the first sentence that mentions the brand and
// buckets its relative position in the response. Returns the bucket, the
// 1-based sentence number (0 if not mentioned), and the position as a
// percentage string ("N/A" if not mentioned).
func AnalyzePosition(text string, brand *BrandProfile) (Position, int, string) {
	if text == "" || IsErrorText(text) {
		return PositionNotMentioned, 0, "N/A"
	}

	sents := SplitSentences(text)
	total := len(sents)
	if total == 0 {
		return PositionNotMentioned, 0, "N/A"
	}

	for i, sentence := range sents {
		if !containsAny(sentence, brand.patterns) {
			continue
		}
		pct := float64(i+1) / float64(total)
		pctStr := fmt.Sprintf("%.1f%%", pct*100)
		switch {
		case pct <= 1.0/3.0:
			return PositionFirstThird, i + 1, pctStr
		case pct <= 2.0/3.0:
			return PositionMiddleThird, i + 1, pctStr
		default:
			return PositionLastThird, i + 1, pctStr
		}
	}

	return PositionNotMentioned, 0, "N/A"
}

// AnalyzeContext scores every sentence that mentions the brand. The overall
// label is the context of the first matching sentence; the overall sentiment
// is the mean compound score across all matching sentences.
func AnalyzeContext(text string, brand *BrandProfile) (Context, float64, []SentenceContext) {
	if text == "" || IsErrorText(text) {
		return ContextNotMentioned, 0.0, nil
	}
	if !brand.MatchesText(text) {
		return ContextNotMentioned, 0.0, nil
	}

	var contexts []SentenceContext
	for _, sentence := range SplitSentences(text) {
		if !containsAny(sentence, brand.patterns) {
			continue
		}
		score := ScoreSentiment(sentence)
		contexts = append(contexts, SentenceContext{
			Sentence:  sentence,
			Sentiment: score,
			Context:   bucketSentiment(score),
		})
	}

	if len(contexts) == 0 {
		// Whole-text match but no sentence-level hit (pattern split across a
		// sentence boundary). Treated as neutral rather than an error.
		return ContextNeutral, 0.0, nil
	}

	var sum float64
	for _, c := range contexts {
		sum += c.Sentiment
	}
	return contexts[0].Context, sum / float64(len(contexts)), contexts
}

func bucketSentiment(score float64) Context {
	switch {
	case score >= positiveThreshold:
		return ContextPositive
	case score <= negativeThreshold:
		return ContextNegative
	default:
		return ContextNeutral
	}
}

// IsErrorText reports whether the response carries the dispatch layer's
// error sentinel instead of real content.
func IsErrorText(text string) bool {
	return strings.HasPrefix(text, "ERROR")
}
