package analysis

import (
	"sync"

	"github.com/jonreiter/govader"
)

var (
	scorerOnce sync.Once
	vader      *govader.SentimentIntensityAnalyzer
)

// scorer returns the process-wide VADER analyzer. The lexicon ships with the
// library, so construction never touches the network.
func scorer() *govader.SentimentIntensityAnalyzer {
	scorerOnce.Do(func() {
		vader = govader.NewSentimentIntensityAnalyzer()
	})
	return vader
}

// ScoreSentiment returns the VADER compound polarity of a sentence in [-1, 1].
func ScoreSentiment(sentence string) float64 {
	return scorer().PolarityScores(sentence).Compound
}
