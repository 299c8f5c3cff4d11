package analysis

import "strings"

// AnalysisResult is the flat per-response record the pipeline produces.
// Immutable once returned; the caller owns and persists it.
type AnalysisResult struct {
	BrandMentioned   bool     `json:"brand_mentioned"`
	BrandPosition    Position `json:"brand_position"`
	BrandSentenceNum int      `json:"brand_sentence_num"`
	BrandPositionPct string   `json:"brand_position_pct"`
	ContextType      Context  `json:"context_type"`
	ContextSentiment float64  `json:"context_sentiment"`
	CompetitorsFound []string `json:"competitors_found"`
	SourcesCited     []string `json:"sources_cited"`
	BrandURLCited    bool     `json:"brand_url_cited"`
	BrandedQuery     bool     `json:"branded_query"`
}

// Analyzer derives visibility signals from one LLM response at a time.
// It holds only the read-only brand profile and competitor registry, so a
// single Analyzer is safe to share across the dispatch worker pool.
type Analyzer struct {
	brand    *BrandProfile
	registry *CompetitorRegistry
}

// NewAnalyzer builds the per-run analyzer from tenant configuration.
func NewAnalyzer(brand *BrandProfile, registry *CompetitorRegistry) *Analyzer {
	return &Analyzer{brand: brand, registry: registry}
}

// Brand exposes the analyzer's brand profile for callers that need the
// pattern list (reporting, URL checks).
func (a *Analyzer) Brand() *BrandProfile {
	return a.brand
}

// Analyze runs the full pipeline over one response. Pure function: no I/O,
// no mutation of inputs, identical output for identical input.
func (a *Analyzer) Analyze(query, source, response string) *AnalysisResult {
	position, sentenceNum, positionPct := AnalyzePosition(response, a.brand)
	contextType, sentiment, _ := AnalyzeContext(response, a.brand)
	competitors, _ := ExtractCompetitors(response, a.registry)
	sources := ExtractSources(response)

	brandURLCited := false
	for _, u := range sources {
		if a.brand.MatchesText(u) {
			brandURLCited = true
			break
		}
	}

	return &AnalysisResult{
		BrandMentioned:   a.brand.MatchesText(response) && !IsErrorText(response),
		BrandPosition:    position,
		BrandSentenceNum: sentenceNum,
		BrandPositionPct: positionPct,
		ContextType:      contextType,
		ContextSentiment: sentiment,
		CompetitorsFound: competitors,
		SourcesCited:     sources,
		BrandURLCited:    brandURLCited,
		BrandedQuery:     a.brand.MatchesText(query),
	}
}

// Storage-boundary separators. Competitors are joined with ", " and sources
// with ",". Downstream re-splitting depends on both conventions, so they
// must not drift.

// JoinCompetitors serializes canonical competitor names for storage.
func JoinCompetitors(names []string) string {
	return strings.Join(names, ", ")
}

// SplitCompetitors parses a stored competitor list back into names.
func SplitCompetitors(s string) []string {
	if s == "" {
		return nil
	}
	var names []string
	for _, name := range strings.Split(s, ", ") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// JoinSources serializes cited URLs for storage.
func JoinSources(urls []string) string {
	return strings.Join(urls, ",")
}

// SplitSources parses a stored source list back into URLs.
func SplitSources(s string) []string {
	if s == "" {
		return nil
	}
	var urls []string
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
