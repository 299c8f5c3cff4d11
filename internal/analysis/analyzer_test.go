package analysis_test

import (
	"reflect"
	"testing"

	"github.com/brandlens/brandlens-workflows/internal/analysis"
)

func kaysunAnalyzer() *analysis.Analyzer {
	brand := analysis.NewBrandProfile("Kaysun", "")
	registry := analysis.NewCompetitorRegistry([]analysis.CompetitorProfile{
		{Name: "PTI Plastics", Aliases: ""},
	})
	return analysis.NewAnalyzer(brand, registry)
}

func TestAnalyzeEndToEnd(t *testing.T) {
	a := kaysunAnalyzer()
	response := "PTI Plastics is well known. Kaysun also offers custom molding. Visit https://kaysun.com for more."

	result := a.Analyze("best custom molders", "OpenAI", response)

	if !result.BrandMentioned {
		t.Error("BrandMentioned = false, want true")
	}
	if result.BrandPosition != analysis.PositionMiddleThird {
		t.Errorf("BrandPosition = %v, want Middle Third", result.BrandPosition)
	}
	if result.BrandSentenceNum != 2 {
		t.Errorf("BrandSentenceNum = %d, want 2", result.BrandSentenceNum)
	}
	if result.BrandPositionPct != "66.7%" {
		t.Errorf("BrandPositionPct = %q, want 66.7%%", result.BrandPositionPct)
	}
	if !reflect.DeepEqual(result.CompetitorsFound, []string{"PTI Plastics"}) {
		t.Errorf("CompetitorsFound = %v, want [PTI Plastics]", result.CompetitorsFound)
	}
	if !reflect.DeepEqual(result.SourcesCited, []string{"https://kaysun.com"}) {
		t.Errorf("SourcesCited = %v, want [https://kaysun.com]", result.SourcesCited)
	}
	if !result.BrandURLCited {
		t.Error("BrandURLCited = false, want true")
	}
	if result.BrandedQuery {
		t.Error("BrandedQuery = true, want false for non-branded query")
	}
}

func TestAnalyzeBrandedQuery(t *testing.T) {
	a := kaysunAnalyzer()

	result := a.Analyze("is Kaysun a good molder", "Gemini", "Some response without the brand.")
	if !result.BrandedQuery {
		t.Error("BrandedQuery = false, want true")
	}
	if result.BrandMentioned {
		t.Error("BrandMentioned = true, want false")
	}
	if result.BrandPosition != analysis.PositionNotMentioned {
		t.Errorf("BrandPosition = %v, want Not Mentioned", result.BrandPosition)
	}
	if result.ContextType != analysis.ContextNotMentioned {
		t.Errorf("ContextType = %v, want Not Mentioned", result.ContextType)
	}
}

func TestAnalyzeErrorSentinel(t *testing.T) {
	a := kaysunAnalyzer()

	result := a.Analyze("best custom molders", "Perplexity", "ERROR: Kaysun mentioned inside an error from https://kaysun.com")

	if result.BrandMentioned {
		t.Error("error responses must never count as mentions")
	}
	if result.BrandPosition != analysis.PositionNotMentioned || result.BrandSentenceNum != 0 {
		t.Errorf("position = (%v, %d), want all-default", result.BrandPosition, result.BrandSentenceNum)
	}
	if result.BrandPositionPct != "N/A" {
		t.Errorf("BrandPositionPct = %q, want N/A", result.BrandPositionPct)
	}
	if result.ContextType != analysis.ContextNotMentioned || result.ContextSentiment != 0.0 {
		t.Errorf("context = (%v, %f), want all-default", result.ContextType, result.ContextSentiment)
	}
	if len(result.CompetitorsFound) != 0 || len(result.SourcesCited) != 0 {
		t.Errorf("extraction on error text: competitors=%v sources=%v, want empty", result.CompetitorsFound, result.SourcesCited)
	}
	if result.BrandURLCited {
		t.Error("BrandURLCited = true, want false")
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	a := kaysunAnalyzer()
	query := "best custom molders"
	response := "PTI Plastics is well known. Kaysun also offers custom molding. Visit https://kaysun.com for more."

	first := a.Analyze(query, "OpenAI", response)
	second := a.Analyze(query, "OpenAI", response)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Analyze differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAnalyzeNoBrandAnywhere(t *testing.T) {
	a := kaysunAnalyzer()

	result := a.Analyze("best molders", "OpenAI", "Vendors vary a lot. None stand out.")
	if result.BrandMentioned || result.BrandPosition != analysis.PositionNotMentioned ||
		result.ContextType != analysis.ContextNotMentioned {
		t.Errorf("unmentioned brand produced %+v", result)
	}
}

func TestStorageSeparators(t *testing.T) {
	competitors := []string{"PTI Plastics", "Amazon"}
	sources := []string{"https://a.com", "https://b.com/x"}

	joinedComp := analysis.JoinCompetitors(competitors)
	if joinedComp != "PTI Plastics, Amazon" {
		t.Errorf("JoinCompetitors = %q", joinedComp)
	}
	if !reflect.DeepEqual(analysis.SplitCompetitors(joinedComp), competitors) {
		t.Errorf("SplitCompetitors round trip failed: %v", analysis.SplitCompetitors(joinedComp))
	}

	joinedSrc := analysis.JoinSources(sources)
	if joinedSrc != "https://a.com,https://b.com/x" {
		t.Errorf("JoinSources = %q", joinedSrc)
	}
	if !reflect.DeepEqual(analysis.SplitSources(joinedSrc), sources) {
		t.Errorf("SplitSources round trip failed: %v", analysis.SplitSources(joinedSrc))
	}

	if analysis.JoinCompetitors(nil) != "" || analysis.SplitCompetitors("") != nil {
		t.Error("empty lists must serialize to empty strings and back to nil")
	}
}
