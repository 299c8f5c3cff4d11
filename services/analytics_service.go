// services/analytics_service.go
package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/analysis"
	"github.com/brandlens/brandlens-workflows/internal/models"
)

// knownSources are the providers reporting breaks results down by.
var knownSources = []string{"OpenAI", "Anthropic", "Gemini", "Perplexity"}

type analyticsService struct {
	repos *RepositoryManager
}

func NewAnalyticsService(repos *RepositoryManager) AnalyticsService {
	return &analyticsService{repos: repos}
}

// SourceMentionRate is the mention rate for one provider.
type SourceMentionRate struct {
	Source         string  `json:"source"`
	MentionRate    float64 `json:"mention_rate"`
	TotalResponses int     `json:"total_responses"`
	MentionedCount int     `json:"mentioned_count"`
}

// DistributionBucket is one position or context bucket with its share.
type DistributionBucket struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CompetitorMention is one competitor's mention count across a run.
type CompetitorMention struct {
	Competitor   string  `json:"competitor"`
	MentionCount int     `json:"mention_count"`
	Percentage   float64 `json:"percentage"`
}

// GapSummary buckets queries by who showed up in the answers.
type GapSummary struct {
	ExclusiveWins    int `json:"exclusive_wins"`
	CriticalGaps     int `json:"critical_gaps"`
	CompetitiveArena int `json:"competitive_arena"`
	BlueOcean        int `json:"blue_ocean"`
	TotalQueries     int `json:"total_queries"`
}

// RunSummary is the full reporting view for one run.
type RunSummary struct {
	QueryRunID           uuid.UUID            `json:"query_run_id"`
	TotalResponses       int                  `json:"total_responses"`
	OverallMentionRate   float64              `json:"overall_mention_rate"`
	AvgResponseTime      float64              `json:"avg_response_time"`
	FirstThirdRate       float64              `json:"first_third_rate"`
	PositiveContextRate  float64              `json:"positive_context_rate"`
	MentionRatesBySource []SourceMentionRate  `json:"mention_rates_by_source"`
	PositionDistribution []DistributionBucket `json:"position_distribution"`
	ContextDistribution  []DistributionBucket `json:"context_distribution"`
	TopCompetitors       []CompetitorMention  `json:"top_competitors"`
	GapSummary           GapSummary           `json:"gap_summary"`
	BrandedCount         int                  `json:"branded_count"`
	NonBrandedCount      int                  `json:"non_branded_count"`
}

// Gap categories, ordered by urgency for the client.
const (
	GapCategoryExclusiveWin = "exclusive_win"
	GapCategoryCriticalGap  = "critical_gap"
	GapCategoryCompetitive  = "competitive"
	GapCategoryBlueOcean    = "blue_ocean"
)

// QueryGap is the per-query visibility picture across providers.
type QueryGap struct {
	Query            string   `json:"query"`
	Category         string   `json:"category"`
	BrandMentioned   bool     `json:"brand_mentioned"`
	HasCompetitors   bool     `json:"has_competitors"`
	Competitors      []string `json:"competitors"`
	MentionedSources []string `json:"mentioned_sources"`
	MissingSources   []string `json:"missing_sources"`
}

// GapAnalysis lists every query's gap category, most urgent first.
type GapAnalysis struct {
	QueryRunID   uuid.UUID   `json:"query_run_id"`
	TotalQueries int         `json:"total_queries"`
	Gaps         []*QueryGap `json:"gaps"`
}

// ComparisonRow is one row of the brand vs competitor matrix.
type ComparisonRow struct {
	Name           string  `json:"name"`
	IsBrand        bool    `json:"is_brand"`
	MentionCount   int     `json:"mention_count"`
	MentionRate    float64 `json:"mention_rate"`
	FirstThirdRate float64 `json:"first_third_rate,omitempty"`
	PositiveRate   float64 `json:"positive_rate,omitempty"`
	UniqueQueries  int     `json:"unique_queries,omitempty"`
}

// WinLoss counts per-query outcomes against the competitor set.
type WinLoss struct {
	Wins    int `json:"wins"`
	Ties    int `json:"ties"`
	Losses  int `json:"losses"`
	Neither int `json:"neither"`
}

// CompetitorComparison is the comparison matrix plus win/loss tally.
type CompetitorComparison struct {
	QueryRunID     uuid.UUID        `json:"query_run_id"`
	TotalResponses int              `json:"total_responses"`
	Comparison     []*ComparisonRow `json:"comparison"`
	WinLoss        WinLoss          `json:"win_loss"`
}

// DomainCount is one cited domain with its share of all citations.
type DomainCount struct {
	Domain     string  `json:"domain"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SourceCitationStats is the per-provider citation breakdown.
type SourceCitationStats struct {
	Source                 string  `json:"source"`
	TotalResponses         int     `json:"total_responses"`
	ResponsesWithCitations int     `json:"responses_with_citations"`
	TotalCitations         int     `json:"total_citations"`
	CitationRate           float64 `json:"citation_rate"`
}

// CitationRef is one cleaned citation with where it came from.
type CitationRef struct {
	URL    string `json:"url"`
	Source string `json:"source"`
	Query  string `json:"query"`
}

// CitationAnalysis summarizes which URLs the providers cited.
type CitationAnalysis struct {
	QueryRunID              uuid.UUID             `json:"query_run_id"`
	TotalResponses          int                   `json:"total_responses"`
	ResponsesWithCitations  int                   `json:"responses_with_citations"`
	CitationRate            float64               `json:"citation_rate"`
	TotalCitations          int                   `json:"total_citations"`
	AvgCitationsPerResponse float64               `json:"avg_citations_per_response"`
	BrandURLCitations       int                   `json:"brand_url_citations"`
	BrandCitationRate       float64               `json:"brand_citation_rate"`
	TopDomains              []DomainCount         `json:"top_domains"`
	CitationsBySource       []SourceCitationStats `json:"citations_by_source"`
	RecentCitations         []CitationRef         `json:"recent_citations"`
}

// TimeSeriesPoint is one run's metrics for trend charts.
type TimeSeriesPoint struct {
	Date           string  `json:"date"`
	MentionRate    float64 `json:"mention_rate"`
	FirstThirdRate float64 `json:"first_third_rate"`
	PositiveRate   float64 `json:"positive_rate"`
	ResponseCount  int     `json:"response_count"`
}

// SourcePoint is one run's mention rate for a single provider.
type SourcePoint struct {
	Date        string  `json:"date"`
	MentionRate float64 `json:"mention_rate"`
}

// TimeSeries is mention rate over time with a simple trend verdict.
type TimeSeries struct {
	DataPoints  []*TimeSeriesPoint        `json:"data_points"`
	BySource    map[string][]*SourcePoint `json:"by_source"`
	Trend       string                    `json:"trend"`
	TrendChange float64                   `json:"trend_change"`
}

// DashboardStats is the headline numbers for the client dashboard.
type DashboardStats struct {
	TotalQueryRuns     int     `json:"total_query_runs"`
	TotalResponses     int     `json:"total_responses"`
	OverallMentionRate float64 `json:"overall_mention_rate"`
	RecentTrend        string  `json:"recent_trend"`
	TrendChange        float64 `json:"trend_change"`
}

func (s *analyticsService) GetRunSummary(ctx context.Context, queryRunID uuid.UUID) (*RunSummary, error) {
	results, err := s.repos.QueryResultRepo.ListByRun(ctx, queryRunID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no results for run %s", queryRunID)
	}

	total := len(results)
	summary := &RunSummary{QueryRunID: queryRunID, TotalResponses: total}

	mentioned := 0
	var totalResponseTime float64
	firstThird := 0
	positive := 0
	for _, r := range results {
		if r.BrandMentioned {
			mentioned++
		}
		totalResponseTime += r.ResponseTime
		if r.BrandPosition == string(analysis.PositionFirstThird) {
			firstThird++
		}
		if r.ContextType == string(analysis.ContextPositive) {
			positive++
		}
		if r.BrandedQuery {
			summary.BrandedCount++
		} else {
			summary.NonBrandedCount++
		}
	}
	summary.OverallMentionRate = rate(mentioned, total)
	summary.AvgResponseTime = totalResponseTime / float64(total)
	summary.FirstThirdRate = rate(firstThird, total)
	summary.PositiveContextRate = rate(positive, total)

	for _, source := range knownSources {
		sourceTotal, sourceMentioned := 0, 0
		for _, r := range results {
			if r.Source != source {
				continue
			}
			sourceTotal++
			if r.BrandMentioned {
				sourceMentioned++
			}
		}
		summary.MentionRatesBySource = append(summary.MentionRatesBySource, SourceMentionRate{
			Source:         source,
			MentionRate:    rate(sourceMentioned, sourceTotal),
			TotalResponses: sourceTotal,
			MentionedCount: sourceMentioned,
		})
	}

	positions := []analysis.Position{
		analysis.PositionFirstThird, analysis.PositionMiddleThird,
		analysis.PositionLastThird, analysis.PositionNotMentioned,
	}
	for _, pos := range positions {
		count := 0
		for _, r := range results {
			if r.BrandPosition == string(pos) {
				count++
			}
		}
		summary.PositionDistribution = append(summary.PositionDistribution, DistributionBucket{
			Label: string(pos), Count: count, Percentage: rate(count, total),
		})
	}

	contexts := []analysis.Context{
		analysis.ContextPositive, analysis.ContextNeutral,
		analysis.ContextNegative, analysis.ContextNotMentioned,
	}
	for _, contextType := range contexts {
		count := 0
		for _, r := range results {
			if r.ContextType == string(contextType) {
				count++
			}
		}
		summary.ContextDistribution = append(summary.ContextDistribution, DistributionBucket{
			Label: string(contextType), Count: count, Percentage: rate(count, total),
		})
	}

	competitorCounts := countCompetitors(results)
	for _, cm := range topCompetitors(competitorCounts, 10) {
		summary.TopCompetitors = append(summary.TopCompetitors, CompetitorMention{
			Competitor:   cm.Competitor,
			MentionCount: cm.MentionCount,
			Percentage:   rate(cm.MentionCount, total),
		})
	}

	byQuery := groupByQuery(results)
	summary.GapSummary.TotalQueries = len(byQuery)
	for _, qresults := range byQuery {
		brandMentioned, hasCompetitors := queryFlags(qresults)
		switch {
		case brandMentioned && !hasCompetitors:
			summary.GapSummary.ExclusiveWins++
		case !brandMentioned && hasCompetitors:
			summary.GapSummary.CriticalGaps++
		case brandMentioned && hasCompetitors:
			summary.GapSummary.CompetitiveArena++
		default:
			summary.GapSummary.BlueOcean++
		}
	}

	return summary, nil
}

func (s *analyticsService) GetGapAnalysis(ctx context.Context, queryRunID uuid.UUID) (*GapAnalysis, error) {
	results, err := s.repos.QueryResultRepo.ListByRun(ctx, queryRunID)
	if err != nil {
		return nil, err
	}

	byQuery := groupByQuery(results)
	gaps := make([]*QueryGap, 0, len(byQuery))
	for query, qresults := range byQuery {
		brandMentioned, hasCompetitors := queryFlags(qresults)

		seen := map[string]bool{}
		var competitors []string
		var mentionedSources, missingSources []string
		for _, r := range qresults {
			for _, c := range analysis.SplitCompetitors(r.CompetitorsFound) {
				if !seen[c] {
					seen[c] = true
					competitors = append(competitors, c)
				}
			}
			if r.BrandMentioned {
				mentionedSources = append(mentionedSources, r.Source)
			} else {
				missingSources = append(missingSources, r.Source)
			}
		}

		category := GapCategoryBlueOcean
		switch {
		case brandMentioned && !hasCompetitors:
			category = GapCategoryExclusiveWin
		case !brandMentioned && hasCompetitors:
			category = GapCategoryCriticalGap
		case brandMentioned && hasCompetitors:
			category = GapCategoryCompetitive
		}

		gaps = append(gaps, &QueryGap{
			Query:            query,
			Category:         category,
			BrandMentioned:   brandMentioned,
			HasCompetitors:   hasCompetitors,
			Competitors:      competitors,
			MentionedSources: mentionedSources,
			MissingSources:   missingSources,
		})
	}

	// Most urgent categories first
	rank := map[string]int{
		GapCategoryCriticalGap:  0,
		GapCategoryCompetitive:  1,
		GapCategoryBlueOcean:    2,
		GapCategoryExclusiveWin: 3,
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		if rank[gaps[i].Category] != rank[gaps[j].Category] {
			return rank[gaps[i].Category] < rank[gaps[j].Category]
		}
		return gaps[i].Query < gaps[j].Query
	})

	return &GapAnalysis{
		QueryRunID:   queryRunID,
		TotalQueries: len(gaps),
		Gaps:         gaps,
	}, nil
}

func (s *analyticsService) GetCompetitorComparison(ctx context.Context, queryRunID uuid.UUID) (*CompetitorComparison, error) {
	results, err := s.repos.QueryResultRepo.ListByRun(ctx, queryRunID)
	if err != nil {
		return nil, err
	}

	run, err := s.repos.QueryRunRepo.GetByID(ctx, queryRunID)
	if err != nil {
		return nil, err
	}
	client, err := s.repos.ClientRepo.GetByID(ctx, run.ClientID)
	if err != nil {
		return nil, err
	}

	total := len(results)
	brandMentions, brandFirstThird, brandPositive := 0, 0, 0
	competitorMentions := map[string]int{}
	competitorQueries := map[string]map[string]bool{}
	for _, r := range results {
		if r.BrandMentioned {
			brandMentions++
		}
		if r.BrandPosition == string(analysis.PositionFirstThird) {
			brandFirstThird++
		}
		if r.ContextType == string(analysis.ContextPositive) {
			brandPositive++
		}
		for _, c := range analysis.SplitCompetitors(r.CompetitorsFound) {
			competitorMentions[c]++
			if competitorQueries[c] == nil {
				competitorQueries[c] = map[string]bool{}
			}
			competitorQueries[c][r.QueryText] = true
		}
	}

	comparison := []*ComparisonRow{{
		Name:           client.BrandName,
		IsBrand:        true,
		MentionCount:   brandMentions,
		MentionRate:    rate(brandMentions, total),
		FirstThirdRate: rate(brandFirstThird, total),
		PositiveRate:   rate(brandPositive, total),
	}}
	for _, cm := range topCompetitors(competitorMentions, len(competitorMentions)) {
		comparison = append(comparison, &ComparisonRow{
			Name:          cm.Competitor,
			MentionCount:  cm.MentionCount,
			MentionRate:   rate(cm.MentionCount, total),
			UniqueQueries: len(competitorQueries[cm.Competitor]),
		})
	}

	var winLoss WinLoss
	for _, qresults := range groupByQuery(results) {
		brandMentioned, hasCompetitors := queryFlags(qresults)
		switch {
		case brandMentioned && !hasCompetitors:
			winLoss.Wins++
		case brandMentioned && hasCompetitors:
			winLoss.Ties++
		case !brandMentioned && hasCompetitors:
			winLoss.Losses++
		default:
			winLoss.Neither++
		}
	}

	return &CompetitorComparison{
		QueryRunID:     queryRunID,
		TotalResponses: total,
		Comparison:     comparison,
		WinLoss:        winLoss,
	}, nil
}

func (s *analyticsService) GetCitationAnalysis(ctx context.Context, queryRunID uuid.UUID) (*CitationAnalysis, error) {
	results, err := s.repos.QueryResultRepo.ListByRun(ctx, queryRunID)
	if err != nil {
		return nil, err
	}

	total := len(results)
	ca := &CitationAnalysis{QueryRunID: queryRunID, TotalResponses: total}

	domainCounts := map[string]int{}
	citationsBySource := map[string]int{}
	responsesBySource := map[string]int{}
	responsesWithBySource := map[string]int{}

	for _, r := range results {
		responsesBySource[r.Source]++

		urls := analysis.SplitSources(r.SourcesCited)
		if len(urls) > 0 {
			ca.ResponsesWithCitations++
			ca.TotalCitations += len(urls)
			citationsBySource[r.Source] += len(urls)
			responsesWithBySource[r.Source]++
			// Group subdomains under their registrable domain
			for _, u := range urls {
				if domain, ok := analysis.Domain(u); ok {
					domainCounts[analysis.RegistrableDomain(domain)]++
				}
			}
		}
		if r.BrandURLCited {
			ca.BrandURLCitations++
		}

		if len(ca.RecentCitations) < 20 {
			for _, u := range analysis.ExtractCitations(r.Response) {
				if len(ca.RecentCitations) == 20 {
					break
				}
				ca.RecentCitations = append(ca.RecentCitations, CitationRef{
					URL:    u,
					Source: r.Source,
					Query:  r.QueryText,
				})
			}
		}
	}

	ca.CitationRate = round1(rate(ca.ResponsesWithCitations, total))
	ca.BrandCitationRate = round1(rate(ca.BrandURLCitations, total))
	if total > 0 {
		ca.AvgCitationsPerResponse = math.Round(float64(ca.TotalCitations)/float64(total)*100) / 100
	}

	type domainEntry struct {
		domain string
		count  int
	}
	entries := make([]domainEntry, 0, len(domainCounts))
	for domain, count := range domainCounts {
		entries = append(entries, domainEntry{domain, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].domain < entries[j].domain
	})
	if len(entries) > 15 {
		entries = entries[:15]
	}
	for _, e := range entries {
		ca.TopDomains = append(ca.TopDomains, DomainCount{
			Domain:     e.domain,
			Count:      e.count,
			Percentage: rate(e.count, ca.TotalCitations),
		})
	}

	for _, source := range knownSources {
		ca.CitationsBySource = append(ca.CitationsBySource, SourceCitationStats{
			Source:                 source,
			TotalResponses:         responsesBySource[source],
			ResponsesWithCitations: responsesWithBySource[source],
			TotalCitations:         citationsBySource[source],
			CitationRate:           rate(citationsBySource[source], responsesBySource[source]),
		})
	}

	return ca, nil
}

func (s *analyticsService) GetTimeSeries(ctx context.Context, clientID uuid.UUID, days int) (*TimeSeries, error) {
	runs, err := s.repos.QueryRunRepo.ListByClient(ctx, clientID, 365)
	if err != nil {
		return nil, err
	}

	series := &TimeSeries{Trend: "stable", BySource: map[string][]*SourcePoint{}}

	// ListByClient returns newest first; charts want oldest first
	for i := len(runs) - 1; i >= 0; i-- {
		run := runs[i]
		if run.Status != models.RunStatusCompleted {
			continue
		}
		if ageDays(run) > days {
			continue
		}

		results, err := s.repos.QueryResultRepo.ListByRun(ctx, run.QueryRunID)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			continue
		}

		total := len(results)
		mentioned, firstThird, positive := 0, 0, 0
		for _, r := range results {
			if r.BrandMentioned {
				mentioned++
			}
			if r.BrandPosition == string(analysis.PositionFirstThird) {
				firstThird++
			}
			if r.ContextType == string(analysis.ContextPositive) {
				positive++
			}
		}

		date := run.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
		series.DataPoints = append(series.DataPoints, &TimeSeriesPoint{
			Date:           date,
			MentionRate:    round1(rate(mentioned, total)),
			FirstThirdRate: round1(rate(firstThird, total)),
			PositiveRate:   round1(rate(positive, total)),
			ResponseCount:  total,
		})

		for _, source := range knownSources {
			sourceTotal, sourceMentioned := 0, 0
			for _, r := range results {
				if r.Source != source {
					continue
				}
				sourceTotal++
				if r.BrandMentioned {
					sourceMentioned++
				}
			}
			if sourceTotal > 0 {
				series.BySource[source] = append(series.BySource[source], &SourcePoint{
					Date:        date,
					MentionRate: round1(rate(sourceMentioned, sourceTotal)),
				})
			}
		}
	}

	if len(series.DataPoints) >= 2 {
		first := series.DataPoints[0].MentionRate
		last := series.DataPoints[len(series.DataPoints)-1].MentionRate
		series.TrendChange = round1(last - first)
		if series.TrendChange > 2 {
			series.Trend = "up"
		} else if series.TrendChange < -2 {
			series.Trend = "down"
		}
	}

	return series, nil
}

func (s *analyticsService) GetDashboardStats(ctx context.Context, clientID uuid.UUID) (*DashboardStats, error) {
	runs, err := s.repos.QueryRunRepo.ListByClient(ctx, clientID, 365)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{RecentTrend: "stable"}

	totalMentioned := 0
	var recentRates []float64
	for _, run := range runs {
		if run.Status != models.RunStatusCompleted {
			continue
		}
		stats.TotalQueryRuns++

		results, err := s.repos.QueryResultRepo.ListByRun(ctx, run.QueryRunID)
		if err != nil {
			return nil, err
		}
		stats.TotalResponses += len(results)
		mentioned := 0
		for _, r := range results {
			if r.BrandMentioned {
				mentioned++
			}
		}
		totalMentioned += mentioned

		// runs arrive newest first; keep the two most recent rates
		if len(recentRates) < 2 && len(results) > 0 {
			recentRates = append(recentRates, rate(mentioned, len(results)))
		}
	}

	stats.OverallMentionRate = round1(rate(totalMentioned, stats.TotalResponses))
	if len(recentRates) == 2 {
		stats.TrendChange = round1(recentRates[0] - recentRates[1])
		if stats.TrendChange > 2 {
			stats.RecentTrend = "up"
		} else if stats.TrendChange < -2 {
			stats.RecentTrend = "down"
		}
	}

	return stats, nil
}

func ageDays(run *models.QueryRun) int {
	return int(time.Since(run.CreatedAt).Hours() / 24)
}

func rate(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func groupByQuery(results []*models.QueryResult) map[string][]*models.QueryResult {
	byQuery := map[string][]*models.QueryResult{}
	for _, r := range results {
		byQuery[r.QueryText] = append(byQuery[r.QueryText], r)
	}
	return byQuery
}

func queryFlags(results []*models.QueryResult) (brandMentioned, hasCompetitors bool) {
	for _, r := range results {
		if r.BrandMentioned {
			brandMentioned = true
		}
		if strings.TrimSpace(r.CompetitorsFound) != "" {
			hasCompetitors = true
		}
	}
	return brandMentioned, hasCompetitors
}

func countCompetitors(results []*models.QueryResult) map[string]int {
	counts := map[string]int{}
	for _, r := range results {
		for _, c := range analysis.SplitCompetitors(r.CompetitorsFound) {
			counts[c]++
		}
	}
	return counts
}

func topCompetitors(counts map[string]int, limit int) []CompetitorMention {
	mentions := make([]CompetitorMention, 0, len(counts))
	for competitor, count := range counts {
		mentions = append(mentions, CompetitorMention{Competitor: competitor, MentionCount: count})
	}
	sort.Slice(mentions, func(i, j int) bool {
		if mentions[i].MentionCount != mentions[j].MentionCount {
			return mentions[i].MentionCount > mentions[j].MentionCount
		}
		return mentions[i].Competitor < mentions[j].Competitor
	})
	if len(mentions) > limit {
		mentions = mentions[:limit]
	}
	return mentions
}
