// internal/models/models.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a tenant whose brand visibility is tracked.
type Client struct {
	ClientID     uuid.UUID  `db:"client_id" json:"client_id"`
	Name         string     `db:"name" json:"name"`
	Slug         string     `db:"slug" json:"slug"`
	BrandName    string     `db:"brand_name" json:"brand_name"`
	BrandAliases string     `db:"brand_aliases" json:"brand_aliases"` // comma-separated, may be empty
	Industry     *string    `db:"industry" json:"industry,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Competitor is one tracked competitor for a client.
type Competitor struct {
	CompetitorID uuid.UUID `db:"competitor_id" json:"competitor_id"`
	ClientID     uuid.UUID `db:"client_id" json:"client_id"`
	Name         string    `db:"name" json:"name"`
	Aliases      string    `db:"aliases" json:"aliases"` // comma-separated, may be empty
	Website      *string   `db:"website" json:"website,omitempty"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PredefinedQuery is a saved query a client re-runs on a schedule.
type PredefinedQuery struct {
	PredefinedQueryID uuid.UUID `db:"predefined_query_id" json:"predefined_query_id"`
	ClientID          uuid.UUID `db:"client_id" json:"client_id"`
	QueryText         string    `db:"query_text" json:"query_text"`
	Category          *string   `db:"category" json:"category,omitempty"`
	OrderIndex        int       `db:"order_index" json:"order_index"`
	IsActive          bool      `db:"is_active" json:"is_active"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// Query run lifecycle states.
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// QueryRun is one batch of queries dispatched at a point in time.
type QueryRun struct {
	QueryRunID       uuid.UUID  `db:"query_run_id" json:"query_run_id"`
	ClientID         uuid.UUID  `db:"client_id" json:"client_id"`
	Name             *string    `db:"name" json:"name,omitempty"`
	RunType          string     `db:"run_type" json:"run_type"` // "predefined", "custom"
	Status           string     `db:"status" json:"status"`
	TotalQueries     int        `db:"total_queries" json:"total_queries"`
	CompletedQueries int        `db:"completed_queries" json:"completed_queries"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	CompletedAt      *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// QueryResult is one analyzed LLM response inside a run. Analysis fields are
// stored flat so reporting can aggregate without re-running the pipeline.
// CompetitorsFound is joined with ", " and SourcesCited with ",". Downstream
// re-splitting depends on both separator conventions.
type QueryResult struct {
	QueryResultID    uuid.UUID `db:"query_result_id" json:"query_result_id"`
	QueryRunID       uuid.UUID `db:"query_run_id" json:"query_run_id"`
	QueryText        string    `db:"query_text" json:"query_text"`
	Source           string    `db:"source" json:"source"` // "OpenAI", "Anthropic", "Gemini", "Perplexity"
	Response         string    `db:"response" json:"response"`
	ResponseTime     float64   `db:"response_time" json:"response_time"` // seconds
	BrandMentioned   bool      `db:"brand_mentioned" json:"brand_mentioned"`
	BrandPosition    string    `db:"brand_position" json:"brand_position"`
	BrandSentenceNum int       `db:"brand_sentence_num" json:"brand_sentence_num"`
	BrandPositionPct string    `db:"brand_position_pct" json:"brand_position_pct"`
	ContextType      string    `db:"context_type" json:"context_type"`
	ContextSentiment float64   `db:"context_sentiment" json:"context_sentiment"`
	CompetitorsFound string    `db:"competitors_found" json:"competitors_found"`
	SourcesCited     string    `db:"sources_cited" json:"sources_cited"`
	BrandURLCited    bool      `db:"brand_url_cited" json:"brand_url_cited"`
	BrandedQuery     bool      `db:"branded_query" json:"branded_query"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// APIUsage tracks tokens and cost per provider call.
type APIUsage struct {
	APIUsageID   uuid.UUID  `db:"api_usage_id" json:"api_usage_id"`
	ClientID     uuid.UUID  `db:"client_id" json:"client_id"`
	QueryRunID   *uuid.UUID `db:"query_run_id" json:"query_run_id,omitempty"`
	Provider     string     `db:"provider" json:"provider"`
	Model        string     `db:"model" json:"model"`
	InputTokens  int        `db:"input_tokens" json:"input_tokens"`
	OutputTokens int        `db:"output_tokens" json:"output_tokens"`
	TotalCost    float64    `db:"total_cost" json:"total_cost"`
	Status       string     `db:"status" json:"status"` // success, error
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// ProviderResponse is what a provider call yields before analysis. Provider
// failures are folded into Response with the "ERROR:" prefix so the analysis
// pipeline can short-circuit on them.
type ProviderResponse struct {
	Query        string    `json:"query"`
	Source       string    `json:"source"`
	Response     string    `json:"response"`
	ResponseTime float64   `json:"response_time"` // seconds
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	Cost         float64   `json:"cost"`
	Timestamp    time.Time `json:"timestamp"`
}
