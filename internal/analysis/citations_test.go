package analysis_test

import (
	"reflect"
	"testing"

	"github.com/brandlens/brandlens-workflows/internal/analysis"
)

func TestExtractSources(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			"multiple urls in order",
			"See https://example.com/page and https://brand.com",
			[]string{"https://example.com/page", "https://brand.com"},
		},
		{
			"duplicates preserved",
			"https://a.com then https://a.com again",
			[]string{"https://a.com", "https://a.com"},
		},
		{
			"http scheme",
			"Legacy link http://old.example.org/docs here",
			[]string{"http://old.example.org/docs"},
		},
		{"no urls", "Nothing cited here.", nil},
		{"empty text", "", nil},
		{"error sentinel", "ERROR: see https://status.example.com", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analysis.ExtractSources(tt.text)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ExtractSources(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestDomain(t *testing.T) {
	tests := []struct {
		url      string
		expected string
		ok       bool
	}{
		{"https://www.example.com/page", "example.com", true},
		{"http://docs.example.co.uk/a/b", "docs.example.co.uk", true},
		{"https://Example.COM", "example.com", true},
		{"not a url", "", false},
		{"://broken", "", false},
	}

	for _, tt := range tests {
		got, ok := analysis.Domain(tt.url)
		if got != tt.expected || ok != tt.ok {
			t.Errorf("Domain(%q) = (%q, %v), want (%q, %v)", tt.url, got, ok, tt.expected, tt.ok)
		}
	}
}

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		host     string
		expected string
	}{
		{"docs.example.co.uk", "example.co.uk"},
		{"example.com", "example.com"},
		{"deep.sub.example.com", "example.com"},
	}

	for _, tt := range tests {
		if got := analysis.RegistrableDomain(tt.host); got != tt.expected {
			t.Errorf("RegistrableDomain(%q) = %q, want %q", tt.host, got, tt.expected)
		}
	}
}

func TestExtractCitations(t *testing.T) {
	t.Run("cleans and dedupes", func(t *testing.T) {
		text := "See https://www.example.com/page?utm_source=chat and later https://example.com/page"
		got := analysis.ExtractCitations(text)
		expected := []string{"https://example.com/page"}
		if !reflect.DeepEqual(got, expected) {
			t.Errorf("ExtractCitations = %v, want %v", got, expected)
		}
	})

	t.Run("trailing slash removed", func(t *testing.T) {
		got := analysis.ExtractCitations("Start at https://example.com/")
		if !reflect.DeepEqual(got, []string{"https://example.com"}) {
			t.Errorf("ExtractCitations = %v, want [https://example.com]", got)
		}
	})

	t.Run("skips image links", func(t *testing.T) {
		got := analysis.ExtractCitations("Chart at https://cdn.example.com/chart.png and docs at https://example.com/docs")
		if !reflect.DeepEqual(got, []string{"https://example.com/docs"}) {
			t.Errorf("ExtractCitations = %v, want only the docs link", got)
		}
	})

	t.Run("error sentinel", func(t *testing.T) {
		if got := analysis.ExtractCitations("ERROR: https://example.com"); got != nil {
			t.Errorf("ExtractCitations on error text = %v, want nil", got)
		}
	})
}
