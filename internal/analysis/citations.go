package analysis

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
	"mvdan.cc/xurls/v2"
)

var sourcePattern = regexp.MustCompile(`https?://\S+`)

// ExtractSources returns every http(s) URL in the response, in order of
// appearance, duplicates included. This is the stored form: downstream
// consumers re-split it, so the extraction grammar must stay fixed.
func ExtractSources(text string) []string {
	if text == "" || IsErrorText(text) {
		return nil
	}
	return sourcePattern.FindAllString(text, -1)
}

// Domain parses a cited URL and returns its host with any leading "www."
// stripped. Malformed URLs report ok=false so a single bad citation never
// aborts a report.
func Domain(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www."), true
}

// RegistrableDomain reduces a host to its eTLD+1 for grouping citation
// counts ("docs.example.co.uk" -> "example.co.uk").
func RegistrableDomain(host string) string {
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}

var imageExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".bmp", ".svg", ".webp",
}

// ExtractCitations returns cleaned, deduplicated citation URLs for
// reporting. Unlike ExtractSources it uses a strict scanner, strips "www."
// and utm_* tracking parameters, and skips image links. Not used for the
// stored record.
func ExtractCitations(text string) []string {
	if text == "" || IsErrorText(text) {
		return nil
	}

	var citations []string
	seen := make(map[string]bool)

	for _, match := range xurls.Strict().FindAllString(text, -1) {
		u, err := url.Parse(strings.TrimSpace(match))
		if err != nil {
			continue
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			continue
		}

		u.Host = strings.TrimPrefix(u.Hostname(), "www.")
		q := u.Query()
		for param := range q {
			if strings.HasPrefix(strings.ToLower(param), "utm_") {
				q.Del(param)
			}
		}
		u.RawQuery = q.Encode()
		cleaned := strings.TrimRight(u.String(), "/")

		if cleaned == "" || seen[cleaned] {
			continue
		}
		if isImageLink(u.Path) {
			continue
		}

		citations = append(citations, cleaned)
		seen[cleaned] = true
	}

	return citations
}

func isImageLink(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
