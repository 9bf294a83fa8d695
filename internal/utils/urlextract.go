package utils

import (
	"regexp"
	"strings"
)

// urlPattern matches http(s) URLs and bare www-prefixed hosts as they appear
// in email body text. URL extraction is deliberately a simple pattern match;
// no fetching or normalization beyond trimming trailing punctuation.
var urlPattern = regexp.MustCompile(`(?i)https?://[^\s)"]+|www\.[^\s)"]+`)

// ExtractURLs returns the URLs found in text, in order of appearance, with
// trailing sentence punctuation removed. Returns nil for text without URLs.
func ExtractURLs(text string) []string {
	if text == "" {
		return nil
	}

	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		urls = append(urls, strings.TrimRight(m, ".,;:"))
	}
	return urls
}
