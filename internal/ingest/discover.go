package ingest

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"sort"

	"github.com/PuerkitoBio/goquery"
)

// FindLatestArchive parses the export index page and returns the absolute
// URL of the newest archive matching the source's link pattern. Export
// filenames embed their date, so the lexicographically greatest match is the
// newest.
func FindLatestArchive(indexHTML []byte, baseURL, selector, pattern string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(indexHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse index page: %w", err)
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid link pattern %q: %w", pattern, err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	var matches []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !re.MatchString(href) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		matches = append(matches, base.ResolveReference(ref).String())
	})

	if len(matches) == 0 {
		return "", fmt.Errorf("no archive links matching %q on index page", pattern)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
