package bandcamp

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// firstCandidate reads the first search result in page order. It returns nil
// when the page lists no results.
func firstCandidate(doc *goquery.Document, base *url.URL) *Candidate {
	result := doc.Find("li.searchresult").First()
	if result.Length() == 0 {
		return nil
	}

	candidate := &Candidate{
		Title:  nodeText(result.Find(".heading").First()),
		Artist: nodeText(result.Find(".subhead").First()),
	}
	// Only the first anchor counts, even when it carries no href.
	if href, ok := result.Find("a").First().Attr("href"); ok {
		candidate.URL = resolveLink(base, href)
	}
	return candidate
}

func nodeText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return strings.Join(strings.Fields(sel.Text()), " ")
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
