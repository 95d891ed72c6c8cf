package provider

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/fredseries/internal/errs"
)

// MinPayloadLen is the shortest body treated as data. Anything shorter
// cannot hold a header and one row.
const MinPayloadLen = 10

// CheckPayload rejects bodies that cannot be tabular data: empty or too
// short, or an HTML page served in place of CSV.
func CheckPayload(seriesID, text string) error {
	if len(text) < MinPayloadLen {
		return errs.New(errs.KindMalformedPayload, "series '%s' returned no data", seriesID)
	}
	if IsHTML(text) {
		return errs.Wrap(errs.KindMalformedPayload, fmt.Errorf("received HTML page %q", htmlTitle(text)),
			"series '%s' not found or invalid", seriesID)
	}
	return nil
}

// IsHTML reports whether text looks like an HTML document.
func IsHTML(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return strings.HasPrefix(t, "<!doctype") || strings.HasPrefix(t, "<html")
}

// htmlTitle extracts the page title of an HTML error page.
func htmlTitle(text string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
