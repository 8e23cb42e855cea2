package filter

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/go-shiori/go-readability"
)

// ReadableHTML returns a Transform that replaces the HTML payload in
// srcField with readable text in dstField, lifting the article title into
// "title" when present. The source field is removed so bulk HTML never
// reaches the caller; truncation then applies to the extracted text.
func ReadableHTML(srcField, dstField string) func(map[string]any) map[string]any {
	return func(raw map[string]any) map[string]any {
		html, ok := raw[srcField].(string)
		if !ok || html == "" {
			return raw
		}
		out := make(map[string]any, len(raw))
		for k, v := range raw {
			if k != srcField {
				out[k] = v
			}
		}

		var pageURL *url.URL
		if u, ok := raw["url"].(string); ok {
			pageURL, _ = url.Parse(u)
		}
		article, err := readability.FromReader(strings.NewReader(html), pageURL)
		if err == nil && article.Content != "" {
			out[dstField] = stripHTMLTags(article.Content)
			if article.Title != "" {
				out["title"] = article.Title
			}
		} else {
			// Fallback: just strip tags.
			out[dstField] = stripHTMLTags(html)
		}
		return out
	}
}

var (
	reScript   = regexp.MustCompile(`(?is)<script[\s\S]*?</script>`)
	reStyle    = regexp.MustCompile(`(?is)<style[\s\S]*?</style>`)
	reTags     = regexp.MustCompile(`<[^>]+>`)
	reSpaces   = regexp.MustCompile(`[ \t]+`)
	reNewlines = regexp.MustCompile(`\n{3,}`)
	reBlockEnd = regexp.MustCompile(`(?is)</(p|div|section|article|li|h[1-6])>`)
)

// stripHTMLTags removes all HTML tags and normalizes whitespace.
func stripHTMLTags(text string) string {
	text = reScript.ReplaceAllString(text, "")
	text = reStyle.ReplaceAllString(text, "")
	text = reBlockEnd.ReplaceAllString(text, "\n\n")
	text = reTags.ReplaceAllString(text, "")
	text = reSpaces.ReplaceAllString(text, " ")
	text = reNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
