package wrappers

import (
	"github.com/toolgate/toolgate/internal/engine"
	"github.com/toolgate/toolgate/internal/filter"
	"github.com/toolgate/toolgate/internal/manifest"
	"github.com/toolgate/toolgate/internal/validate"
)

// Shodan returns the OSINT lookup family. Read-only; the allow-list drops
// the bulk banner data and internal _shodan bookkeeping the API attaches.
func Shodan(fam manifest.Family) []*engine.Descriptor {
	return []*engine.Descriptor{
		{
			Server:      "shodan",
			Operation:   "host-info",
			Description: "Look up what Shodan knows about one host.",
			Input: &validate.Object{Fields: []validate.Field{
				{Name: "ip", Type: validate.String, Required: true,
					Format:      validate.FormatIP,
					Description: "IPv4 or IPv6 address to look up"},
				{Name: "minify", Type: validate.Bool,
					Description: "Skip history and banner details"},
			}},
			Filter: filter.Spec{
				Allow:         fam.Allow["host-info"],
				TextCeiling:   fam.TextCeiling,
				CharsPerToken: fam.CharsPerToken,
			},
		},
	}
}

// WebResearch returns the page-fetch family. The tool server returns raw
// HTML; the readability transform compresses it to article text before the
// truncation ceiling applies.
func WebResearch(fam manifest.Family) []*engine.Descriptor {
	return []*engine.Descriptor{
		{
			Server:      "webresearch",
			Operation:   "fetch-page",
			Description: "Fetch a page through the research server and return readable text.",
			Input: &validate.Object{Fields: []validate.Field{
				{Name: "url", Type: validate.String, Required: true,
					Format: validate.FormatURL, MaxLen: 2000,
					Description: "URL to fetch"},
				{Name: "extract_mode", Type: validate.String,
					Enum:        []string{"article", "full"},
					Description: "article (default) runs readability extraction"},
			}},
			Filter: filter.Spec{
				Allow:         fam.Allow["fetch-page"],
				TextCeiling:   fam.TextCeiling,
				CharsPerToken: fam.CharsPerToken,
				Transform:     filter.ReadableHTML("html", "text"),
			},
		},
	}
}
