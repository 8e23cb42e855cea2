// Package filter maps raw tool responses onto the minimal stable shape
// returned to callers. This is the layer that keeps a single tool call from
// blowing the calling agent's context budget: internal and bulk fields are
// dropped, unbounded text is truncated with an explicit indicator, and the
// final payload carries its own estimated token cost.
package filter

import (
	"encoding/json"

	"github.com/toolgate/toolgate/internal/schema"
)

// DefaultCharsPerToken is the character-count token approximation used when
// a family manifest does not override it.
const DefaultCharsPerToken = 4

// Spec declares how one tool's raw response is compressed. Ceilings and the
// token heuristic are per-family configuration, not hardcoded.
type Spec struct {
	// Allow is the output allow-list in emission order. Fields of the raw
	// response not named here are discarded.
	Allow []string
	// TextCeiling is the maximum length in bytes of any string field.
	// Longer values are cut to exactly this length and flagged.
	TextCeiling int
	// CharsPerToken divides the serialized payload length to estimate
	// token cost. Zero means DefaultCharsPerToken.
	CharsPerToken int
	// Transform, when set, rewrites the raw response before projection
	// (e.g. readability extraction of an HTML payload).
	Transform func(raw map[string]any) map[string]any
}

// Apply projects raw onto spec and computes the token estimate over the
// final serialized shape. The raw response is treated as untyped and
// untrusted: absent fields are defaulted to omission, never asserted.
func Apply(spec Spec, toolName string, raw map[string]any) *schema.Output {
	if spec.Transform != nil && raw != nil {
		raw = spec.Transform(raw)
	}

	fields := make(map[string]any, len(spec.Allow))
	for _, name := range spec.Allow {
		v, ok := raw[name]
		if !ok || v == nil {
			continue
		}
		if empty(v) {
			// Coerce empty collections to omission so clients never face
			// null-vs-empty ambiguity.
			continue
		}
		if s, isStr := v.(string); isStr && spec.TextCeiling > 0 && len(s) > spec.TextCeiling {
			fields[name] = s[:spec.TextCeiling]
			fields[name+"_truncated"] = true
			fields[name+"_original_length"] = len(s)
			continue
		}
		fields[name] = v
	}

	return &schema.Output{
		Tool:            toolName,
		Fields:          fields,
		EstimatedTokens: estimateTokens(fields, spec.CharsPerToken),
	}
}

// estimateTokens approximates token cost from the serialized length of the
// final field set.
func estimateTokens(fields map[string]any, charsPerToken int) int {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	b, err := json.Marshal(fields)
	if err != nil || len(b) == 0 {
		return 0
	}
	return (len(b) + charsPerToken - 1) / charsPerToken
}

func empty(v any) bool {
	switch t := v.(type) {
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case string:
		return t == ""
	default:
		return false
	}
}
