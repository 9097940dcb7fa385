// Package decode turns raw specification documents into a single generic
// value shape (nested map[string]any, []any and scalars) regardless of the
// source encoding. The normalizer in pkg/spec consumes exactly one input
// shape and never needs to know which format a document arrived in.
package decode

import (
	"strings"

	"canopy/pkg/domain"
)

// Supported format tags. Matching is case-insensitive and tolerant of a
// leading dot so callers can pass file extensions verbatim.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatXML  = "xml"
)

// Decode parses raw document bytes according to the format tag and returns
// the generic value. It fails with *domain.FormatError for unknown tags or
// malformed syntax; raw parser errors never escape this boundary
// undecorated. Structural checks (such as "the top level must be a
// mapping") belong to the normalizer, not here.
func Decode(data []byte, format string) (any, error) {
	tag := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	switch tag {
	case FormatYAML, "yml":
		return decodeYAML(data)
	case FormatJSON:
		return decodeJSON(data)
	case FormatXML:
		return decodeXML(data)
	default:
		return nil, &domain.FormatError{Format: format}
	}
}

// AsSequence normalizes a generic value into a proper sequence. Some
// encoders represent a single-element collection ambiguously as a bare
// scalar or bare mapping; both collapse to a one-element slice. Nil stays
// empty.
func AsSequence(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}
