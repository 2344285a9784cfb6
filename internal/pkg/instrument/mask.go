package instrument

import (
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
)

const maskedValue = "***"

// Masker holds lower-cased field names whose values never reach a log sink.
type Masker map[string]struct{}

// NewMasker builds a Masker from fields plus DefaultMaskFields.
func NewMasker(fields ...string) Masker {
	fields = slices.Concat(fields, DefaultMaskFields)
	m := make(Masker, len(fields))
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			m[f] = struct{}{}
		}
	}
	return m
}

// Hides reports whether values under key are masked.
func (m Masker) Hides(key string) bool {
	_, ok := m[strings.ToLower(key)]
	return ok
}

// attr masks a, descending into groups, maps and JSON payloads.
func (m Masker) attr(a slog.Attr) slog.Attr {
	if m.Hides(a.Key) {
		return slog.String(a.Key, maskedValue)
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		group := a.Value.Group()
		out := make([]slog.Attr, len(group))
		for i, ga := range group {
			out[i] = m.attr(ga)
		}
		a.Value = slog.GroupValue(out...)
	case slog.KindString:
		if s := a.Value.String(); s != "" && (s[0] == '{' || s[0] == '[') {
			if masked, ok := m.JSON([]byte(s)); ok {
				a.Value = slog.StringValue(masked)
			}
		}
	case slog.KindAny:
		switch v := a.Value.Any().(type) {
		case map[string]any, []any:
			a.Value = slog.AnyValue(m.Data(v))
		case map[string]string:
			conv := make(map[string]any, len(v))
			for k, s := range v {
				conv[k] = s
			}
			a.Value = slog.AnyValue(m.Data(conv))
		case []byte:
			if masked, ok := m.JSON(v); ok {
				a.Value = slog.StringValue(masked)
			}
		}
	}

	return a
}

// JSON masks a JSON document. ok is false when payload is not JSON.
func (m Masker) JSON(payload []byte) (string, bool) {
	if len(payload) == 0 {
		return "", false
	}

	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return "", false
	}
	out, err := json.Marshal(m.Data(doc))
	if err != nil {
		return "", false
	}
	return string(out), true
}

// Data masks decoded JSON values: maps are walked recursively.
func (m Masker) Data(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if m.Hides(k) {
				out[k] = maskedValue
				continue
			}
			out[k] = m.Data(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = m.Data(item)
		}
		return out
	default:
		return v
	}
}
