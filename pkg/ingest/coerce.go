package ingest

import (
	"fmt"
	"strings"
)

// Raw is a loosely-typed form or JSON payload as it arrives off the wire.
// Form posts deliver string and []string values; JSON posts may deliver
// native bools and arrays.
type Raw map[string]any

// String returns the trimmed string value of a field, or "".
func (r Raw) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case []string:
		if len(s) > 0 {
			return strings.TrimSpace(s[0])
		}
		return ""
	case []any:
		if len(s) > 0 {
			return strings.TrimSpace(fmt.Sprintf("%v", s[0]))
		}
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// Bool normalizes boolean-like form values. The strings "on", "true" and
// "yes" (any case) and native true are true; everything else, including an
// absent field, is false.
func (r Raw) Bool(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "on", "true", "yes":
			return true
		}
		return false
	default:
		return false
	}
}

// StringList coerces a multi-value field to a sequence: a single scalar
// becomes a one-element sequence, a repeated form key becomes a multi-element
// sequence, and absence (or an empty scalar) becomes an empty sequence.
func (r Raw) StringList(key string) []string {
	v, ok := r[key]
	if !ok || v == nil {
		return []string{}
	}
	switch s := v.(type) {
	case string:
		if strings.TrimSpace(s) == "" {
			return []string{}
		}
		return []string{strings.TrimSpace(s)}
	case []string:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if strings.TrimSpace(item) != "" {
				out = append(out, strings.TrimSpace(item))
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str := strings.TrimSpace(fmt.Sprintf("%v", item))
			if str != "" {
				out = append(out, str)
			}
		}
		return out
	default:
		return []string{strings.TrimSpace(fmt.Sprintf("%v", v))}
	}
}
