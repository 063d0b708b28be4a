package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Fingerprint is the 4-tuple (symbol, interval, name, parameters) that
// identifies a Job and its output series. Used as cache key everywhere.
type Fingerprint struct {
	Symbol   string
	Interval string
	Name     string
	Params   map[string]any
}

// Key renders the canonical textual form "symbol:interval:name:<canonical-json>".
// Canonical JSON means keys sorted lexicographically and no insignificant
// whitespace, so two fingerprints with semantically equal parameters
// produce the same key.
func (f Fingerprint) Key() string {
	return fmt.Sprintf("%s:%s:%s:%s", f.Symbol, f.Interval, f.Name, CanonicalJSON(f.Params))
}

// LeaseKey renders the key used in the external key-value cache for the
// in-flight lease: "job:<symbol>:<interval>:<kind>:<name>:<canonical-json>".
func (f Fingerprint) LeaseKey(kind IndicatorKind) string {
	return fmt.Sprintf("job:%s:%s:%s:%s:%s", f.Symbol, f.Interval, kind, f.Name, CanonicalJSON(f.Params))
}

// CanonicalJSON serialises an arbitrary JSON-shaped value with object keys
// sorted lexicographically at every level and no insignificant whitespace.
// Go's encoding/json already sorts map[string]T keys on marshal, but values
// decoded from JSON into map[string]any nest further maps that must be
// walked recursively to guarantee sorting at every depth, and re-marshalling
// a rebuilt tree avoids relying on that implementation detail holding for
// every nested shape a caller might hand in.
func CanonicalJSON(v map[string]any) string {
	if len(v) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	writeCanonical(&buf, v)
	return buf.String()
}

func writeCanonical(buf *bytes.Buffer, v any) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			buf.Write(kb)
			buf.WriteByte(':')
			writeCanonical(buf, val[k])
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, e := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonical(buf, e)
		}
		buf.WriteByte(']')
	default:
		b, _ := json.Marshal(val)
		buf.Write(b)
	}
}
