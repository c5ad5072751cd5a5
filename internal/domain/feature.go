package domain

import (
	"encoding/json"
	"strconv"
)

// Point represents a WGS-84 position taken from a GeoJSON point geometry.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Properties holds the upstream attributes of a feature. Keys and value
// types vary by dataset.
type Properties map[string]any

// Text returns the string form of a scalar property. Missing keys, nulls,
// empty strings and non-scalar values (objects, arrays) report false.
func (p Properties) Text(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}

	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case bool:
		s = strconv.FormatBool(t)
	default:
		return "", false
	}

	if s == "" {
		return "", false
	}
	return s, true
}

// First returns the first present value among keys, or "" if none is set.
func (p Properties) First(keys ...string) string {
	for _, k := range keys {
		if v, ok := p.Text(k); ok {
			return v
		}
	}
	return ""
}

// Feature is one point from an open-data feature collection.
type Feature struct {
	ResolvedID string     `json:"id"`
	Source     string     `json:"source,omitempty"`
	Point      *Point     `json:"point,omitempty"`
	Properties Properties `json:"properties"`
}

// Resolve derives and stores the feature's ResolvedID.
func (f *Feature) Resolve() {
	f.ResolvedID = ResolveID(f.Properties, f.Point)
}
