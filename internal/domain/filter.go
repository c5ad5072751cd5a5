package domain

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
)

// SelectedQrPoint is the admin view-model for rendering one sticker.
type SelectedQrPoint struct {
	ID    string `json:"id"`
	Naam  string `json:"naam"`
	Adres string `json:"adres"`
}

// NewQrPoint builds the sticker view-model for f.
func NewQrPoint(f Feature) SelectedQrPoint {
	return SelectedQrPoint{ID: f.ResolvedID, Naam: f.Name(), Adres: f.Address()}
}

// DeepLink returns the public URL that selects the point with id.
func DeepLink(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/?id=" + url.QueryEscape(id)
}

// Filter returns the features whose name or street contains query,
// ignoring case. Callers must always pass the full catalog so narrowing
// never compounds. An empty query returns all features.
func Filter(features []Feature, query string) []Feature {
	if query == "" {
		return features
	}

	// A Caser is stateful, so each call gets its own.
	fold := cases.Fold()
	needle := fold.String(query)

	out := make([]Feature, 0, len(features))
	for _, f := range features {
		name := fold.String(f.Properties.First(FilterNameFields...))
		street := fold.String(f.Properties.First(FilterStreetFields...))
		if strings.Contains(name, needle) || strings.Contains(street, needle) {
			out = append(out, f)
		}
	}
	return out
}
