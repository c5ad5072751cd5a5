package opendata

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/couchcryptid/waterpoints-service/internal/domain"
)

// Client implements catalog.FeatureSource for one GeoJSON export on the
// Stad Gent open-data portal (or any endpoint returning a FeatureCollection).
type Client struct {
	name       string
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the export at rawURL. The source name is
// taken from the dataset segment of the URL.
func NewClient(rawURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		name: DatasetName(rawURL),
		url:  rawURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Name returns the dataset name.
func (c *Client) Name() string { return c.name }

// FetchFeatures downloads and decodes the feature collection.
func (c *Client) FetchFeatures(ctx context.Context) ([]domain.Feature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "opendata: create request")
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "opendata: fetch %s", c.name)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, eris.Errorf("opendata: %s: status %d: %s", c.name, resp.StatusCode, body)
	}

	features, skipped, err := decodeFeatureCollection(resp.Body, c.name)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		c.logger.Debug("features without usable point geometry", "source", c.name, "count", skipped)
	}
	return features, nil
}

// DatasetName extracts "<dataset>" from ".../datasets/<dataset>/exports/...".
// Other URLs fall back to the host name.
func DatasetName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, p := range parts {
		if p == "datasets" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	if u.Host != "" {
		return u.Host
	}
	return rawURL
}

// GeoJSON wire types. Properties are decoded with UseNumber so numeric IDs
// keep their literal form.

type featureCollection struct {
	Features []rawFeature `json:"features"`
}

type rawFeature struct {
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

func decodeFeatureCollection(r io.Reader, source string) ([]domain.Feature, int, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var fc featureCollection
	if err := dec.Decode(&fc); err != nil {
		return nil, 0, eris.Wrapf(err, "opendata: decode %s", source)
	}

	skipped := 0
	features := make([]domain.Feature, 0, len(fc.Features))
	for _, rf := range fc.Features {
		f := domain.Feature{
			Source:     source,
			Properties: domain.Properties(rf.Properties),
			Point:      decodePoint(rf.Geometry),
		}
		if f.Properties == nil {
			f.Properties = domain.Properties{}
		}
		if f.Point == nil {
			skipped++
		}
		features = append(features, f)
	}
	return features, skipped, nil
}

// decodePoint returns the position of a Point geometry, or the first
// position of a MultiPoint. Anything else has no map position.
func decodePoint(raw json.RawMessage) *domain.Point {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var g geom.T
	if err := geojson.Unmarshal(raw, &g); err != nil {
		return nil
	}

	switch t := g.(type) {
	case *geom.Point:
		if len(t.FlatCoords()) < 2 {
			return nil
		}
		return &domain.Point{Lon: t.X(), Lat: t.Y()}
	case *geom.MultiPoint:
		if t.NumPoints() == 0 {
			return nil
		}
		p := t.Point(0)
		return &domain.Point{Lon: p.X(), Lat: p.Y()}
	default:
		return nil
	}
}
