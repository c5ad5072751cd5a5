package opendata

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeGeoJSON = "application/geo+json"
	headerContentType  = "Content-Type"
)

const drinkingWaterFixture = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [3.71, 51.05]},
     "properties": {"objectid_1": 42, "naam": "Fontein A", "geo_point_2d": {"lon": 3.71, "lat": 51.05}}},
    {"type": "Feature", "geometry": {"type": "MultiPoint", "coordinates": [[3.72, 51.06]]},
     "properties": {"objectid": 0, "recordid": "9f1e"}},
    {"type": "Feature", "geometry": null, "properties": {"naam": "Zonder locatie"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [3.73, 51.07]}}
  ]
}`

func testClient(url string) *Client {
	return &Client{
		name:       "drinkwaterplekken-gent",
		url:        url,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_FetchFeatures_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.Header.Get("Accept"), "geo+json")
		w.Header().Set(headerContentType, contentTypeGeoJSON)
		_, _ = w.Write([]byte(drinkingWaterFixture))
	}))
	defer srv.Close()

	features, err := testClient(srv.URL).FetchFeatures(context.Background())
	require.NoError(t, err)
	require.Len(t, features, 4)

	first := features[0]
	assert.Equal(t, "drinkwaterplekken-gent", first.Source)
	require.NotNil(t, first.Point)
	assert.Equal(t, 3.71, first.Point.Lon)
	assert.Equal(t, 51.05, first.Point.Lat)
	id, ok := first.Properties.Text("objectid_1")
	require.True(t, ok)
	assert.Equal(t, "42", id, "numbers keep their literal form")
	_, ok = first.Properties.Text("geo_point_2d")
	assert.False(t, ok, "nested objects are not scalar")

	require.NotNil(t, features[1].Point, "first position of a MultiPoint")
	assert.Equal(t, 51.06, features[1].Point.Lat)

	assert.Nil(t, features[2].Point)
	assert.NotNil(t, features[3].Properties, "missing properties become an empty map")
	assert.Empty(t, first.ResolvedID, "resolution happens in the loader")
}

func TestClient_FetchFeatures_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"maintenance"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchFeatures(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "drinkwaterplekken-gent")
}

func TestClient_FetchFeatures_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features": [`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchFeatures(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestClient_FetchFeatures_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.FetchFeatures(context.Background())
	require.Error(t, err)
}

func TestDecodeFeatureCollection_Empty(t *testing.T) {
	features, skipped, err := decodeFeatureCollection(strings.NewReader(`{"type":"FeatureCollection","features":[]}`), "x")
	require.NoError(t, err)
	assert.Empty(t, features)
	assert.Zero(t, skipped)
}

func TestDecodePoint_UnsupportedGeometry(t *testing.T) {
	raw := []byte(`{"type":"LineString","coordinates":[[3.7,51.0],[3.8,51.1]]}`)
	assert.Nil(t, decodePoint(raw))
	assert.Nil(t, decodePoint([]byte(`{"type":"Point","coordinates":"bad"}`)))
}

func TestDatasetName(t *testing.T) {
	assert.Equal(t, "drinkwaterplekken-gent",
		DatasetName("https://data.stad.gent/api/explore/v2.1/catalog/datasets/drinkwaterplekken-gent/exports/geojson"))
	assert.Equal(t, "publiek-sanitair-gent",
		DatasetName("https://data.stad.gent/api/explore/v2.1/catalog/datasets/publiek-sanitair-gent/exports/geojson"))
	assert.Equal(t, "example.test", DatasetName("https://example.test/points.geojson"))
}

func TestNewClient(t *testing.T) {
	c := NewClient("https://data.stad.gent/api/explore/v2.1/catalog/datasets/publiek-sanitair-gent/exports/geojson", time.Second, slog.Default())
	assert.Equal(t, "publiek-sanitair-gent", c.Name())
	assert.Equal(t, time.Second, c.httpClient.Timeout)
}
