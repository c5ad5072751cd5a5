package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildReport_NamedFountain(t *testing.T) {
	f := Feature{
		Properties: Properties{"objectid_1": json.Number("42"), "naam": "Fontein A"},
		Point:      &Point{Lon: 3.71, Lat: 51.05},
	}
	f.Resolve()

	got := BuildReport(f, "leak")

	assert.Equal(t, NewReport{
		WaterpuntID: "42",
		IssueType:   "leak",
		Description: "Melding voor: Fontein A",
	}, got)
}

func TestDescribe_StreetAndNumberWithoutName(t *testing.T) {
	f := Feature{Properties: Properties{"straatnaam": "Kouter", "huisnummer": "5"}}
	assert.Equal(t, "Melding voor: unnamed point (Kouter 5)", Describe(f))
}

func TestFeature_Name(t *testing.T) {
	tests := []struct {
		name  string
		props Properties
		want  string
	}{
		{"naam", Properties{"naam": "Fontein A", "beschrijving": "x"}, "Fontein A"},
		{"toilet beschrijving", Properties{"beschrijving": "Openbaar toilet Korenmarkt"}, "Openbaar toilet Korenmarkt"},
		{"capitalised Naam", Properties{"Naam": "Kraan"}, "Kraan"},
		{"locatie", Properties{"locatie": "Citadelpark"}, "Citadelpark"},
		{"empty naam skipped", Properties{"naam": "", "locatie": "Citadelpark"}, "Citadelpark"},
		{"fallback", Properties{}, UnnamedPoint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Feature{Properties: tt.props}.Name())
		})
	}
}

func TestFeature_Address(t *testing.T) {
	tests := []struct {
		name  string
		props Properties
		want  string
	}{
		{"street and number", Properties{"straatnaam": "Kouter", "huisnummer": json.Number("5")}, "Kouter 5"},
		{"street without number", Properties{"straatnaam": "Kouter"}, "Kouter"},
		{"street wins over adres", Properties{"straatnaam": "Kouter", "adres": "Elders 1"}, "Kouter"},
		{"adres", Properties{"adres": "Korenmarkt 1, 9000 Gent"}, "Korenmarkt 1, 9000 Gent"},
		{"straat", Properties{"straat": "Veldstraat"}, "Veldstraat"},
		{"none", Properties{"naam": "Fontein"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Feature{Properties: tt.props}.Address())
		})
	}
}

func TestDescribe_NameAndAddress(t *testing.T) {
	f := Feature{Properties: Properties{"beschrijving": "Toilet Sint-Pieters", "adres": "Koningin Maria Hendrikaplein"}}
	assert.Equal(t, "Melding voor: Toilet Sint-Pieters (Koningin Maria Hendrikaplein)", Describe(f))
}
