package domain

import "strings"

// Candidate fields per logical attribute, in priority order.
var (
	NameFields    = []string{"naam", "beschrijving", "Naam", "locatie"}
	AddressFields = []string{"adres", "straat"}

	// The admin search only looks at these.
	FilterNameFields   = []string{"naam", "beschrijving"}
	FilterStreetFields = []string{"straatnaam", "straat"}
)

const (
	// UnnamedPoint is used when a feature has no name field.
	UnnamedPoint = "unnamed point"

	descriptionPrefix = "Melding voor: "
)

// Name returns the feature's display name.
func (f Feature) Name() string {
	if name := f.Properties.First(NameFields...); name != "" {
		return name
	}
	return UnnamedPoint
}

// Address composes "straatnaam huisnummer" when a street name is present,
// and otherwise falls back to adres, then straat, then "".
func (f Feature) Address() string {
	if street, ok := f.Properties.Text("straatnaam"); ok {
		number, _ := f.Properties.Text("huisnummer")
		return strings.TrimSpace(street + " " + number)
	}
	return f.Properties.First(AddressFields...)
}

// Describe builds the report description, e.g.
// "Melding voor: Fontein A (Kouter 5)".
func Describe(f Feature) string {
	desc := descriptionPrefix + f.Name()
	if addr := f.Address(); addr != "" {
		desc += " (" + addr + ")"
	}
	return desc
}

// BuildReport derives the insert payload for a report on f.
func BuildReport(f Feature, issueType string) NewReport {
	return NewReport{
		WaterpuntID: f.ResolvedID,
		IssueType:   issueType,
		Description: Describe(f),
	}
}
