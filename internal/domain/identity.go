package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// FieldSetVersion identifies the candidate field lists in this package.
// Resolved IDs end up printed on stickers, so bump it whenever a list changes.
const FieldSetVersion = 1

// IDField is one candidate identifier property.
type IDField struct {
	Key string
	// ZeroIsAbsent treats "0" as no value (upstream sentinel for numeric IDs).
	ZeroIsAbsent bool
}

// IDFields lists identifier properties in resolution priority order.
var IDFields = []IDField{
	{Key: "objectid_1", ZeroIsAbsent: true},
	{Key: "crmid"},
	{Key: "objectid", ZeroIsAbsent: true},
	{Key: "recordid"},
	{Key: "agent"},
	{Key: "id"},
}

const (
	coordIDPrefix   = "loc"
	coordIDLength   = 8
	unknownIDPrefix = "unknown-"
)

// newRandomID is swapped in tests.
var newRandomID = uuid.NewString

// ResolveID derives a single identifier for a feature. It walks IDFields,
// then falls back to a coordinate-derived ID, and finally to a random
// "unknown-" ID that is NOT stable across loads. It never fails.
func ResolveID(props Properties, pt *Point) string {
	for _, f := range IDFields {
		v, ok := props.Text(f.Key)
		if !ok || (f.ZeroIsAbsent && v == "0") {
			continue
		}
		return v
	}
	if pt != nil {
		return CoordinateID(*pt)
	}
	return unknownIDPrefix + newRandomID()
}

// CoordinateID builds "loc-<lat>-<lon>" with each axis stripped of its
// decimal point and cut to 8 characters. Positions that agree on those
// characters collide.
func CoordinateID(pt Point) string {
	return fmt.Sprintf("%s-%s-%s", coordIDPrefix, coordToken(pt.Lat), coordToken(pt.Lon))
}

func coordToken(v float64) string {
	s := strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", "", 1)
	if len(s) > coordIDLength {
		s = s[:coordIDLength]
	}
	return s
}

// IsStableID reports whether id survives a reload, i.e. it did not come
// from the random fallback.
func IsStableID(id string) bool {
	return id != "" && !strings.HasPrefix(id, unknownIDPrefix)
}
