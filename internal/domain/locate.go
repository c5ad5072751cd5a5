package domain

// Map zoom levels: the city overview and a single selected point.
const (
	DefaultZoom  = 13
	SelectedZoom = 17
)

// DefaultCenter is the Ghent city centre as [lat, lon].
var DefaultCenter = [2]float64{51.0543, 3.7174}

// MapTarget is where the map should center, as [lat, lon] plus zoom.
type MapTarget struct {
	Center [2]float64 `json:"center"`
	Zoom   int        `json:"zoom"`
}

// Locate finds the feature whose ResolvedID equals id exactly. An empty id
// or an empty feature list is a miss.
func Locate(features []Feature, id string) (Feature, bool) {
	if id == "" {
		return Feature{}, false
	}
	for _, f := range features {
		if f.ResolvedID == id {
			return f, true
		}
	}
	return Feature{}, false
}

// TargetFor returns the map target for a selected feature. Features without
// coordinates keep the city overview.
func TargetFor(f Feature) MapTarget {
	if f.Point == nil {
		return OverviewTarget()
	}
	return MapTarget{Center: [2]float64{f.Point.Lat, f.Point.Lon}, Zoom: SelectedZoom}
}

// OverviewTarget is the unselected map view.
func OverviewTarget() MapTarget {
	return MapTarget{Center: DefaultCenter, Zoom: DefaultZoom}
}
