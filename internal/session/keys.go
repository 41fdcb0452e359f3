package session

// Keys names the persisted entries of a chart catalog.
type Keys struct {
	ChartIDs     string
	LastSelected string
	PointsPrefix string
}

// StandardKeys returns the documented key scheme namespaced by prefix.
func StandardKeys(prefix string) Keys {
	return Keys{
		ChartIDs:     prefix + "chart-ids",
		LastSelected: prefix + "last-selected-chart-id",
		PointsPrefix: prefix + "chart-points/",
	}
}

// LegacyKeys returns the keys written by the political-compass web page, so
// a browser-backed store shares data with it.
func LegacyKeys() Keys {
	return Keys{
		ChartIDs:     "political-compass-chart-ids",
		LastSelected: "political-compass-chart-last-selected-id",
		PointsPrefix: "political-compass-chart-points/",
	}
}

// KeysForLayout maps a configured layout name to its key set.
func KeysForLayout(layout, prefix string) (Keys, bool) {
	switch layout {
	case "", "standard":
		return StandardKeys(prefix), true
	case "legacy":
		return LegacyKeys(), true
	default:
		return Keys{}, false
	}
}

// Points returns the key holding the point list of chart id.
func (k Keys) Points(id string) string {
	return k.PointsPrefix + id
}
