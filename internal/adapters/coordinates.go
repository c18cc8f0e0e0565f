package adapters

import "github.com/aqcollect/aq-adapters/internal/measurement"

// siteCoordinates is the fixed lookup for monitoring sites the WA results
// table reports. Sites missing from this table get no coordinates.
var siteCoordinates = map[string]measurement.Coordinates{
	"Caversham":    {Latitude: -31.922222, Longitude: 115.975278},
	"Duncraig":     {Latitude: -31.837778, Longitude: 115.781944},
	"South Lake":   {Latitude: -32.110278, Longitude: 115.839444},
	"Quinns Rocks": {Latitude: -31.676389, Longitude: 115.7025},
	"Rockingham":   {Latitude: -32.276667, Longitude: 115.739722},
	"Swanbourne":   {Latitude: -31.971111, Longitude: 115.762222},
	"Mandurah":     {Latitude: -32.522222, Longitude: 115.722778},
	"Bunbury":      {Latitude: -33.358333, Longitude: 115.651389},
	"Busselton":    {Latitude: -33.655278, Longitude: 115.345833},
	"Geraldton":    {Latitude: -28.7925, Longitude: 114.623611},
	"Albany":       {Latitude: -35.011111, Longitude: 117.8825},
	"Kalgoorlie":   {Latitude: -30.748611, Longitude: 121.471389},
	"Collie":       {Latitude: -33.360556, Longitude: 116.154444},
}

// coordinatesFor returns a copy of the fixed coordinates for a site name,
// or nil when the site is unknown.
func coordinatesFor(site string) *measurement.Coordinates {
	coords, ok := siteCoordinates[site]
	if !ok {
		return nil
	}
	return &coords
}
