// Package geo holds coordinates, the route file reader and great-circle distance.
package geo

import (
	"math"
	"strconv"
)

// EarthRadiusKm is the WGS-84 equatorial radius.
const EarthRadiusKm = 6378.137

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Format renders the pair as "lat,lon" with n decimals.
func (c Coordinate) Format(n int) string {
	return strconv.FormatFloat(c.Lat, 'f', n, 64) + "," + strconv.FormatFloat(c.Lon, 'f', n, 64)
}

func (c Coordinate) String() string {
	return c.Format(6)
}

// Valid reports whether both components are finite and in range.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Distance returns the haversine distance between a and b in kilometers,
// rounded to two decimal places.
func Distance(a, b Coordinate) float64 {
	dLat := radians(a.Lat - b.Lat)
	dLon := radians(a.Lon - b.Lon)
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)

	h := math.Pow(math.Sin(dLat/2), 2) + math.Pow(math.Sin(dLon/2), 2)*(math.Cos(lat1)*math.Cos(lat2))
	// rounding can push h past 1 near antipodes
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return math.Round(EarthRadiusKm*c*100) / 100
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
