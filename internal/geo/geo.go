// Package geo computes receiver-relative geometry for position feed
// entries. Positions are projected to EPSG:3857 and measured planar,
// with the mercator scale factor taken out at the mean latitude.
package geo

import (
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Point3857 projects a WGS84 longitude/latitude to web mercator.
// Coordinates a projection cannot represent degrade to an empty point.
func Point3857(lon, lat float64) geom.Point {
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ := f(lon, lat, 0)
	point, err := geom.NewPoint(geom.Coordinates{
		XY: geom.XY{X: x, Y: y},
	})
	if err != nil {
		return geom.NewEmptyPoint(geom.DimXY)
	}
	return point
}

// RangeBearing returns the distance in kilometers and the initial
// bearing in degrees (0..360, clockwise from north) from the station
// to the target.
func RangeBearing(stationLat, stationLon, lat, lon float64) (rangeKm, bearingDeg float64) {
	from := Point3857(stationLon, stationLat)
	to := Point3857(lon, lat)

	planar, ok := geom.Distance(from.AsGeometry(), to.AsGeometry())
	if !ok {
		return 0, 0
	}

	// Mercator stretches distances by 1/cos(lat).
	midLat := (stationLat + lat) / 2 * math.Pi / 180
	rangeKm = planar * math.Cos(midLat) / 1000

	fromXY, _ := from.XY()
	toXY, _ := to.XY()
	bearingDeg = math.Atan2(toXY.X-fromXY.X, toXY.Y-fromXY.Y) * 180 / math.Pi
	if bearingDeg < 0 {
		bearingDeg += 360
	}
	return rangeKm, bearingDeg
}
