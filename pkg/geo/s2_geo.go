package geo

import (
	"github.com/golang/geo/s2"
	"github.com/lintang-b-s/bk-mincut-partitioner/pkg/datastructure"
)

func ProjectPointToLineCoord(lineA, lineB, p datastructure.Coordinate) datastructure.Coordinate {
	aS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(lineA.GetLat(), lineA.GetLon()))
	bS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(lineB.GetLat(), lineB.GetLon()))
	pS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(p.GetLat(), p.GetLon()))
	projection := s2.Project(pS2, aS2, bS2)
	projectLatLng := s2.LatLngFromPoint(projection)
	return datastructure.NewCoordinate(projectLatLng.Lat.Degrees(), projectLatLng.Lng.Degrees())
}

// PointLinePerpendicularDistance returns the distance in meter from p to the
// segment (lineA, lineB).
func PointLinePerpendicularDistance(lineA, lineB, p datastructure.Coordinate) float64 {
	projectionPoint := ProjectPointToLineCoord(lineA, lineB, p)

	dist := CalculateHaversineDistance(p.GetLat(), p.GetLon(), projectionPoint.GetLat(), projectionPoint.GetLon())

	return dist * 1000
}
