package domain

import "math"

// GeoLocation is a site's position in signed decimal degrees and metres.
type GeoLocation struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Elevation float64 `json:"elevation" yaml:"elevation"`
}

// IsZero reports whether no coordinate is set.
func (g GeoLocation) IsZero() bool {
	return g == GeoLocation{}
}

// DecimalDegrees converts an IFC compound plane angle (degrees, minutes,
// seconds and optional millionths of a second) to decimal degrees. The
// sign comes from the degrees component, or from the first non-zero
// component when degrees is zero.
func DecimalDegrees(parts []int64) (float64, bool) {
	if len(parts) < 3 || len(parts) > 4 {
		return 0, false
	}

	scale := []float64{1, 60, 3600, 3.6e9}
	sign := 1.0
	for _, p := range parts {
		if p != 0 {
			if p < 0 {
				sign = -1
			}
			break
		}
	}

	var v float64
	for i, p := range parts {
		v += math.Abs(float64(p)) / scale[i]
	}
	return sign * v, true
}
