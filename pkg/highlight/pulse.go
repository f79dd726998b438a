package highlight

import (
	"math"
	"time"

	"github.com/matzehuels/boardview/pkg/geometry"
)

const (
	// pulsePeriod is the divisor applied to elapsed milliseconds: one full
	// pulse takes 2π·300 ms, about 1.9 s.
	pulsePeriod    = 300.0
	pulseAmplitude = 0.3

	radiusFactor = 4.0
	armFactor    = 1.5
)

// DefaultBaseSize is the marker size at the slider midpoint.
const DefaultBaseSize = 1.0

// DefaultInterval is the animation tick interval.
const DefaultInterval = 30 * time.Millisecond

// Pulse returns the size multiplier at the given elapsed time. It oscillates
// in [0.7, 1.3].
func Pulse(elapsed time.Duration) float64 {
	ms := float64(elapsed) / float64(time.Millisecond)
	return math.Sin(ms/pulsePeriod)*pulseAmplitude + 1.0
}

// Marker is a resolved highlight target in scene coordinates.
type Marker struct {
	Designator string         `json:"designator" msgpack:"designator"`
	Center     geometry.Point `json:"center" msgpack:"center"`
}

// Geometry is the drawable shape of one marker at one instant.
type Geometry struct {
	Designator string         `json:"designator" msgpack:"designator"`
	Center     geometry.Point `json:"center" msgpack:"center"`
	Radius     float64        `json:"radius" msgpack:"radius"`
	Arm        float64        `json:"arm" msgpack:"arm"` // crosshair half-length
}

// Shape computes a marker's geometry for a base size and multiplier.
func Shape(m Marker, baseSize, multiplier float64) Geometry {
	r := baseSize * radiusFactor * multiplier
	return Geometry{
		Designator: m.Designator,
		Center:     m.Center,
		Radius:     r,
		Arm:        r * armFactor,
	}
}

// RenderState returns the geometry of every marker at the given elapsed
// time.
func RenderState(markers []Marker, baseSize float64, elapsed time.Duration) []Geometry {
	mult := Pulse(elapsed)
	out := make([]Geometry, len(markers))
	for i, m := range markers {
		out[i] = Shape(m, baseSize, mult)
	}
	return out
}

// SizeFromSlider maps a 0-100 slider position to a base size. The curve is
// quadratic so the low end gives fine control: 0 → 0.08, 50 → 1, 100 → 2.94.
func SizeFromSlider(v float64) float64 {
	lin := (v + 20) / 140 * 2
	return lin * lin
}
