package prediction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func boxCorners(b Box) []Point {
	cos, sin := math.Cos(b.Heading), math.Sin(b.Heading)
	var pts []Point
	for _, sa := range []float64{-0.5, 0.5} {
		for _, sc := range []float64{-0.5, 0.5} {
			for _, sz := range []float64{-0.5, 0.5} {
				along := sa * b.Length
				across := sc * b.Width
				pts = append(pts, Point{
					X: b.CenterX + along*cos - across*sin,
					Y: b.CenterY + along*sin + across*cos,
					Z: b.CenterZ + sz*b.Height,
				})
			}
		}
	}
	return pts
}

func TestEstimateBox_RecoversRotatedBox(t *testing.T) {
	want := Box{CenterX: 12, CenterY: -3, CenterZ: 0.8, Length: 4.5, Width: 1.9, Height: 1.6, Heading: math.Pi / 6}

	got := EstimateBox(boxCorners(want))
	assert.InDelta(t, want.CenterX, got.CenterX, 1e-9)
	assert.InDelta(t, want.CenterY, got.CenterY, 1e-9)
	assert.InDelta(t, want.CenterZ, got.CenterZ, 1e-9)
	assert.InDelta(t, want.Length, got.Length, 1e-9)
	assert.InDelta(t, want.Width, got.Width, 1e-9)
	assert.InDelta(t, want.Height, got.Height, 1e-9)
	assert.InDelta(t, want.Heading, AlignHeading(got.Heading, want.Heading), 1e-9)
}

func TestEstimateBox_AxisAligned(t *testing.T) {
	pts := []Point{{0, 0, 0}, {4, 0, 0}, {0, 2, 1}, {4, 2, 1}}
	got := EstimateBox(pts)
	assert.InDelta(t, 2.0, got.CenterX, 1e-9)
	assert.InDelta(t, 1.0, got.CenterY, 1e-9)
	assert.InDelta(t, 0.5, got.CenterZ, 1e-9)
	assert.InDelta(t, 4.0, got.Length, 1e-9)
	assert.InDelta(t, 2.0, got.Width, 1e-9)
	assert.InDelta(t, 0.0, math.Sin(got.Heading), 1e-9)
}

func TestEstimateBox_Degenerate(t *testing.T) {
	assert.Equal(t, Box{}, EstimateBox(nil))

	got := EstimateBox([]Point{{X: 1, Y: 2, Z: 3}})
	assert.Equal(t, 1.0, got.CenterX)
	assert.Equal(t, 2.0, got.CenterY)
	assert.Equal(t, 3.0, got.CenterZ)
	assert.Equal(t, 0.0, got.Length)
	assert.Equal(t, 0.0, got.Width)
	assert.Equal(t, 0.0, got.Height)
}

func TestNormalizeHeading(t *testing.T) {
	assert.InDelta(t, 0.0, NormalizeHeading(2*math.Pi), 1e-12)
	assert.InDelta(t, -math.Pi/2, NormalizeHeading(3*math.Pi/2), 1e-12)
	assert.InDelta(t, math.Pi/2, NormalizeHeading(-3*math.Pi/2), 1e-12)
	assert.InDelta(t, 1.0, NormalizeHeading(1.0), 1e-12)
}

func TestAlignHeading(t *testing.T) {
	assert.InDelta(t, 0.1, AlignHeading(0.1, 0), 1e-12)
	assert.InDelta(t, 0.1, AlignHeading(0.1-math.Pi, 0), 1e-12)
	assert.InDelta(t, math.Pi-0.1, AlignHeading(-0.1, 3), 1e-12)
}
