package prediction

import "math"

// boxCovarianceEpsilon is the threshold below which covariance terms are
// treated as zero during heading estimation.
const boxCovarianceEpsilon = 1e-9

// Point is a 3D point in the vehicle frame (metres).
type Point struct {
	X, Y, Z float64
}

// EstimateBox fits an oriented box to a cluster of points.
//
// Heading comes from the principal eigenvector of the X-Y covariance; length
// and width are the extents along and across it. CenterZ is the vertical
// midpoint, as the evaluation box convention expects.
func EstimateBox(points []Point) Box {
	n := len(points)
	if n == 0 {
		return Box{}
	}

	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	nf := float64(n)
	meanX := sumX / nf
	meanY := sumY / nf

	var c00, c01, c11 float64
	for _, p := range points {
		dx := p.X - meanX
		dy := p.Y - meanY
		c00 += dx * dx
		c01 += dx * dy
		c11 += dy * dy
	}
	c00 /= nf
	c01 /= nf
	c11 /= nf

	trace := c00 + c11
	det := c00*c11 - c01*c01
	disc := trace*trace - 4*det
	lambda1 := c00
	if disc >= 0 {
		lambda1 = (trace + math.Sqrt(disc)) / 2
	}

	var evX, evY float64
	switch {
	case math.Abs(c01) > boxCovarianceEpsilon:
		evX, evY = c01, lambda1-c00
		mag := math.Hypot(evX, evY)
		if mag > boxCovarianceEpsilon {
			evX /= mag
			evY /= mag
		} else {
			evX, evY = 1, 0
		}
	case c00 >= c11:
		evX, evY = 1, 0
	default:
		evX, evY = 0, 1
	}

	minAlong, maxAlong := math.MaxFloat64, -math.MaxFloat64
	minAcross, maxAcross := math.MaxFloat64, -math.MaxFloat64
	minZ, maxZ := math.MaxFloat64, -math.MaxFloat64
	for _, p := range points {
		dx := p.X - meanX
		dy := p.Y - meanY
		along := dx*evX + dy*evY
		across := -dx*evY + dy*evX
		minAlong = math.Min(minAlong, along)
		maxAlong = math.Max(maxAlong, along)
		minAcross = math.Min(minAcross, across)
		maxAcross = math.Max(maxAcross, across)
		minZ = math.Min(minZ, p.Z)
		maxZ = math.Max(maxZ, p.Z)
	}

	// Centre is the midpoint of the extents, not the centroid.
	midAlong := (minAlong + maxAlong) / 2
	midAcross := (minAcross + maxAcross) / 2
	return Box{
		CenterX: meanX + midAlong*evX - midAcross*evY,
		CenterY: meanY + midAlong*evY + midAcross*evX,
		CenterZ: (minZ + maxZ) / 2,
		Length:  maxAlong - minAlong,
		Width:   maxAcross - minAcross,
		Height:  maxZ - minZ,
		Heading: math.Atan2(evY, evX),
	}
}

// NormalizeHeading wraps an angle into [-π, π].
func NormalizeHeading(h float64) float64 {
	for h > math.Pi {
		h -= 2 * math.Pi
	}
	for h < -math.Pi {
		h += 2 * math.Pi
	}
	return h
}

// AlignHeading returns h or h+π, whichever is closer to ref. Box fits are
// symmetric under a half turn, so motion direction picks the sign.
func AlignHeading(h, ref float64) float64 {
	if math.Abs(NormalizeHeading(h-ref)) > math.Pi/2 {
		h += math.Pi
	}
	return NormalizeHeading(h)
}
