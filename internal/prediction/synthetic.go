package prediction

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"
)

// SyntheticGenerator produces tracked objects moving on circular paths, for
// demos and tests of the write path.
type SyntheticGenerator struct {
	contextName string
	startMicros int64
	frame       int64

	// Configuration
	TrackCount      int     // number of tracked objects
	FrameRate       float64 // frames per second
	TrackRadius     float64 // metres, radius of the innermost path
	TrackSpeedMPS   float64 // metres per second along the path
	PointsPerObject int     // sampled points per object before box fitting

	tracks []syntheticTrack
	rng    *rand.Rand
}

type syntheticTrack struct {
	id     string
	typ    ObjectType
	phase  float64
	radius float64
	dims   [3]float64 // length, width, height
	score  float64
}

var syntheticDims = map[ObjectType][3]float64{
	TypeVehicle:    {4.5, 1.9, 1.6},
	TypePedestrian: {0.8, 0.8, 1.75},
	TypeCyclist:    {1.8, 0.7, 1.7},
}

// NewSyntheticGenerator creates a generator for one context. The same seed
// yields the same tracks, IDs and boxes.
func NewSyntheticGenerator(contextName string, startMicros int64, seed int64) *SyntheticGenerator {
	return &SyntheticGenerator{
		contextName:     contextName,
		startMicros:     startMicros,
		TrackCount:      5,
		FrameRate:       10.0,
		TrackRadius:     10.0,
		TrackSpeedMPS:   5.0,
		PointsPerObject: 64,
		rng:             rand.New(rand.NewSource(seed)),
	}
}

func (g *SyntheticGenerator) initTracks() error {
	types := []ObjectType{TypeVehicle, TypePedestrian, TypeCyclist}
	g.tracks = make([]syntheticTrack, g.TrackCount)
	for i := range g.tracks {
		id, err := uuid.NewRandomFromReader(g.rng)
		if err != nil {
			return fmt.Errorf("generate track id: %w", err)
		}
		typ := types[i%len(types)]
		g.tracks[i] = syntheticTrack{
			id:     "trk_" + id.String(),
			typ:    typ,
			phase:  2 * math.Pi * float64(i) / float64(g.TrackCount),
			radius: g.TrackRadius + 3*float64(i),
			dims:   syntheticDims[typ],
			score:  0.5 + 0.45*g.rng.Float64(),
		}
	}
	return nil
}

// NextFrame returns the predictions for the next frame.
func (g *SyntheticGenerator) NextFrame() ([]Object, error) {
	if g.tracks == nil {
		if err := g.initTracks(); err != nil {
			return nil, err
		}
	}

	elapsed := float64(g.frame) / g.FrameRate
	ts := g.startMicros + int64(math.Round(elapsed*1e6))
	g.frame++

	objs := make([]Object, 0, len(g.tracks))
	for _, tr := range g.tracks {
		omega := g.TrackSpeedMPS / tr.radius
		angle := tr.phase + omega*elapsed
		cx := tr.radius * math.Cos(angle)
		cy := tr.radius * math.Sin(angle)
		motion := NormalizeHeading(angle + math.Pi/2)

		box := EstimateBox(g.samplePoints(cx, cy, motion, tr.dims))
		box.Heading = AlignHeading(box.Heading, motion)

		score := tr.score + 0.05*(g.rng.Float64()-0.5)
		score = math.Min(math.Max(score, 0), 1)

		accel := g.TrackSpeedMPS * omega
		objs = append(objs, Object{
			ContextName:          g.contextName,
			FrameTimestampMicros: ts,
			Box:                  box,
			ObjectID:             tr.id,
			ObjectType:           tr.typ,
			Score:                float32(score),
			Metadata: &Metadata{
				SpeedX: -g.TrackSpeedMPS * math.Sin(angle),
				SpeedY: g.TrackSpeedMPS * math.Cos(angle),
				AccelX: -accel * math.Cos(angle),
				AccelY: -accel * math.Sin(angle),
			},
		})
	}
	return objs, nil
}

// samplePoints draws points uniformly inside an oriented box resting on z=0.
func (g *SyntheticGenerator) samplePoints(cx, cy, heading float64, dims [3]float64) []Point {
	n := g.PointsPerObject
	if n < 4 {
		n = 4
	}
	cos, sin := math.Cos(heading), math.Sin(heading)
	pts := make([]Point, n)
	for i := range pts {
		along := (g.rng.Float64() - 0.5) * dims[0]
		across := (g.rng.Float64() - 0.5) * dims[1]
		pts[i] = Point{
			X: cx + along*cos - across*sin,
			Y: cy + along*sin + across*cos,
			Z: g.rng.Float64() * dims[2],
		}
	}
	return pts
}
