package prediction

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticGenerator_Frames(t *testing.T) {
	g := NewSyntheticGenerator("ctx-synthetic", 1_000_000, 42)
	g.TrackCount = 4

	first, err := g.NextFrame()
	require.NoError(t, err)
	second, err := g.NextFrame()
	require.NoError(t, err)
	require.Len(t, first, 4)
	require.Len(t, second, 4)

	for i := range first {
		assert.Equal(t, "ctx-synthetic", first[i].ContextName)
		assert.Equal(t, int64(1_000_000), first[i].FrameTimestampMicros)
		assert.Equal(t, int64(1_100_000), second[i].FrameTimestampMicros)
		assert.True(t, strings.HasPrefix(first[i].ObjectID, "trk_"))
		assert.Equal(t, first[i].ObjectID, second[i].ObjectID, "track ids are stable across frames")
		assert.True(t, first[i].ObjectType.Valid())
		assert.GreaterOrEqual(t, first[i].Score, float32(0))
		assert.LessOrEqual(t, first[i].Score, float32(1))
		require.NotNil(t, first[i].Metadata)
		speed := math.Hypot(first[i].Metadata.SpeedX, first[i].Metadata.SpeedY)
		assert.InDelta(t, g.TrackSpeedMPS, speed, 1e-9)
	}

	r := Validate(&Objects{Objects: append(first, second...)}, ValidateOptions{Task: TaskTracking3D})
	assert.NoError(t, r.Err())
}

func TestSyntheticGenerator_HeadingFollowsMotion(t *testing.T) {
	g := NewSyntheticGenerator("ctx", 0, 3)
	g.TrackCount = 3
	g.PointsPerObject = 256

	frame, err := g.NextFrame()
	require.NoError(t, err)
	for _, o := range frame {
		motion := math.Atan2(o.Metadata.SpeedY, o.Metadata.SpeedX)
		diff := math.Abs(NormalizeHeading(o.Box.Heading - motion))
		assert.Less(t, diff, math.Pi/2, "heading should point along velocity for %s", o.ObjectType)
	}
}

func TestSyntheticGenerator_Deterministic(t *testing.T) {
	a := NewSyntheticGenerator("ctx", 0, 99)
	b := NewSyntheticGenerator("ctx", 0, 99)

	fa, err := a.NextFrame()
	require.NoError(t, err)
	fb, err := b.NextFrame()
	require.NoError(t, err)
	if diff := cmp.Diff(fa, fb); diff != "" {
		t.Errorf("same seed should give same frame (-a +b):\n%s", diff)
	}
}
