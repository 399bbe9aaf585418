package prediction

import (
	"testing"

	"github.com/banshee-data/pdwriter/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"
)

func TestObjectType_MatchesSchema(t *testing.T) {
	for typ, name := range objectTypeNames {
		v := schema.LabelType.Values().ByNumber(protoreflect.EnumNumber(typ))
		require.NotNil(t, v, name)
		assert.Equal(t, name, string(v.Name()))
	}
}

func TestCameraName_MatchesSchema(t *testing.T) {
	for c, name := range cameraNames {
		v := schema.CameraNameEnum.Values().ByNumber(protoreflect.EnumNumber(c))
		require.NotNil(t, v, name)
		assert.Equal(t, name, string(v.Name()))
	}
}

func TestParseObjectType(t *testing.T) {
	cases := map[string]ObjectType{
		"TYPE_PEDESTRIAN": TypePedestrian,
		"pedestrian":      TypePedestrian,
		" vehicle ":       TypeVehicle,
		"Cyclist":         TypeCyclist,
		"sign":            TypeSign,
	}
	for in, want := range cases {
		got, err := ParseObjectType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseObjectType("bird")
	assert.Error(t, err)
}

func TestParseCameraName(t *testing.T) {
	got, err := ParseCameraName("side_left")
	require.NoError(t, err)
	assert.Equal(t, CameraSideLeft, got)

	_, err = ParseCameraName("REAR")
	assert.Error(t, err)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "TYPE_PEDESTRIAN", TypePedestrian.String())
	assert.Equal(t, "TYPE_9", ObjectType(9).String())
	assert.Equal(t, "FRONT", CameraFront.String())
	assert.Equal(t, "CAMERA_7", CameraName(7).String())

	assert.False(t, TypeUnknown.Valid())
	assert.True(t, TypeSign.Valid())
	assert.False(t, CameraUnknown.Valid())
	assert.True(t, CameraSideRight.Valid())
}

func TestObjects_ByFrame(t *testing.T) {
	c := &Objects{}
	a := validObject("a")
	b := validObject("b")
	b.FrameTimestampMicros++
	c.Append(a, b, validObject("c"))

	frames := c.ByFrame()
	require.Len(t, frames, 2)
	assert.Equal(t, []int{0, 2}, frames[a.Frame()])
	assert.Equal(t, []int{1}, frames[b.Frame()])

	var nilObjs *Objects
	assert.Equal(t, 0, nilObjs.Len())
}
