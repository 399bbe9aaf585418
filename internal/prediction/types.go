package prediction

import (
	"fmt"
	"strings"
)

// InvalidTimestamp marks a record whose frame timestamp is unknown.
const InvalidTimestamp int64 = -1

// DefaultMaxObjectsPerFrame is the soft per-frame record limit. Evaluation
// cost grows with the number of boxes per frame; exceeding it is reported as
// a warning only.
const DefaultMaxObjectsPerFrame = 400

// ObjectType is the class label of a predicted object (Label.Type on the wire).
type ObjectType int32

const (
	TypeUnknown    ObjectType = 0
	TypeVehicle    ObjectType = 1
	TypePedestrian ObjectType = 2
	TypeSign       ObjectType = 3
	TypeCyclist    ObjectType = 4
)

var objectTypeNames = map[ObjectType]string{
	TypeUnknown:    "TYPE_UNKNOWN",
	TypeVehicle:    "TYPE_VEHICLE",
	TypePedestrian: "TYPE_PEDESTRIAN",
	TypeSign:       "TYPE_SIGN",
	TypeCyclist:    "TYPE_CYCLIST",
}

func (t ObjectType) String() string {
	if s, ok := objectTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TYPE_%d", int32(t))
}

// Valid reports whether t is a defined, non-default label.
func (t ObjectType) Valid() bool {
	return t >= TypeVehicle && t <= TypeCyclist
}

// ParseObjectType accepts the wire name ("TYPE_PEDESTRIAN") or its short
// lower-case form ("pedestrian").
func ParseObjectType(s string) (ObjectType, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(norm, "TYPE_") {
		norm = "TYPE_" + norm
	}
	for t, name := range objectTypeNames {
		if name == norm {
			return t, nil
		}
	}
	return TypeUnknown, fmt.Errorf("unknown object type %q", s)
}

// CameraName identifies the camera a 2D prediction belongs to
// (CameraName.Name on the wire).
type CameraName int32

const (
	CameraUnknown    CameraName = 0
	CameraFront      CameraName = 1
	CameraFrontLeft  CameraName = 2
	CameraFrontRight CameraName = 3
	CameraSideLeft   CameraName = 4
	CameraSideRight  CameraName = 5
)

var cameraNames = map[CameraName]string{
	CameraUnknown:    "UNKNOWN",
	CameraFront:      "FRONT",
	CameraFrontLeft:  "FRONT_LEFT",
	CameraFrontRight: "FRONT_RIGHT",
	CameraSideLeft:   "SIDE_LEFT",
	CameraSideRight:  "SIDE_RIGHT",
}

func (c CameraName) String() string {
	if s, ok := cameraNames[c]; ok {
		return s
	}
	return fmt.Sprintf("CAMERA_%d", int32(c))
}

// Valid reports whether c names a physical camera.
func (c CameraName) Valid() bool {
	return c >= CameraFront && c <= CameraSideRight
}

// ParseCameraName accepts names such as "FRONT" or "side_left".
func ParseCameraName(s string) (CameraName, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	for c, name := range cameraNames {
		if name == norm {
			return c, nil
		}
	}
	return CameraUnknown, fmt.Errorf("unknown camera name %q", s)
}

// Box is a 7-DOF oriented 3D bounding box in the vehicle frame.
//
//   - CenterX/Y/Z: box centre (metres)
//   - Length: extent along heading
//   - Width: extent perpendicular to heading
//   - Height: extent along Z
//   - Heading: yaw around Z (radians)
type Box struct {
	CenterX float64
	CenterY float64
	CenterZ float64
	Length  float64
	Width   float64
	Height  float64
	Heading float64
}

// Metadata carries optional motion estimates (Label.Metadata on the wire).
type Metadata struct {
	SpeedX float64
	SpeedY float64
	SpeedZ float64
	AccelX float64
	AccelY float64
	AccelZ float64
}

// Object is one predicted object instance.
type Object struct {
	// ContextName must equal the source frame's context name exactly.
	ContextName string
	// FrameTimestampMicros is the source frame capture time, or InvalidTimestamp.
	FrameTimestampMicros int64
	// CameraName is required for 2D tasks only.
	CameraName CameraName

	Box        Box
	ObjectID   string
	ObjectType ObjectType
	// Score is the confidence in [0, 1].
	Score float32

	// Optional fields; nil means not emitted.
	Metadata       *Metadata
	OverlapWithNLZ *bool
}

// FrameKey identifies the frame a record belongs to.
type FrameKey struct {
	ContextName          string
	FrameTimestampMicros int64
}

// Frame returns the key of the frame o was predicted on.
func (o *Object) Frame() FrameKey {
	return FrameKey{ContextName: o.ContextName, FrameTimestampMicros: o.FrameTimestampMicros}
}

// Objects is an append-ordered collection of predictions; one submission unit.
type Objects struct {
	Objects []Object
}

// Append adds records in order.
func (c *Objects) Append(objs ...Object) {
	c.Objects = append(c.Objects, objs...)
}

// Len returns the number of records.
func (c *Objects) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Objects)
}

// ByFrame groups record indices by frame, preserving append order within
// each frame.
func (c *Objects) ByFrame() map[FrameKey][]int {
	frames := make(map[FrameKey][]int)
	for i := range c.Objects {
		k := c.Objects[i].Frame()
		frames[k] = append(frames[k], i)
	}
	return frames
}
