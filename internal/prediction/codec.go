package prediction

import (
	"fmt"

	"github.com/banshee-data/pdwriter/internal/schema"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Field descriptors resolved once from the schema.
var (
	fdObjects = schema.Field(schema.Objects, "objects")

	fdObjectLabel   = schema.Field(schema.Object, "object")
	fdObjectScore   = schema.Field(schema.Object, "score")
	fdObjectNLZ     = schema.Field(schema.Object, "overlap_with_nlz")
	fdObjectContext = schema.Field(schema.Object, "context_name")
	fdObjectTime    = schema.Field(schema.Object, "frame_timestamp_micros")
	fdObjectCamera  = schema.Field(schema.Object, "camera_name")

	fdLabelBox      = schema.Field(schema.Label, "box")
	fdLabelMetadata = schema.Field(schema.Label, "metadata")
	fdLabelType     = schema.Field(schema.Label, "type")
	fdLabelID       = schema.Field(schema.Label, "id")

	fdBoxCenterX = schema.Field(schema.Box, "center_x")
	fdBoxCenterY = schema.Field(schema.Box, "center_y")
	fdBoxCenterZ = schema.Field(schema.Box, "center_z")
	fdBoxWidth   = schema.Field(schema.Box, "width")
	fdBoxLength  = schema.Field(schema.Box, "length")
	fdBoxHeight  = schema.Field(schema.Box, "height")
	fdBoxHeading = schema.Field(schema.Box, "heading")

	fdMetaSpeedX = schema.Field(schema.Metadata, "speed_x")
	fdMetaSpeedY = schema.Field(schema.Metadata, "speed_y")
	fdMetaAccelX = schema.Field(schema.Metadata, "accel_x")
	fdMetaAccelY = schema.Field(schema.Metadata, "accel_y")
	fdMetaSpeedZ = schema.Field(schema.Metadata, "speed_z")
	fdMetaAccelZ = schema.Field(schema.Metadata, "accel_z")
)

// marshalOptions yields the canonical encoding: fields in number order.
var marshalOptions = proto.MarshalOptions{Deterministic: true}

// Marshal serializes objs as a waymo.open_dataset.Objects message.
// A nil or empty collection encodes to zero bytes.
func Marshal(objs *Objects) ([]byte, error) {
	b, err := marshalOptions.Marshal(ToProto(objs))
	if err != nil {
		return nil, fmt.Errorf("marshal objects: %w", err)
	}
	return b, nil
}

// Unmarshal decodes a waymo.open_dataset.Objects message.
func Unmarshal(b []byte) (*Objects, error) {
	m := dynamicpb.NewMessage(schema.Objects)
	if err := proto.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("unmarshal objects: %w", err)
	}
	return FromProto(m)
}

// ToProto converts objs to a dynamic waymo.open_dataset.Objects message.
//
// Box, score, context name, timestamp, type and id are always set so the
// encoding matches a producer that assigns each of them, zeros included.
// Camera name is set only when known; metadata and the NLZ flag only when
// non-nil.
func ToProto(objs *Objects) *dynamicpb.Message {
	m := dynamicpb.NewMessage(schema.Objects)
	if objs.Len() == 0 {
		return m
	}
	list := m.Mutable(fdObjects).List()
	for i := range objs.Objects {
		el := list.NewElement()
		objectToProto(&objs.Objects[i], el.Message())
		list.Append(el)
	}
	return m
}

func objectToProto(o *Object, m protoreflect.Message) {
	label := m.Mutable(fdObjectLabel).Message()

	box := label.Mutable(fdLabelBox).Message()
	box.Set(fdBoxCenterX, protoreflect.ValueOfFloat64(o.Box.CenterX))
	box.Set(fdBoxCenterY, protoreflect.ValueOfFloat64(o.Box.CenterY))
	box.Set(fdBoxCenterZ, protoreflect.ValueOfFloat64(o.Box.CenterZ))
	box.Set(fdBoxWidth, protoreflect.ValueOfFloat64(o.Box.Width))
	box.Set(fdBoxLength, protoreflect.ValueOfFloat64(o.Box.Length))
	box.Set(fdBoxHeight, protoreflect.ValueOfFloat64(o.Box.Height))
	box.Set(fdBoxHeading, protoreflect.ValueOfFloat64(o.Box.Heading))

	if md := o.Metadata; md != nil {
		meta := label.Mutable(fdLabelMetadata).Message()
		meta.Set(fdMetaSpeedX, protoreflect.ValueOfFloat64(md.SpeedX))
		meta.Set(fdMetaSpeedY, protoreflect.ValueOfFloat64(md.SpeedY))
		meta.Set(fdMetaAccelX, protoreflect.ValueOfFloat64(md.AccelX))
		meta.Set(fdMetaAccelY, protoreflect.ValueOfFloat64(md.AccelY))
		meta.Set(fdMetaSpeedZ, protoreflect.ValueOfFloat64(md.SpeedZ))
		meta.Set(fdMetaAccelZ, protoreflect.ValueOfFloat64(md.AccelZ))
	}

	label.Set(fdLabelType, protoreflect.ValueOfEnum(protoreflect.EnumNumber(o.ObjectType)))
	label.Set(fdLabelID, protoreflect.ValueOfString(o.ObjectID))

	m.Set(fdObjectScore, protoreflect.ValueOfFloat32(o.Score))
	if o.OverlapWithNLZ != nil {
		m.Set(fdObjectNLZ, protoreflect.ValueOfBool(*o.OverlapWithNLZ))
	}
	m.Set(fdObjectContext, protoreflect.ValueOfString(o.ContextName))
	m.Set(fdObjectTime, protoreflect.ValueOfInt64(o.FrameTimestampMicros))
	if o.CameraName != CameraUnknown {
		m.Set(fdObjectCamera, protoreflect.ValueOfEnum(protoreflect.EnumNumber(o.CameraName)))
	}
}

// FromProto converts a waymo.open_dataset.Objects message into the Go model.
// Unknown fields on m are not carried over.
func FromProto(m protoreflect.Message) (*Objects, error) {
	if got := m.Descriptor().FullName(); got != schema.Objects.FullName() {
		return nil, fmt.Errorf("expected %s message, got %s", schema.Objects.FullName(), got)
	}
	list := m.Get(fdObjects).List()
	objs := &Objects{Objects: make([]Object, list.Len())}
	for i := 0; i < list.Len(); i++ {
		objectFromProto(list.Get(i).Message(), &objs.Objects[i])
	}
	return objs, nil
}

func objectFromProto(m protoreflect.Message, o *Object) {
	label := m.Get(fdObjectLabel).Message()
	box := label.Get(fdLabelBox).Message()
	o.Box = Box{
		CenterX: box.Get(fdBoxCenterX).Float(),
		CenterY: box.Get(fdBoxCenterY).Float(),
		CenterZ: box.Get(fdBoxCenterZ).Float(),
		Length:  box.Get(fdBoxLength).Float(),
		Width:   box.Get(fdBoxWidth).Float(),
		Height:  box.Get(fdBoxHeight).Float(),
		Heading: box.Get(fdBoxHeading).Float(),
	}
	if label.Has(fdLabelMetadata) {
		meta := label.Get(fdLabelMetadata).Message()
		o.Metadata = &Metadata{
			SpeedX: meta.Get(fdMetaSpeedX).Float(),
			SpeedY: meta.Get(fdMetaSpeedY).Float(),
			SpeedZ: meta.Get(fdMetaSpeedZ).Float(),
			AccelX: meta.Get(fdMetaAccelX).Float(),
			AccelY: meta.Get(fdMetaAccelY).Float(),
			AccelZ: meta.Get(fdMetaAccelZ).Float(),
		}
	}
	o.ObjectType = ObjectType(label.Get(fdLabelType).Enum())
	o.ObjectID = label.Get(fdLabelID).String()

	o.Score = float32(m.Get(fdObjectScore).Float())
	if m.Has(fdObjectNLZ) {
		v := m.Get(fdObjectNLZ).Bool()
		o.OverlapWithNLZ = &v
	}
	o.ContextName = m.Get(fdObjectContext).String()
	o.FrameTimestampMicros = m.Get(fdObjectTime).Int()
	o.CameraName = CameraName(m.Get(fdObjectCamera).Enum())
}
