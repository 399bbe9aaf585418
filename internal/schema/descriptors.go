package schema

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

type fieldType = descriptorpb.FieldDescriptorProto_Type

const (
	typeDouble  = descriptorpb.FieldDescriptorProto_TYPE_DOUBLE
	typeFloat   = descriptorpb.FieldDescriptorProto_TYPE_FLOAT
	typeInt64   = descriptorpb.FieldDescriptorProto_TYPE_INT64
	typeBool    = descriptorpb.FieldDescriptorProto_TYPE_BOOL
	typeString  = descriptorpb.FieldDescriptorProto_TYPE_STRING
	typeMessage = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	typeEnum    = descriptorpb.FieldDescriptorProto_TYPE_ENUM
)

func optional(name string, number int32, typ fieldType) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

func optionalRef(name string, number int32, typ fieldType, typeName string) *descriptorpb.FieldDescriptorProto {
	f := optional(name, number, typ)
	f.TypeName = proto.String(typeName)
	return f
}

func repeatedRef(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := optionalRef(name, number, typeMessage, typeName)
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

func enumValue(name string, number int32) *descriptorpb.EnumValueDescriptorProto {
	return &descriptorpb.EnumValueDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
	}
}

// labelFile mirrors the subset of label.proto used by predictions.
// Box fields are declared in field-number order; upstream declares length
// before width but the numbers are identical.
func labelFile() *descriptorpb.FileDescriptorProto {
	box := &descriptorpb.DescriptorProto{
		Name: proto.String("Box"),
		Field: []*descriptorpb.FieldDescriptorProto{
			optional("center_x", 1, typeDouble),
			optional("center_y", 2, typeDouble),
			optional("center_z", 3, typeDouble),
			optional("width", 4, typeDouble),
			optional("length", 5, typeDouble),
			optional("height", 6, typeDouble),
			optional("heading", 7, typeDouble),
		},
	}
	metadata := &descriptorpb.DescriptorProto{
		Name: proto.String("Metadata"),
		Field: []*descriptorpb.FieldDescriptorProto{
			optional("speed_x", 1, typeDouble),
			optional("speed_y", 2, typeDouble),
			optional("accel_x", 3, typeDouble),
			optional("accel_y", 4, typeDouble),
			optional("speed_z", 5, typeDouble),
			optional("accel_z", 6, typeDouble),
		},
	}
	labelType := &descriptorpb.EnumDescriptorProto{
		Name: proto.String("Type"),
		Value: []*descriptorpb.EnumValueDescriptorProto{
			enumValue("TYPE_UNKNOWN", 0),
			enumValue("TYPE_VEHICLE", 1),
			enumValue("TYPE_PEDESTRIAN", 2),
			enumValue("TYPE_SIGN", 3),
			enumValue("TYPE_CYCLIST", 4),
		},
	}
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(LabelFile),
		Package: proto.String(WaymoPackage),
		Syntax:  proto.String("proto2"),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name:       proto.String("Label"),
			NestedType: []*descriptorpb.DescriptorProto{box, metadata},
			EnumType:   []*descriptorpb.EnumDescriptorProto{labelType},
			Field: []*descriptorpb.FieldDescriptorProto{
				optionalRef("box", 1, typeMessage, ".waymo.open_dataset.Label.Box"),
				optionalRef("metadata", 2, typeMessage, ".waymo.open_dataset.Label.Metadata"),
				optionalRef("type", 3, typeEnum, ".waymo.open_dataset.Label.Type"),
				optional("id", 4, typeString),
			},
		}},
	}
}

// datasetFile mirrors CameraName from dataset.proto.
func datasetFile() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(DatasetFile),
		Package: proto.String(WaymoPackage),
		Syntax:  proto.String("proto2"),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("CameraName"),
			EnumType: []*descriptorpb.EnumDescriptorProto{{
				Name: proto.String("Name"),
				Value: []*descriptorpb.EnumValueDescriptorProto{
					enumValue("UNKNOWN", 0),
					enumValue("FRONT", 1),
					enumValue("FRONT_LEFT", 2),
					enumValue("FRONT_RIGHT", 3),
					enumValue("SIDE_LEFT", 4),
					enumValue("SIDE_RIGHT", 5),
				},
			}},
		}},
	}
}

// metricsFile mirrors Object and Objects from protos/metrics.proto.
func metricsFile() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String(MetricsFile),
		Package:    proto.String(WaymoPackage),
		Syntax:     proto.String("proto2"),
		Dependency: []string{LabelFile, DatasetFile},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("Object"),
				Field: []*descriptorpb.FieldDescriptorProto{
					optionalRef("object", 1, typeMessage, ".waymo.open_dataset.Label"),
					optional("score", 2, typeFloat),
					optional("overlap_with_nlz", 3, typeBool),
					optional("context_name", 4, typeString),
					optional("frame_timestamp_micros", 5, typeInt64),
					optionalRef("camera_name", 6, typeEnum, ".waymo.open_dataset.CameraName.Name"),
				},
			},
			{
				Name: proto.String("Objects"),
				Field: []*descriptorpb.FieldDescriptorProto{
					repeatedRef("objects", 1, ".waymo.open_dataset.Object"),
				},
			},
		},
	}
}

// submissionFile declares the PredictionSink service. It is local to this
// repository and carries upstream Objects messages unchanged.
func submissionFile() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String(SubmissionFile),
		Package:    proto.String(SubmissionPackage),
		Syntax:     proto.String("proto3"),
		Dependency: []string{MetricsFile},
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("SubmitResponse"),
			Field: []*descriptorpb.FieldDescriptorProto{
				optional("run_id", 1, typeString),
				optional("accepted", 2, typeInt64),
			},
		}},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("PredictionSink"),
			Method: []*descriptorpb.MethodDescriptorProto{{
				Name:       proto.String("Submit"),
				InputType:  proto.String(".waymo.open_dataset.Objects"),
				OutputType: proto.String(".velocity.predictions.SubmitResponse"),
			}},
		}},
	}
}
