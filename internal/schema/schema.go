// Package schema holds protobuf descriptors for the externally defined
// waymo.open_dataset prediction messages and the submission service.
//
// The descriptors are built at init time from FileDescriptorProtos rather than
// generated code. Field numbers, types and enum values mirror
// waymo_open_dataset/label.proto, dataset.proto and protos/metrics.proto, so
// any message built from them marshals to the same wire bytes the upstream
// evaluation tooling reads. Only the fields a prediction producer writes are
// declared. Other upstream fields decode into a message's unknown fields;
// code that converts messages to its own types drops them.
package schema

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Proto package and file names.
const (
	WaymoPackage      = "waymo.open_dataset"
	SubmissionPackage = "velocity.predictions"

	LabelFile      = "waymo_open_dataset/label.proto"
	DatasetFile    = "waymo_open_dataset/dataset.proto"
	MetricsFile    = "waymo_open_dataset/protos/metrics.proto"
	SubmissionFile = "velocity/predictions/submission.proto"
)

// Files is the registry holding every descriptor in this package.
var Files *protoregistry.Files

// Message descriptors.
var (
	Label          protoreflect.MessageDescriptor
	Box            protoreflect.MessageDescriptor
	Metadata       protoreflect.MessageDescriptor
	CameraName     protoreflect.MessageDescriptor
	Object         protoreflect.MessageDescriptor
	Objects        protoreflect.MessageDescriptor
	SubmitResponse protoreflect.MessageDescriptor
)

// Enum descriptors.
var (
	LabelType      protoreflect.EnumDescriptor
	CameraNameEnum protoreflect.EnumDescriptor
)

// PredictionSink is the submission service descriptor.
var PredictionSink protoreflect.ServiceDescriptor

func init() {
	files, err := protodesc.NewFiles(&descriptorpb.FileDescriptorSet{
		File: []*descriptorpb.FileDescriptorProto{
			labelFile(),
			datasetFile(),
			metricsFile(),
			submissionFile(),
		},
	})
	if err != nil {
		panic(fmt.Sprintf("schema: build descriptors: %v", err))
	}
	Files = files

	Label = mustMessage(WaymoPackage + ".Label")
	Box = mustMessage(WaymoPackage + ".Label.Box")
	Metadata = mustMessage(WaymoPackage + ".Label.Metadata")
	CameraName = mustMessage(WaymoPackage + ".CameraName")
	Object = mustMessage(WaymoPackage + ".Object")
	Objects = mustMessage(WaymoPackage + ".Objects")
	SubmitResponse = mustMessage(SubmissionPackage + ".SubmitResponse")

	LabelType = mustEnum(WaymoPackage + ".Label.Type")
	CameraNameEnum = mustEnum(WaymoPackage + ".CameraName.Name")

	d, err := Files.FindDescriptorByName(SubmissionPackage + ".PredictionSink")
	if err != nil {
		panic(fmt.Sprintf("schema: %v", err))
	}
	PredictionSink = d.(protoreflect.ServiceDescriptor)
}

func mustMessage(name protoreflect.FullName) protoreflect.MessageDescriptor {
	d, err := Files.FindDescriptorByName(name)
	if err != nil {
		panic(fmt.Sprintf("schema: %v", err))
	}
	md, ok := d.(protoreflect.MessageDescriptor)
	if !ok {
		panic(fmt.Sprintf("schema: %s is a %T, not a message", name, d))
	}
	return md
}

func mustEnum(name protoreflect.FullName) protoreflect.EnumDescriptor {
	d, err := Files.FindDescriptorByName(name)
	if err != nil {
		panic(fmt.Sprintf("schema: %v", err))
	}
	ed, ok := d.(protoreflect.EnumDescriptor)
	if !ok {
		panic(fmt.Sprintf("schema: %s is a %T, not an enum", name, d))
	}
	return ed
}

// Field returns the named field of md, panicking when it does not exist.
// Callers resolve fields once at package init.
func Field(md protoreflect.MessageDescriptor, name protoreflect.Name) protoreflect.FieldDescriptor {
	fd := md.Fields().ByName(name)
	if fd == nil {
		panic(fmt.Sprintf("schema: %s has no field %q", md.FullName(), name))
	}
	return fd
}
