// Package submission serves and calls the PredictionSink gRPC service,
// which accepts one Objects collection per call and stores it as a run.
package submission

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/banshee-data/pdwriter/internal/schema"
)

// SubmitMethod is the full gRPC method name of PredictionSink.Submit.
const SubmitMethod = "/" + schema.SubmissionPackage + ".PredictionSink/Submit"

// PredictionSinkServer handles Submit calls. Requests are
// waymo.open_dataset.Objects messages and responses are SubmitResponse
// messages, both as dynamic messages over the runtime schema.
type PredictionSinkServer interface {
	Submit(ctx context.Context, in *dynamicpb.Message) (*dynamicpb.Message, error)
}

// ServiceDesc describes PredictionSink for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: schema.SubmissionPackage + ".PredictionSink",
	HandlerType: (*PredictionSinkServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Submit",
			Handler:    submitHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: schema.SubmissionFile,
}

// RegisterPredictionSinkServer registers srv with s.
func RegisterPredictionSinkServer(s grpc.ServiceRegistrar, srv PredictionSinkServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func submitHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := dynamicpb.NewMessage(schema.Objects)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PredictionSinkServer).Submit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SubmitMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PredictionSinkServer).Submit(ctx, req.(*dynamicpb.Message))
	}
	return interceptor(ctx, in, info, handler)
}
