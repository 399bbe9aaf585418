package submission

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/banshee-data/pdwriter/internal/monitoring"
	"github.com/banshee-data/pdwriter/internal/prediction"
	"github.com/banshee-data/pdwriter/internal/predstore"
	"github.com/banshee-data/pdwriter/internal/schema"
)

// maxMsgSize bounds a single submission.
const maxMsgSize = 64 * 1024 * 1024 // 64 MB

// Store is the persistence the sink writes runs into.
type Store interface {
	CreateRunWithObjects(ctx context.Context, task prediction.Task, notes string, objs *prediction.Objects) (*predstore.Run, error)
}

// Server implements PredictionSinkServer on top of a Store.
type Server struct {
	store Store
	mode  prediction.ValidationMode
	opts  prediction.ValidateOptions

	server   *grpc.Server
	listener net.Listener
	running  atomic.Bool
	wg       sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithTask sets the task submissions are validated and stored for.
func WithTask(t prediction.Task) Option {
	return func(s *Server) { s.opts.Task = t }
}

// WithValidation sets how validation failures are handled.
func WithValidation(m prediction.ValidationMode) Option {
	return func(s *Server) { s.mode = m }
}

// WithMaxObjectsPerFrame sets the per-frame soft limit.
func WithMaxObjectsPerFrame(n int) Option {
	return func(s *Server) { s.opts.MaxObjectsPerFrame = n }
}

// NewServer returns a sink writing into store. Defaults match the builder:
// detection_3d with warn-mode validation.
func NewServer(store Store, opts ...Option) *Server {
	s := &Server{
		store: store,
		mode:  prediction.ValidateWarn,
		opts:  prediction.ValidateOptions{Task: prediction.TaskDetection3D},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit stores one Objects collection as a new run.
func (s *Server) Submit(ctx context.Context, in *dynamicpb.Message) (*dynamicpb.Message, error) {
	objs, err := prediction.FromProto(in)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode objects: %v", err)
	}
	if objs.Len() == 0 {
		return nil, status.Error(codes.InvalidArgument, "submission has no objects")
	}

	if s.mode != prediction.ValidateOff {
		report := prediction.Validate(objs, s.opts)
		if err := report.Err(); err != nil {
			if s.mode == prediction.ValidateStrict {
				return nil, status.Error(codes.InvalidArgument, err.Error())
			}
			monitoring.Logf("[Submission] accepting with %d validation errors: %v", len(report.Errors), err)
		}
		for _, w := range report.Warnings {
			monitoring.Logf("[Submission] warning %s", w)
		}
	}

	notes := ""
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		notes = "submitted from " + p.Addr.String()
	}
	run, err := s.store.CreateRunWithObjects(ctx, s.opts.Task, notes, objs)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "store run: %v", err)
	}
	n := objs.Len()
	monitoring.Logf("[Submission] stored %d objects as run %s", n, run.RunID)

	resp := dynamicpb.NewMessage(schema.SubmitResponse)
	resp.Set(schema.Field(schema.SubmitResponse, "run_id"), protoreflect.ValueOfString(run.RunID))
	resp.Set(schema.Field(schema.SubmitResponse, "accepted"), protoreflect.ValueOfInt64(int64(n)))
	return resp, nil
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	monitoring.Logf("[Submission] Attempting to bind to %s...", addr)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(lis)
}

// Serve serves on lis in the background until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	if s.running.Load() {
		return fmt.Errorf("server already running")
	}
	s.listener = lis
	s.server = grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMsgSize),
		grpc.MaxSendMsgSize(maxMsgSize),
	)
	RegisterPredictionSinkServer(s.server, s)
	s.running.Store(true)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		monitoring.Logf("[Submission] gRPC server listening on %s", lis.Addr())
		if err := s.server.Serve(lis); err != nil && s.running.Load() {
			monitoring.Logf("[Submission] gRPC server error: %v", err)
		}
	}()
	return nil
}

// Addr returns the listening address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop gracefully stops the gRPC server.
func (s *Server) Stop() {
	if !s.running.Load() {
		return
	}
	s.running.Store(false)

	if s.server != nil {
		s.server.GracefulStop()
	}
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	monitoring.Logf("[Submission] gRPC server stopped")
}
