package submission

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/banshee-data/pdwriter/internal/prediction"
	"github.com/banshee-data/pdwriter/internal/schema"
)

// Result is the sink's answer to one submission.
type Result struct {
	RunID    string
	Accepted int64
}

// Client submits collections to a PredictionSink.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps an existing connection.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Dial connects to a sink at addr without transport security.
func Dial(addr string, opts ...grpc.DialOption) (*Client, *grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.MaxCallSendMsgSize(maxMsgSize)),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return NewClient(conn), conn, nil
}

// Submit sends objs and returns the stored run.
func (c *Client) Submit(ctx context.Context, objs *prediction.Objects) (*Result, error) {
	out := dynamicpb.NewMessage(schema.SubmitResponse)
	if err := c.conn.Invoke(ctx, SubmitMethod, prediction.ToProto(objs), out); err != nil {
		return nil, err
	}
	return &Result{
		RunID:    out.Get(schema.Field(schema.SubmitResponse, "run_id")).String(),
		Accepted: out.Get(schema.Field(schema.SubmitResponse, "accepted")).Int(),
	}, nil
}
