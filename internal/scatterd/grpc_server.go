package scatterd

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lgpang/smash/pkg/logger"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "scatter.v1.ScatterService"

// Full method names of ScatterService.
const (
	MethodCollide  = "/" + ServiceName + "/Collide"
	MethodBranches = "/" + ServiceName + "/Branches"
	MethodBatch    = "/" + ServiceName + "/Batch"
)

// ScatterServiceServer is the server API of ScatterService. Messages are
// structpb.Struct values with the JSON layout of the request and result types.
type ScatterServiceServer interface {
	Collide(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Branches(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Batch(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ScatterServiceDesc describes ScatterService for grpc.Server.RegisterService.
var ScatterServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ScatterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Collide", Handler: unaryHandler(MethodCollide, ScatterServiceServer.Collide)},
		{MethodName: "Branches", Handler: unaryHandler(MethodBranches, ScatterServiceServer.Branches)},
		{MethodName: "Batch", Handler: unaryHandler(MethodBatch, ScatterServiceServer.Batch)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scatter/v1/scatter.proto",
}

type unaryMethod func(ScatterServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, m unaryMethod) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return m(srv.(ScatterServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return m(srv.(ScatterServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RegisterScatterServiceServer registers srv on s.
func RegisterScatterServiceServer(s grpc.ServiceRegistrar, srv ScatterServiceServer) {
	s.RegisterService(&ScatterServiceDesc, srv)
}

// ScatterGRPCServer implements ScatterServiceServer over a Service.
type ScatterGRPCServer struct {
	service *Service
}

// NewScatterGRPCServer creates a new ScatterGRPCServer.
func NewScatterGRPCServer(service *Service) *ScatterGRPCServer {
	return &ScatterGRPCServer{service: service}
}

func (s *ScatterGRPCServer) Collide(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req CollideRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	res, err := s.service.Collide(ctx, req)
	if err != nil {
		logger.Warn("collide failed", "projectile", req.Projectile, "target", req.Target, "error", err)
		return nil, toStatus(err)
	}
	return toStruct(res)
}

func (s *ScatterGRPCServer) Branches(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req CollideRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	res, err := s.service.Branches(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(res)
}

func (s *ScatterGRPCServer) Batch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req BatchRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	res, err := s.service.Batch(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(res)
}

// ScatterServiceClient calls ScatterService on a connection.
type ScatterServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewScatterServiceClient creates a client over cc.
func NewScatterServiceClient(cc grpc.ClientConnInterface) *ScatterServiceClient {
	return &ScatterServiceClient{cc: cc}
}

func (c *ScatterServiceClient) call(ctx context.Context, method string, req, res any, opts ...grpc.CallOption) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return err
	}
	return fromStruct(out, res)
}

// Collide performs one collision remotely.
func (c *ScatterServiceClient) Collide(ctx context.Context, req CollideRequest, opts ...grpc.CallOption) (*CollideResult, error) {
	res := new(CollideResult)
	if err := c.call(ctx, MethodCollide, req, res, opts...); err != nil {
		return nil, err
	}
	return res, nil
}

// Branches lists the channels of a pair remotely.
func (c *ScatterServiceClient) Branches(ctx context.Context, req CollideRequest, opts ...grpc.CallOption) (*BranchesResult, error) {
	res := new(BranchesResult)
	if err := c.call(ctx, MethodBranches, req, res, opts...); err != nil {
		return nil, err
	}
	return res, nil
}

// Batch runs a batch of collisions remotely.
func (c *ScatterServiceClient) Batch(ctx context.Context, req BatchRequest, opts ...grpc.CallOption) (*RunRecord, error) {
	res := new(RunRecord)
	if err := c.call(ctx, MethodBatch, req, res, opts...); err != nil {
		return nil, err
	}
	return res, nil
}

// toStruct converts a JSON-tagged value into a structpb.Struct.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	st := new(structpb.Struct)
	if err := protojson.Unmarshal(b, st); err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return st, nil
}

// fromStruct decodes a structpb.Struct into a JSON-tagged value.
func fromStruct(st *structpb.Struct, v any) error {
	if st == nil {
		return fmt.Errorf("empty message")
	}
	b, err := protojson.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return nil
}
