package api

import (
	"context"
	"encoding/json"
	"log"

	"materials-quote-service/internal/structural"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// QuoteEngineServiceName is the fully-qualified gRPC service name.
const QuoteEngineServiceName = "quoteengine.v1.QuoteEngine"

// QuoteEngineServer is the gRPC surface. Requests and responses are
// google.protobuf.Struct documents with the same shape as the HTTP bodies.
type QuoteEngineServer interface {
	ExtractAttributes(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResolveItems(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ValidateQuote(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BuildQuote(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SizeDeck(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structMethod func(QuoteEngineServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call structMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(QuoteEngineServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + QuoteEngineServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(QuoteEngineServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// QuoteEngineServiceDesc describes the QuoteEngine service for grpc.Server.
var QuoteEngineServiceDesc = grpc.ServiceDesc{
	ServiceName: QuoteEngineServiceName,
	HandlerType: (*QuoteEngineServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("ExtractAttributes", QuoteEngineServer.ExtractAttributes),
		unaryMethod("ResolveItems", QuoteEngineServer.ResolveItems),
		unaryMethod("ValidateQuote", QuoteEngineServer.ValidateQuote),
		unaryMethod("BuildQuote", QuoteEngineServer.BuildQuote),
		unaryMethod("SizeDeck", QuoteEngineServer.SizeDeck),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "quoteengine/v1/quote_engine.proto",
}

// RegisterQuoteEngineServer registers srv with a gRPC server.
func RegisterQuoteEngineServer(s grpc.ServiceRegistrar, srv QuoteEngineServer) {
	s.RegisterService(&QuoteEngineServiceDesc, srv)
}

// GRPCHandler implements QuoteEngineServer on top of an Engine.
type GRPCHandler struct {
	engine *Engine
}

// NewGRPCHandler creates a new GRPCHandler.
func NewGRPCHandler(engine *Engine) *GRPCHandler {
	return &GRPCHandler{engine: engine}
}

var _ QuoteEngineServer = (*GRPCHandler)(nil)

// --- Helper: Conversion and Error Mapping ---

func fromStruct(in *structpb.Struct, dst interface{}) error {
	raw, err := protojson.Marshal(in)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "Invalid request document: %v", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return status.Errorf(codes.InvalidArgument, "Invalid request payload: %v", err)
	}
	return nil
}

func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to encode response: %v", err)
	}
	return out, nil
}

func mapEngineErrorToGrpcStatus(op string, err error) error {
	if err == nil {
		return nil
	}
	if isCallerError(err) {
		log.Printf("WARN: gRPC %s rejected: %v", op, err)
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if s, ok := status.FromError(err); ok {
		return s.Err()
	}
	log.Printf("ERROR: gRPC %s failed: %v", op, err)
	return status.Errorf(codes.Internal, "Failed to process %s: %v", op, err)
}

// --- QuoteEngine gRPC Methods Implementation ---

func (s *GRPCHandler) ExtractAttributes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in ExtractInput
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	log.Printf("INFO: Received gRPC ExtractAttributes request for %d names", len(in.Names))
	resp, err := s.engine.ExtractAttributes(in)
	if err != nil {
		return nil, mapEngineErrorToGrpcStatus("ExtractAttributes", err)
	}
	return toStruct(resp)
}

func (s *GRPCHandler) ResolveItems(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in ResolveInput
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	log.Printf("INFO: Received gRPC ResolveItems request with %d suggestions", len(in.Suggestions))
	resp, err := s.engine.ResolveItems(in)
	if err != nil {
		return nil, mapEngineErrorToGrpcStatus("ResolveItems", err)
	}
	return toStruct(resp)
}

func (s *GRPCHandler) ValidateQuote(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in ValidateInput
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	log.Printf("INFO: Received gRPC ValidateQuote request for job %q with %d items", in.JobType, len(in.Items))
	resp, err := s.engine.ValidateQuote(in)
	if err != nil {
		return nil, mapEngineErrorToGrpcStatus("ValidateQuote", err)
	}
	return toStruct(resp)
}

func (s *GRPCHandler) BuildQuote(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in QuoteInput
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	log.Printf("INFO: Received gRPC BuildQuote request for job %q", in.JobType)
	q, err := s.engine.BuildQuote(ctx, in)
	if err != nil {
		return nil, mapEngineErrorToGrpcStatus("BuildQuote", err)
	}
	return toStruct(q)
}

func (s *GRPCHandler) SizeDeck(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in structural.Geometry
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	resp, err := s.engine.SizeDeck(in)
	if err != nil {
		return nil, mapEngineErrorToGrpcStatus("SizeDeck", err)
	}
	return toStruct(resp)
}
