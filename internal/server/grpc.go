package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/freight-orders/internal/common"
)

const orderServiceName = "orders.v1.OrderService"

// OrderServiceServer is the server API for orders.v1.OrderService.
type OrderServiceServer interface {
	ExtractLines(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExtractFile(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterOrderServiceServer registers srv on s.
func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&orderServiceDesc, srv)
}

var orderServiceDesc = grpc.ServiceDesc{
	ServiceName: orderServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ExtractLines", Handler: unaryHandler("ExtractLines", OrderServiceServer.ExtractLines)},
		{MethodName: "ExtractFile", Handler: unaryHandler("ExtractFile", OrderServiceServer.ExtractFile)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "orders/v1/orders.proto",
}

func unaryHandler(
	method string,
	call func(OrderServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error),
) grpc.MethodHandler {
	fullMethod := "/" + orderServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(OrderServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(OrderServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// LoggingInterceptor tags each call with a request id and logs its outcome.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, requestID := common.EnsureRequestID(ctx)
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc.call",
			"method", info.FullMethod,
			"request_id", requestID,
			"code", status.Code(err).String(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}

// NewGRPCServer builds a server carrying the order, health and reflection
// services.
func NewGRPCServer(orders OrderServiceServer, logger *slog.Logger) (*grpc.Server, *health.Server) {
	s := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(logger)))
	RegisterOrderServiceServer(s, orders)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(orderServiceName, healthpb.HealthCheckResponse_SERVING)

	// Reflection for grpcurl
	reflection.Register(s)
	return s, hs
}
