package interceptors

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LoggingUnary returns a unary server interceptor that logs one line per RPC with
// method, status code, duration, client IP and, when authenticated, user and
// service. skipMethods is the set of full method names to not log (e.g. Health Check).
func LoggingUnary(logger *slog.Logger, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if skipMethods[info.FullMethod] {
			return resp, err
		}
		code := status.Code(err)
		attrs := []any{
			"method", info.FullMethod,
			"code", code.String(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", ClientIP(ctx),
		}
		if userID, ok := GetUserID(ctx); ok {
			attrs = append(attrs, "user_id", userID)
		}
		if serviceID, ok := GetServiceID(ctx); ok {
			attrs = append(attrs, "service_id", serviceID)
		}
		switch code {
		case codes.OK:
			logger.InfoContext(ctx, "grpc request", attrs...)
		case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
			logger.ErrorContext(ctx, "grpc request", append(attrs, "error", err)...)
		default:
			logger.WarnContext(ctx, "grpc request", append(attrs, "error", err)...)
		}
		return resp, err
	}
}
