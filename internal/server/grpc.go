package server

import (
	"log/slog"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	commercev1 "content-commerce/backend/api/commerce/v1"
	accounthandler "content-commerce/backend/internal/account/handler"
	buyinghandler "content-commerce/backend/internal/buying/handler"
	"content-commerce/backend/internal/server/interceptors"
	socialhandler "content-commerce/backend/internal/social/handler"
)

// Deps holds optional service dependencies for gRPC handlers.
type Deps struct {
	// Accounts serves Register/Login/ConfirmEmail. If nil, account RPCs return Unimplemented.
	Accounts accounthandler.Accounts
	// Buying serves CreateContract/CheckCourseAccess. If nil, buying RPCs return Unimplemented.
	Buying buyinghandler.Buying
	// Social serves ProvisionGuests/MentionUser/PublishPost. If nil, social RPCs return Unimplemented.
	Social socialhandler.Social
	// Events resolves events for the ProvisionGuests caller check (e.g. the social repository).
	Events socialhandler.EventGetter
	// Health is the standard health server. If nil, the health service is not registered.
	Health *health.Server
}

// ServiceNames lists the commerce services whose health status follows the readiness checks.
var ServiceNames = []string{
	commercev1.AccountService_ServiceDesc.ServiceName,
	commercev1.BuyingService_ServiceDesc.ServiceName,
	commercev1.SocialService_ServiceDesc.ServiceName,
}

// PublicMethods are the full method names served without an auth token.
func PublicMethods() map[string]bool {
	return map[string]bool{
		commercev1.AccountService_Register_FullMethodName:     true,
		commercev1.AccountService_Login_FullMethodName:        true,
		commercev1.AccountService_ConfirmEmail_FullMethodName: true,
		healthpb.Health_Check_FullMethodName:                  true,
		healthpb.Health_Watch_FullMethodName:                  true,
	}
}

// ServerOptions returns the interceptor chain (auth, then request logging) and
// the OpenTelemetry stats handler.
func ServerOptions(auth interceptors.Authenticator, logger *slog.Logger) []grpc.ServerOption {
	skip := map[string]bool{
		healthpb.Health_Check_FullMethodName: true,
		healthpb.Health_Watch_FullMethodName: true,
	}
	return []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.AuthUnary(auth, PublicMethods()),
			interceptors.LoggingUnary(logger, skip),
		),
	}
}

// RegisterServices registers all gRPC services with the given server.
//
// Service → handler mapping:
//   - AccountService → internal/account/handler
//   - BuyingService  → internal/buying/handler
//   - SocialService  → internal/social/handler
//   - Health         → google.golang.org/grpc/health, driven by internal/health
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	commercev1.RegisterAccountServiceServer(s, accounthandler.NewServer(deps.Accounts))
	commercev1.RegisterBuyingServiceServer(s, buyinghandler.NewServer(deps.Buying))
	commercev1.RegisterSocialServiceServer(s, socialhandler.NewServer(deps.Social, deps.Events))
	if deps.Health != nil {
		healthpb.RegisterHealthServer(s, deps.Health)
	}
}
