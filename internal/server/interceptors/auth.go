package interceptors

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	userdomain "content-commerce/backend/internal/user/domain"
)

var tokenPrefixes = []string{"bearer ", "token "}

// Authenticator resolves an API token key to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (*userdomain.User, error)
}

// AuthUnary returns a unary server interceptor that resolves the API token from
// the authorization metadata and stores the user in context for protected RPCs.
// publicMethods is the set of full method names that do not require a token
// (e.g. AccountService Register, Login, ConfirmEmail; Health Check).
func AuthUnary(auth Authenticator, publicMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		key := extractToken(ctx)
		public := publicMethods[info.FullMethod]

		if key == "" {
			if public {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
		}

		u, err := auth.Authenticate(ctx, key)
		if err != nil || u == nil {
			if public {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
		}

		return handler(WithUser(ctx, u), req)
	}
}

// extractToken returns the token from the authorization metadata, accepting the
// "Bearer" and "Token" schemes. Returns "" if missing or malformed.
func extractToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	v := strings.TrimSpace(vals[0])
	for _, prefix := range tokenPrefixes {
		if len(v) < len(prefix) {
			continue
		}
		if strings.EqualFold(v[:len(prefix)], prefix) {
			return strings.TrimSpace(v[len(prefix):])
		}
	}
	return ""
}
