package interceptors

import (
	"context"
	"net"
	"strings"

	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"

	userdomain "content-commerce/backend/internal/user/domain"
)

type contextKey struct{ name string }

var (
	userKey      = contextKey{"user"}
	userIDKey    = contextKey{"user_id"}
	serviceIDKey = contextKey{"service_id"}
)

// WithUser returns a context carrying the authenticated user, its user_id and
// service_id. Handlers read them via GetUser, GetUserID, GetServiceID.
func WithUser(ctx context.Context, u *userdomain.User) context.Context {
	if u == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, userKey, u)
	ctx = context.WithValue(ctx, userIDKey, u.ID)
	ctx = context.WithValue(ctx, serviceIDKey, u.ServiceID)
	return ctx
}

// GetUser returns the authenticated user and true if set; otherwise nil, false.
func GetUser(ctx context.Context) (*userdomain.User, bool) {
	u, ok := ctx.Value(userKey).(*userdomain.User)
	return u, ok && u != nil
}

// GetUserID returns the user_id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

// GetServiceID returns the service_id from context and true if set; otherwise "", false.
func GetServiceID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(serviceIDKey).(string)
	return v, ok
}

// ClientIP returns the caller address: the first X-Forwarded-For entry, then
// X-Real-IP, then the peer address. "unknown" when none is available.
func ClientIP(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get("x-forwarded-for"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				if i := strings.Index(s, ","); i > 0 {
					s = strings.TrimSpace(s[:i])
				}
				return s
			}
		}
		if vals := md.Get("x-real-ip"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				return s
			}
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}
	return "unknown"
}
