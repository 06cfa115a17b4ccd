package interceptors

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	userdomain "content-commerce/backend/internal/user/domain"
)

type mockAuthenticator struct {
	users map[string]*userdomain.User
	err   error
	calls int
}

func (m *mockAuthenticator) Authenticate(_ context.Context, key string) (*userdomain.User, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[key]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return u, nil
}

func withAuthorization(v string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", v))
}

func okHandler(ctx context.Context, req interface{}) (interface{}, error) {
	if id, ok := GetUserID(ctx); ok {
		return id, nil
	}
	return "anonymous", nil
}

func TestAuthUnary_PublicMethod(t *testing.T) {
	auth := &mockAuthenticator{}
	interceptor := AuthUnary(auth, map[string]bool{"/test.Service/PublicMethod": true})

	resp, err := interceptor(context.Background(), "request", &grpc.UnaryServerInfo{
		FullMethod: "/test.Service/PublicMethod",
	}, okHandler)
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if resp != "anonymous" {
		t.Errorf("response = %v, want anonymous", resp)
	}
	if auth.calls != 0 {
		t.Errorf("Authenticate called %d times without a token", auth.calls)
	}
}

func TestAuthUnary_PublicMethod_InvalidTokenStillServed(t *testing.T) {
	interceptor := AuthUnary(&mockAuthenticator{}, map[string]bool{"/test.Service/PublicMethod": true})

	resp, err := interceptor(withAuthorization("Token nope"), "request", &grpc.UnaryServerInfo{
		FullMethod: "/test.Service/PublicMethod",
	}, okHandler)
	if err != nil {
		t.Fatalf("interceptor: %v", err)
	}
	if resp != "anonymous" {
		t.Errorf("response = %v, want anonymous", resp)
	}
}

func TestAuthUnary_ProtectedMethod_NoToken(t *testing.T) {
	interceptor := AuthUnary(&mockAuthenticator{}, map[string]bool{})

	_, err := interceptor(context.Background(), "request", &grpc.UnaryServerInfo{
		FullMethod: "/test.Service/ProtectedMethod",
	}, okHandler)
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("code = %v, want Unauthenticated", status.Code(err))
	}
}

func TestAuthUnary_ProtectedMethod_InvalidToken(t *testing.T) {
	interceptor := AuthUnary(&mockAuthenticator{err: errors.New("db down")}, map[string]bool{})

	_, err := interceptor(withAuthorization("Bearer abc"), "request", &grpc.UnaryServerInfo{
		FullMethod: "/test.Service/ProtectedMethod",
	}, okHandler)
	if status.Code(err) != codes.Unauthenticated {
		t.Errorf("code = %v, want Unauthenticated", status.Code(err))
	}
}

func TestAuthUnary_ProtectedMethod_ValidToken(t *testing.T) {
	auth := &mockAuthenticator{users: map[string]*userdomain.User{
		"key-1": {ID: "user-1", ServiceID: "svc-1"},
	}}
	interceptor := AuthUnary(auth, map[string]bool{})

	for _, header := range []string{"Bearer key-1", "Token key-1", "token   key-1"} {
		resp, err := interceptor(withAuthorization(header), "request", &grpc.UnaryServerInfo{
			FullMethod: "/test.Service/ProtectedMethod",
		}, okHandler)
		if err != nil {
			t.Fatalf("%q: interceptor: %v", header, err)
		}
		if resp != "user-1" {
			t.Errorf("%q: response = %v, want user-1", header, resp)
		}
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{"no metadata", context.Background(), ""},
		{"bearer", withAuthorization("Bearer abc"), "abc"},
		{"token", withAuthorization("Token abc"), "abc"},
		{"unknown scheme", withAuthorization("Basic abc"), ""},
		{"too short", withAuthorization("Tok"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractToken(tt.ctx); got != tt.want {
				t.Errorf("extractToken = %q, want %q", got, tt.want)
			}
		})
	}
}
