package interceptors

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"

	userdomain "content-commerce/backend/internal/user/domain"
)

func TestWithUser_SetsAllValues(t *testing.T) {
	u := &userdomain.User{ID: "user-1", ServiceID: "svc-1"}
	ctx := WithUser(context.Background(), u)

	got, ok := GetUser(ctx)
	if !ok || got != u {
		t.Fatalf("GetUser = %v, %v; want the stored user", got, ok)
	}
	userID, ok := GetUserID(ctx)
	if !ok || userID != "user-1" {
		t.Errorf("user_id = %q, %v; want user-1", userID, ok)
	}
	serviceID, ok := GetServiceID(ctx)
	if !ok || serviceID != "svc-1" {
		t.Errorf("service_id = %q, %v; want svc-1", serviceID, ok)
	}
}

func TestWithUser_NilLeavesContext(t *testing.T) {
	ctx := WithUser(context.Background(), nil)
	if _, ok := GetUser(ctx); ok {
		t.Error("GetUser should return false for a nil user")
	}
	if _, ok := GetUserID(ctx); ok {
		t.Error("GetUserID should return false for a nil user")
	}
}

func TestGetUserID_ReturnsFalseWhenNotSet(t *testing.T) {
	userID, ok := GetUserID(context.Background())
	if ok {
		t.Error("GetUserID should return false when not set")
	}
	if userID != "" {
		t.Errorf("user_id = %q, want empty string", userID)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{
			name: "forwarded for",
			ctx:  metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-forwarded-for", "203.0.113.7, 10.0.0.1")),
			want: "203.0.113.7",
		},
		{
			name: "real ip",
			ctx:  metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-real-ip", "198.51.100.2")),
			want: "198.51.100.2",
		},
		{
			name: "peer",
			ctx:  peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.ParseIP("192.0.2.1"), Port: 5000}}),
			want: "192.0.2.1",
		},
		{
			name: "unknown",
			ctx:  context.Background(),
			want: "unknown",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClientIP(tt.ctx); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
