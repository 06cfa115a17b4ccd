package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	commercev1 "content-commerce/backend/api/commerce/v1"
	"content-commerce/backend/internal/buying/domain"
	"content-commerce/backend/internal/policy/engine"
	userdomain "content-commerce/backend/internal/user/domain"
)

// mockServiceRegistrar implements grpc.ServiceRegistrar for testing.
type mockServiceRegistrar struct {
	services []string
}

func (m *mockServiceRegistrar) RegisterService(desc *grpc.ServiceDesc, impl interface{}) {
	m.services = append(m.services, desc.ServiceName)
}

func TestRegisterServices_AllServicesRegistered(t *testing.T) {
	mockReg := &mockServiceRegistrar{}
	RegisterServices(mockReg, Deps{Health: health.NewServer()})

	want := append(append([]string{}, ServiceNames...), "grpc.health.v1.Health")
	if len(mockReg.services) != len(want) {
		t.Fatalf("registered %v, want %v", mockReg.services, want)
	}
	for i, name := range want {
		if mockReg.services[i] != name {
			t.Errorf("service[%d] = %q, want %q", i, mockReg.services[i], name)
		}
	}
}

func TestRegisterServices_HealthNotRegisteredWhenNil(t *testing.T) {
	mockReg := &mockServiceRegistrar{}
	RegisterServices(mockReg, Deps{})
	if len(mockReg.services) != len(ServiceNames) {
		t.Errorf("registered %v, want only the commerce services", mockReg.services)
	}
}

type tokenAuth map[string]*userdomain.User

func (a tokenAuth) Authenticate(_ context.Context, key string) (*userdomain.User, error) {
	if u, ok := a[key]; ok {
		return u, nil
	}
	return nil, errors.New("invalid token")
}

type stubBuying struct{ gotUser *userdomain.User }

func (s *stubBuying) Purchase(context.Context, *userdomain.User, string, string) (*domain.Contract, error) {
	return nil, errors.New("not used")
}

func (s *stubBuying) CanAccess(_ context.Context, u *userdomain.User, courseID string) (engine.AccessResult, error) {
	s.gotUser = u
	return engine.AccessResult{Allowed: true}, nil
}

func startServer(t *testing.T, deps Deps, auth tokenAuth) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := grpc.NewServer(ServerOptions(auth, logger)...)
	RegisterServices(s, deps)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestServer_AuthAndDispatch(t *testing.T) {
	buying := &stubBuying{}
	user := &userdomain.User{ID: "user-1", ServiceID: "svc-1"}
	conn := startServer(t, Deps{Buying: buying}, tokenAuth{"key-1": user})
	client := commercev1.NewBuyingServiceClient(conn)
	in, err := structpb.NewStruct(map[string]interface{}{"course_id": "course-1"})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}

	_, err = client.CheckCourseAccess(context.Background(), in)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("no token code = %v, want Unauthenticated", status.Code(err))
	}

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Token key-1")
	resp, err := client.CheckCourseAccess(ctx, in)
	if err != nil {
		t.Fatalf("CheckCourseAccess: %v", err)
	}
	if !resp.GetFields()["allowed"].GetBoolValue() {
		t.Error("allowed = false, want true")
	}
	if buying.gotUser == nil || buying.gotUser.ID != "user-1" {
		t.Errorf("handler saw user %v, want user-1", buying.gotUser)
	}
}

func TestServer_PublicMethodWithoutToken(t *testing.T) {
	conn := startServer(t, Deps{}, tokenAuth{})
	in, _ := structpb.NewStruct(map[string]interface{}{"service": "acme"})

	_, err := commercev1.NewAccountServiceClient(conn).Login(context.Background(), in)
	if status.Code(err) != codes.Unimplemented {
		t.Errorf("code = %v, want Unimplemented from the handler, not Unauthenticated", status.Code(err))
	}
}

func TestServer_HealthIsPublic(t *testing.T) {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	conn := startServer(t, Deps{Health: hs}, tokenAuth{})

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("status = %v, want SERVING", resp.GetStatus())
	}
}
