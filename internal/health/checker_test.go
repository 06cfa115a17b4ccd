package health

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type mockPinger struct{ err error }

func (m mockPinger) PingContext(context.Context) error { return m.err }

type mockPolicyChecker struct{ err error }

func (m mockPolicyChecker) HealthCheck(context.Context) error { return m.err }

func statusOf(t *testing.T, s *health.Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := s.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("Check(%q): %v", service, err)
	}
	return resp.GetStatus()
}

func TestUpdate_Serving(t *testing.T) {
	srv := health.NewServer()
	c := NewChecker(mockPinger{}, mockPolicyChecker{}, srv, nil)

	if got := c.Update(context.Background(), "commerce.v1.BuyingService"); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("Update = %v, want SERVING", got)
	}
	if got := statusOf(t, srv, ""); got != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("overall = %v, want SERVING", got)
	}
	if got := statusOf(t, srv, "commerce.v1.BuyingService"); got != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("service = %v, want SERVING", got)
	}
}

func TestUpdate_NotServing(t *testing.T) {
	tests := []struct {
		name   string
		db     Pinger
		policy PolicyChecker
	}{
		{"db down", mockPinger{err: errors.New("connection refused")}, mockPolicyChecker{}},
		{"policy broken", mockPinger{}, mockPolicyChecker{err: errors.New("compile failed")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := health.NewServer()
			c := NewChecker(tt.db, tt.policy, srv, nil)
			if got := c.Update(context.Background()); got != healthpb.HealthCheckResponse_NOT_SERVING {
				t.Errorf("Update = %v, want NOT_SERVING", got)
			}
			if got := statusOf(t, srv, ""); got != healthpb.HealthCheckResponse_NOT_SERVING {
				t.Errorf("overall = %v, want NOT_SERVING", got)
			}
		})
	}
}

func TestCheck_NilDependenciesSkipped(t *testing.T) {
	c := NewChecker(nil, nil, health.NewServer(), nil)
	if err := c.Check(context.Background()); err != nil {
		t.Errorf("Check: %v", err)
	}
}
