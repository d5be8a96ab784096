package api

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type switchPinger struct {
	err chan error
}

func (p *switchPinger) Ping(ctx context.Context) error {
	select {
	case err := <-p.err:
		return err
	default:
		return nil
	}
}

func startHealthServer(t *testing.T, checks map[string]Pinger) (*HealthServer, healthpb.HealthClient) {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	server := NewHealthServer(checks, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = server.Serve(ctx, lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		server.Stop()
		cancel()
		<-done
	})
	return server, healthpb.NewHealthClient(conn)
}

func TestHealthServer_Serving(t *testing.T) {
	_, client := startHealthServer(t, map[string]Pinger{
		"postgres":   mockPinger{},
		"clickhouse": mockPinger{},
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, service := range []string{"", "postgres", "clickhouse"} {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
		require.NoError(t, err, service)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus(), service)
	}
}

func TestHealthServer_ComponentDown(t *testing.T) {
	redis := &switchPinger{err: make(chan error, 1)}
	server, client := startHealthServer(t, map[string]Pinger{
		"postgres": mockPinger{},
		"redis":    redis,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redis.err <- errors.New("connection refused")
	assert.False(t, server.Check(ctx))

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "redis"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: ""})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	// recovers on the next probe
	assert.True(t, server.Check(ctx))
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: ""})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
