package connectivity

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	assert.True(t, Static(true).IsConnected(context.Background()))
	assert.False(t, Static(false).IsConnected(context.Background()))
}

func TestDialChecker_ReachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c, err := ForURL(srv.URL)
	require.NoError(t, err)
	assert.True(t, c.IsConnected(context.Background()))
}

func TestDialChecker_ClosedPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c := &DialChecker{Addr: addr, Timeout: time.Second}
	assert.False(t, c.IsConnected(context.Background()))
}

func TestDialChecker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &DialChecker{Addr: "192.0.2.1:443"}
	assert.False(t, c.IsConnected(ctx))
}

func TestDialChecker_Nil(t *testing.T) {
	var c *DialChecker
	assert.False(t, c.IsConnected(context.Background()))
}

func TestForURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://api.example.com/v1/", "api.example.com:443", false},
		{"http://api.example.com", "api.example.com:80", false},
		{"api.example.com:8443", "api.example.com:8443", false},
		{"http://[::1]:9000/", "[::1]:9000", false},
		{"https://", "", true},
	}
	for _, tt := range tests {
		c, err := ForURL(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, c.Addr, tt.in)
	}
}

func TestDialChecker_UsesInjectedDialer(t *testing.T) {
	var gotAddr string
	c := &DialChecker{
		Addr: "example.invalid:443",
		dial: func(ctx context.Context, network, addr string) (net.Conn, error) {
			gotAddr = addr
			client, server := net.Pipe()
			_ = server.Close()
			return client, nil
		},
	}
	assert.True(t, c.IsConnected(context.Background()))
	assert.Equal(t, "example.invalid:443", gotAddr)
}
