// Package connectivity answers whether the anagram service is reachable
// before a submission is attempted.
package connectivity

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// Checker reports network reachability.
type Checker interface {
	IsConnected(ctx context.Context) bool
}

// Static always reports the same answer.
type Static bool

func (s Static) IsConnected(context.Context) bool { return bool(s) }

// DialChecker opens and immediately closes a TCP connection to Addr.
type DialChecker struct {
	Addr    string
	Timeout time.Duration
	dial    func(ctx context.Context, network, addr string) (net.Conn, error)
}

const defaultDialTimeout = 3 * time.Second

// ForURL builds a DialChecker aimed at the host of rawURL, defaulting the
// port from the scheme.
func ForURL(rawURL string) (*DialChecker, error) {
	trimmed := strings.TrimSpace(rawURL)
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("url %q has no host", rawURL)
	}
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	return &DialChecker{Addr: net.JoinHostPort(u.Hostname(), port)}, nil
}

func (d *DialChecker) IsConnected(ctx context.Context) bool {
	if d == nil || d.Addr == "" {
		return false
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dial := d.dial
	if dial == nil {
		var dialer net.Dialer
		dial = dialer.DialContext
	}
	conn, err := dial(ctx, "tcp", d.Addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
