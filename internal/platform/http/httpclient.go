// Package http builds the outbound HTTP client used for the identity provider API.
package http

import (
	"net"
	"net/http"
	"time"
)

// UserAgent is sent on every outbound request that does not set its own.
const UserAgent = "course-backend/1.0"

// NewHTTPClient returns a client with explicit dial, TLS and idle timeouts.
// http.DefaultClient has no timeout at all, so outbound calls never use it.
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: &userAgentTransport{next: t}}
}

type userAgentTransport struct {
	next http.RoundTripper
}

func (u *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", UserAgent)
	return u.next.RoundTrip(r)
}
