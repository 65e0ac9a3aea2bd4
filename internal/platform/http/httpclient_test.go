package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewHTTPClient_Timeout(t *testing.T) {
	t.Parallel()

	c := NewHTTPClient(7 * time.Second)

	if c.Timeout != 7*time.Second {
		t.Errorf("expected timeout 7s, got %v", c.Timeout)
	}
}

func TestNewHTTPClient_UserAgent(t *testing.T) {
	t.Parallel()

	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewHTTPClient(time.Second)

	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Body.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("User-Agent", "custom/2.0")
	resp, err = c.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Body.Close()

	if len(got) != 2 || got[0] != UserAgent || got[1] != "custom/2.0" {
		t.Errorf("unexpected user agents %v", got)
	}
}
