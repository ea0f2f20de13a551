package netutil

import (
	"net/http"
	"testing"
	"time"
)

func TestNewHTTPClient(t *testing.T) {
	tests := []struct {
		name    string
		proxy   string
		wantErr bool
	}{
		{"direct", "", false},
		{"http proxy", "http://127.0.0.1:8080", false},
		{"socks5 proxy", "socks5://127.0.0.1:1080", false},
		{"unsupported", "ftp://127.0.0.1:21", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewHTTPClient(30*time.Second, tt.proxy)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewHTTPClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if c.Timeout != 30*time.Second {
				t.Errorf("Timeout = %v", c.Timeout)
			}
			tr := c.Transport.(*http.Transport)
			if tt.proxy == "http://127.0.0.1:8080" && tr.Proxy == nil {
				t.Error("http proxy not installed")
			}
		})
	}
}
