package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{
			name:    "no trusted proxies ignores headers",
			remote:  "203.0.113.5:4000",
			headers: map[string]string{"X-Real-IP": "198.51.100.1"},
			want:    "203.0.113.5:4000",
		},
		{
			name:    "trusted proxy uses X-Real-IP",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:4000",
			headers: map[string]string{"X-Real-IP": "198.51.100.1", "X-Forwarded-For": "192.0.2.9"},
			want:    "198.51.100.1",
		},
		{
			name:    "trusted proxy falls back to first forwarded hop",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:4000",
			headers: map[string]string{"X-Forwarded-For": "192.0.2.9, 10.1.2.3"},
			want:    "192.0.2.9",
		},
		{
			name:    "bare address entry",
			trusted: []string{"127.0.0.1"},
			remote:  "127.0.0.1:4000",
			headers: map[string]string{"X-Real-IP": "198.51.100.1"},
			want:    "198.51.100.1",
		},
		{
			name:    "untrusted remote keeps address",
			trusted: []string{"10.0.0.0/8"},
			remote:  "203.0.113.5:4000",
			headers: map[string]string{"X-Real-IP": "198.51.100.1"},
			want:    "203.0.113.5:4000",
		},
		{
			name:    "garbage header keeps address",
			trusted: []string{"10.0.0.0/8", "not-a-cidr"},
			remote:  "10.1.2.3:4000",
			headers: map[string]string{"X-Real-IP": "nonsense"},
			want:    "10.1.2.3:4000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	req.RemoteAddr = "[2001:db8::1]:1234"
	assert.Equal(t, "2001:db8::1", ClientIP(req))

	req.RemoteAddr = "[::ffff:192.0.2.1]:1234"
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", ClientIP(req))
}
