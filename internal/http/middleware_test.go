package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpalette/genstudio/internal/domain/model"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		expected   string
	}{
		{
			name:       "forwarded-for takes precedence",
			forwarded:  "203.0.113.7, 10.0.0.2",
			realIP:     "198.51.100.1",
			remoteAddr: "10.0.0.1:4567",
			expected:   "203.0.113.7",
		},
		{
			name:       "real-ip when no forwarded-for",
			realIP:     "198.51.100.1",
			remoteAddr: "10.0.0.1:4567",
			expected:   "198.51.100.1",
		},
		{
			name:       "remote addr host as fallback",
			remoteAddr: "10.0.0.1:4567",
			expected:   "10.0.0.1",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "10.0.0.1",
			expected:   "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-Ip", tt.realIP)
			}
			assert.Equal(t, tt.expected, ClientIP(req))
		})
	}
}

func TestIdentityFromRequest(t *testing.T) {
	tiers := staticTiers{"basic": {Tier: "basic", DailyCap: 50, MonthlyCap: 500}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-Id", "user-1")
	req.Header.Set("X-Plan-Tier", "basic")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")

	identity := IdentityFromRequest(req, tiers)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, "203.0.113.7", identity.IP)
	assert.Equal(t, "basic", identity.Plan.Tier)
	assert.Equal(t, 50, identity.Plan.DailyCap)
	assert.False(t, identity.Anonymous())
}

func TestIdentityFromRequestAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4567"

	identity := IdentityFromRequest(req, nil)
	assert.True(t, identity.Anonymous())
	assert.Equal(t, "10.0.0.1", identity.IP)
	assert.Equal(t, model.PlanSnapshot{}, identity.Plan)
}

func TestHealthz(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
