package tenant_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pranzo/pricing-api/internal/tenant"
)

func TestResolveFromHeader(t *testing.T) {
	r := tenant.NewResolver("", "pranzo.app")
	req := httptest.NewRequest(http.MethodPost, "http://api.pranzo.app/api/v1/quotes", nil)
	req.Header.Set("X-Org-ID", "org-42")
	require.Equal(t, "org-42", r.Resolve(req))
}

func TestResolveFromSubdomain(t *testing.T) {
	r := tenant.NewResolver("", "pranzo.app")
	req := httptest.NewRequest(http.MethodPost, "http://trattoria.pranzo.app/api/v1/quotes", nil)
	require.Equal(t, "trattoria", r.Resolve(req))

	// Root domain itself carries no organization.
	req = httptest.NewRequest(http.MethodPost, "http://pranzo.app/api/v1/quotes", nil)
	require.Equal(t, "", r.Resolve(req))

	// Foreign hosts resolve to nothing rather than guessing.
	req = httptest.NewRequest(http.MethodPost, "http://evil.example.com/api/v1/quotes", nil)
	require.Equal(t, "", r.Resolve(req))
}

func TestRequireRejectsUnscopedRequests(t *testing.T) {
	called := false
	handler := tenant.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.False(t, called, "handler must not run without an organization")
	require.Contains(t, rr.Body.String(), "ORG_REQUIRED")
}

func TestMiddlewareInjectsContext(t *testing.T) {
	r := tenant.NewResolver("", "")
	var got string
	handler := r.Middleware(tenant.Require(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		got, _ = tenant.From(req.Context())
	})))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Org-ID", "  org-7  ")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "org-7", got)
}
