package tenant

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/pranzo/pricing-api/internal/common"
)

type contextKey string

const orgContextKey contextKey = "tenant.org"

// Resolver resolves organization identifiers from HTTP requests using either
// headers or subdomains. There is deliberately no default organization: a
// request that cannot be scoped is rejected, never attributed to an
// arbitrary active organization.
type Resolver struct {
	HeaderName string
	RootDomain string
}

// NewResolver returns a resolver configured with the provided header name and
// root domain. If headerName is empty, "X-Org-ID" is used.
func NewResolver(headerName, rootDomain string) *Resolver {
	if headerName == "" {
		headerName = "X-Org-ID"
	}
	return &Resolver{
		HeaderName: headerName,
		RootDomain: strings.ToLower(strings.TrimSpace(rootDomain)),
	}
}

// Middleware resolves the organization from the request and injects it into
// the context passed downstream.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	if r == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if orgID := r.Resolve(req); orgID != "" {
			req = req.WithContext(With(req.Context(), orgID))
		}
		next.ServeHTTP(w, req)
	})
}

// Require rejects requests that carry no organization scope.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := From(r.Context()); !ok {
			common.JSONError(w, http.StatusBadRequest, common.CodeOrgRequired, "organization scope is required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Resolve attempts to find the organization identifier from the configured
// header or the request subdomain.
func (r *Resolver) Resolve(req *http.Request) string {
	if r == nil || req == nil {
		return ""
	}
	if orgID := strings.TrimSpace(req.Header.Get(r.HeaderName)); orgID != "" {
		return orgID
	}

	host := hostWithoutPort(req.Host)
	if host == "" {
		return ""
	}
	return strings.TrimSpace(r.subdomainFromHost(host))
}

func (r *Resolver) subdomainFromHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return ""
	}

	if r.RootDomain != "" {
		if host == r.RootDomain {
			return ""
		}
		suffix := "." + r.RootDomain
		if strings.HasSuffix(host, suffix) {
			host = strings.TrimSuffix(host, suffix)
		} else {
			return ""
		}
	}

	parts := strings.Split(host, ".")
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func hostWithoutPort(hostport string) string {
	hostport = strings.TrimSpace(hostport)
	if hostport == "" {
		return ""
	}
	if strings.HasPrefix(hostport, "[") {
		if idx := strings.Index(hostport, "]"); idx != -1 {
			host := hostport[1:idx]
			if host != "" {
				return host
			}
		}
	}
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	if idx := strings.Index(hostport, ":"); idx != -1 && strings.Count(hostport, ":") == 1 {
		return hostport[:idx]
	}
	return hostport
}

// With stores the organization identifier inside the context.
func With(ctx context.Context, orgID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, orgContextKey, orgID)
}

// From extracts the organization identifier from the context if available.
func From(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	orgID, ok := ctx.Value(orgContextKey).(string)
	if !ok {
		return "", false
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return "", false
	}
	return orgID, true
}
