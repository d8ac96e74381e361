package profile

import (
	"context"
	"fmt"

	"porkbun_console/internal/porkbun"
)

// ActiveClient builds a Porkbun API client from the store's active
// profile. Callers construct a fresh client per request so a profile
// switch takes effect immediately.
func ActiveClient(s *Store, baseURL string) (*porkbun.Client, *Profile, error) {
	p := s.Active()
	if p == nil {
		return nil, nil, fmt.Errorf("no active API profile configured")
	}

	var opts []porkbun.Option
	if baseURL != "" {
		opts = append(opts, porkbun.WithBaseURL(baseURL))
	}
	return porkbun.NewClient(p.APIKey, p.SecretAPIKey, opts...), p, nil
}

// ActiveGateway resolves the active profile on every call, so
// long-lived workers pick up profile switches without a rebuild.
type ActiveGateway struct {
	Store   *Store
	BaseURL string
}

// GetNameservers proxies to the active profile's client
func (g *ActiveGateway) GetNameservers(ctx context.Context, domain string) ([]string, error) {
	client, _, err := ActiveClient(g.Store, g.BaseURL)
	if err != nil {
		return nil, err
	}
	return client.GetNameservers(ctx, domain)
}

// ListDomainNames returns the active account's domain names
func (g *ActiveGateway) ListDomainNames(ctx context.Context) ([]string, error) {
	client, _, err := ActiveClient(g.Store, g.BaseURL)
	if err != nil {
		return nil, err
	}
	domains, err := client.ListDomains(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(domains))
	for _, d := range domains {
		names = append(names, d.Domain)
	}
	return names, nil
}
