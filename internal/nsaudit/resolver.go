package nsaudit

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// Resolver cross-checks audit findings against the live DNS tree, since
// registrar data and actual delegation can disagree while a change is
// propagating.
type Resolver struct {
	server string
	client *dns.Client
}

// NewResolver creates a resolver that queries the given DNS server
// (host:port, e.g. "1.1.1.1:53")
func NewResolver(server string) *Resolver {
	return &Resolver{
		server: server,
		client: &dns.Client{Timeout: 5 * time.Second},
	}
}

// LookupNS returns the NS records currently served for a domain, sorted,
// with trailing dots removed
func (r *Resolver) LookupNS(domain string) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeNS)
	msg.RecursionDesired = true

	resp, _, err := r.client.Exchange(msg, r.server)
	if err != nil {
		return nil, fmt.Errorf("NS query for %s failed: %w", domain, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("NS query for %s returned %s", domain, dns.RcodeToString[resp.Rcode])
	}

	var hosts []string
	for _, rr := range resp.Answer {
		if ns, ok := rr.(*dns.NS); ok {
			hosts = append(hosts, strings.TrimSuffix(ns.Ns, "."))
		}
	}
	sort.Strings(hosts)
	return hosts, nil
}
