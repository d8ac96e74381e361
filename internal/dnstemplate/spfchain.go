package dnstemplate

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"porkbun_console/internal/dnstypes"
)

const (
	labelAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	// minLabelFloor is the hard lower bound on random label length
	minLabelFloor = 30

	// DefaultChainDepth is the number of intermediate random-label hops
	DefaultChainDepth = 4

	// DefaultMinLabelLength is the default random label length
	DefaultMinLabelLength = 32

	// DefaultFinalContent is the SPF policy the chain ends in when the
	// caller leaves it blank
	DefaultFinalContent = "v=spf1 include:_spf.AUTUMNWINDZ.COM ~all"
)

// TemplateResult is the set of DNS records generated for one domain.
// Metadata describes the generation so callers can audit exactly what was
// created without re-deriving it.
type TemplateResult struct {
	Records  []dnstypes.RecordRequest `json:"records"`
	Metadata map[string]any           `json:"metadata"`
}

// SPFChainOptions tunes the SPF redirect chain generation
type SPFChainOptions struct {
	ChainDepth     int    // intermediate random-label hops; 0 means direct include
	MinLabelLength int    // floor-enforced at 30
	FinalContent   string // SPF policy at the end of the chain
}

// randomLabel generates a random lowercase alphanumeric label. Labels must
// not be guessable, so this always draws from crypto/rand.
func randomLabel(minLength int) (string, error) {
	length := minLength
	if length < minLabelFloor {
		length = minLabelFloor
	}

	var sb strings.Builder
	sb.Grow(length)
	max := big.NewInt(int64(len(labelAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		sb.WriteByte(labelAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// GenerateSPFChain builds an SPF redirect chain for a domain: a wildcard TXT
// record pointing every subdomain at _spf, then _spf redirecting through
// ChainDepth random-label hops before landing on FinalContent.
func GenerateSPFChain(domain string, opts SPFChainOptions) (*TemplateResult, error) {
	if strings.TrimSpace(domain) == "" {
		return nil, fmt.Errorf("domain must not be empty")
	}

	chainDepth := opts.ChainDepth
	if chainDepth < 0 {
		chainDepth = 0
	}

	finalContent := strings.TrimSpace(opts.FinalContent)
	if finalContent == "" {
		finalContent = DefaultFinalContent
	}

	// Labels are collision-checked only within this call
	labels := make([]string, 0, chainDepth)
	seen := make(map[string]struct{}, chainDepth)
	for len(labels) < chainDepth {
		candidate, err := randomLabel(opts.MinLabelLength)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		labels = append(labels, candidate)
	}

	wildcardTarget := fmt.Sprintf("_spf.%s.", domain)
	records := []dnstypes.RecordRequest{
		{
			Type:    dnstypes.TypeTXT,
			Name:    "*",
			Content: "v=spf1 redirect=" + wildcardTarget,
			TTL:     dnstypes.MinTTL,
			Notes:   "SPF chain wildcard redirect",
		},
	}

	if len(labels) > 0 {
		// _spf redirects into the first random label
		records = append(records, dnstypes.RecordRequest{
			Type:    dnstypes.TypeTXT,
			Name:    "_spf",
			Content: fmt.Sprintf("v=spf1 redirect=%s.%s.", labels[0], domain),
			TTL:     dnstypes.MinTTL,
			Notes:   "SPF chain hop",
		})

		for i := 0; i < len(labels)-1; i++ {
			records = append(records, dnstypes.RecordRequest{
				Type:    dnstypes.TypeTXT,
				Name:    labels[i],
				Content: fmt.Sprintf("v=spf1 redirect=%s.%s.", labels[i+1], domain),
				TTL:     dnstypes.MinTTL,
				Notes:   "SPF chain hop",
			})
		}

		records = append(records, dnstypes.RecordRequest{
			Type:    dnstypes.TypeTXT,
			Name:    labels[len(labels)-1],
			Content: finalContent,
			TTL:     dnstypes.MinTTL,
			Notes:   "SPF chain final stage",
		})
	} else {
		// Direct include without hops
		records = append(records, dnstypes.RecordRequest{
			Type:    dnstypes.TypeTXT,
			Name:    "_spf",
			Content: finalContent,
			TTL:     dnstypes.MinTTL,
			Notes:   "SPF direct include",
		})
	}

	return &TemplateResult{
		Records: records,
		Metadata: map[string]any{
			"template":        "SPF chain",
			"label_chain":     labels,
			"wildcard_target": wildcardTarget,
			"hop_count":       chainDepth,
			"final_content":   finalContent,
		},
	}, nil
}
