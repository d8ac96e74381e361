package dnstypes

// MinTTL is the minimum TTL accepted by Porkbun, in seconds.
const MinTTL = 600

// Record types supported by the Porkbun API
const (
	TypeA     = "A"
	TypeAAAA  = "AAAA"
	TypeMX    = "MX"
	TypeCNAME = "CNAME"
	TypeALIAS = "ALIAS"
	TypeTXT   = "TXT"
	TypeNS    = "NS"
	TypeSRV   = "SRV"
	TypeTLSA  = "TLSA"
	TypeCAA   = "CAA"
	TypeHTTPS = "HTTPS"
	TypeSVCB  = "SVCB"
)

// RecordRequest describes a DNS record to create or edit
type RecordRequest struct {
	Type    string `json:"type"`
	Name    string `json:"name"`    // subdomain, empty for root
	Content string `json:"content"` // record content/value
	TTL     int    `json:"ttl"`
	Prio    *int   `json:"prio,omitempty"` // only meaningful for MX/SRV
	Notes   string `json:"notes,omitempty"`
}

// ClampTTL enforces the Porkbun minimum TTL
func ClampTTL(ttl int) int {
	if ttl < MinTTL {
		return MinTTL
	}
	return ttl
}

// IsSupportedType checks if the record type is supported
func IsSupportedType(recordType string) bool {
	switch recordType {
	case TypeA, TypeAAAA, TypeMX, TypeCNAME, TypeALIAS, TypeTXT,
		TypeNS, TypeSRV, TypeTLSA, TypeCAA, TypeHTTPS, TypeSVCB:
		return true
	default:
		return false
	}
}
