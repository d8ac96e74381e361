package dnstemplate

// Generator produces a set of DNS records for a domain
type Generator func(domain string) (*TemplateResult, error)

// Definition is a named, reusable DNS template
type Definition struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
	generator   Generator
}

// Generate runs the template for the given domain
func (d *Definition) Generate(domain string) (*TemplateResult, error) {
	return d.generator(domain)
}

var templates = map[string]*Definition{
	"spf-chain": {
		Name:        "spf-chain",
		Label:       "SPF redirect chain",
		Description: "Creates an SPF TXT chain that redirects every subdomain through _spf and a series of random-label hops before the final include.",
		generator: func(domain string) (*TemplateResult, error) {
			return GenerateSPFChain(domain, SPFChainOptions{
				ChainDepth:     DefaultChainDepth,
				MinLabelLength: DefaultMinLabelLength,
			})
		},
	},
}

// Get returns the template definition for the given name, or nil
func Get(name string) *Definition {
	return templates[name]
}

// List returns all registered templates
func List() []*Definition {
	out := make([]*Definition, 0, len(templates))
	for _, def := range templates {
		out = append(out, def)
	}
	return out
}
