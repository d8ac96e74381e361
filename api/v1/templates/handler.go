package templates

import (
	"github.com/gin-gonic/gin"

	"porkbun_console/internal/dnstemplate"
	"porkbun_console/internal/httpx"
)

// Handler exposes the DNS template registry
type Handler struct{}

// NewHandler creates a templates handler
func NewHandler() *Handler {
	return &Handler{}
}

// List returns the registered templates
func (h *Handler) List(c *gin.Context) {
	httpx.OK(c, gin.H{"templates": dnstemplate.List()})
}

// PreviewRequest is the body for a dry-run template expansion
type PreviewRequest struct {
	Template       string `json:"template" binding:"required"`
	Domain         string `json:"domain" binding:"required"`
	ChainDepth     *int   `json:"chain_depth"`
	MinLabelLength *int   `json:"min_label_length"`
	FinalContent   string `json:"final_content"`
}

// Preview expands a template for one domain without touching any DNS
// state, returning the records that a bulk run would create
func (h *Handler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("template and domain are required"))
		return
	}

	def := dnstemplate.Get(req.Template)
	if def == nil {
		httpx.FailErr(c, httpx.ErrNotFound("unknown template: "+req.Template))
		return
	}

	var result *dnstemplate.TemplateResult
	var err error

	if req.Template == "spf-chain" && (req.ChainDepth != nil || req.MinLabelLength != nil || req.FinalContent != "") {
		opts := dnstemplate.SPFChainOptions{
			ChainDepth:     dnstemplate.DefaultChainDepth,
			MinLabelLength: dnstemplate.DefaultMinLabelLength,
			FinalContent:   req.FinalContent,
		}
		if req.ChainDepth != nil {
			opts.ChainDepth = *req.ChainDepth
		}
		if req.MinLabelLength != nil {
			opts.MinLabelLength = *req.MinLabelLength
		}
		result, err = dnstemplate.GenerateSPFChain(req.Domain, opts)
	} else {
		result, err = def.Generate(req.Domain)
	}

	if err != nil {
		httpx.FailErr(c, httpx.ErrParamIllegal(err.Error()))
		return
	}

	httpx.OK(c, gin.H{
		"template": req.Template,
		"domain":   req.Domain,
		"records":  result.Records,
		"metadata": result.Metadata,
	})
}
