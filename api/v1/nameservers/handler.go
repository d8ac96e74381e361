package nameservers

import (
	"github.com/gin-gonic/gin"

	"porkbun_console/internal/domainsync"
	"porkbun_console/internal/httpx"
	"porkbun_console/internal/nsaudit"
	"porkbun_console/internal/porkbun"
	"porkbun_console/internal/profile"
)

// Handler serves nameserver reads and updates
type Handler struct {
	store   *profile.Store
	baseURL string
}

// NewHandler creates a nameservers handler
func NewHandler(store *profile.Store, porkbunBaseURL string) *Handler {
	return &Handler{store: store, baseURL: porkbunBaseURL}
}

// Defaults returns Porkbun's authoritative nameserver set
func (h *Handler) Defaults(c *gin.Context) {
	httpx.OK(c, gin.H{"nameservers": porkbun.DefaultNameservers()})
}

// Get returns the current nameservers for a domain plus the external
// classification
func (h *Handler) Get(c *gin.Context) {
	domain := c.Param("domain")
	if domain == "" {
		httpx.FailErr(c, httpx.ErrParamMissing("domain is required"))
		return
	}

	client, _, err := profile.ActiveClient(h.store, h.baseURL)
	if err != nil {
		httpx.FailErr(c, httpx.ErrStateConflict(err.Error()))
		return
	}

	ns, err := client.GetNameservers(c.Request.Context(), domain)
	if err != nil {
		httpx.FailErr(c, httpx.FromPorkbunError(err))
		return
	}

	httpx.OK(c, gin.H{
		"domain":      domain,
		"nameservers": ns,
		"external":    nsaudit.IsExternal(ns),
	})
}

// UpdateRequest is the body for nameserver updates
type UpdateRequest struct {
	Domain      string   `json:"domain" binding:"required"`
	Nameservers []string `json:"nameservers" binding:"required"`
}

// Update replaces a domain's nameservers. Validation happens client-side
// before any API call; the registrar's 500 on this endpoint is mapped to
// a remediation-enriched message by the gateway.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("domain and nameservers are required"))
		return
	}

	client, p, err := profile.ActiveClient(h.store, h.baseURL)
	if err != nil {
		httpx.FailErr(c, httpx.ErrStateConflict(err.Error()))
		return
	}

	if err := client.UpdateNameservers(c.Request.Context(), req.Domain, req.Nameservers); err != nil {
		httpx.FailErr(c, httpx.FromPorkbunError(err))
		return
	}

	// Keep the inventory's classification in step with what was just set
	external := nsaudit.IsExternal(req.Nameservers)
	_ = domainsync.RecordAuditResult(p.ID, req.Domain, external, req.Nameservers)

	httpx.OKMsg(c, "nameservers updated", gin.H{
		"domain":      req.Domain,
		"nameservers": req.Nameservers,
		"external":    external,
	})
}

// ResetRequest is the body for resetting a domain to Porkbun defaults
type ResetRequest struct {
	Domain string `json:"domain" binding:"required"`
}

// Reset points a domain back at Porkbun's default nameservers
func (h *Handler) Reset(c *gin.Context) {
	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("domain is required"))
		return
	}

	client, p, err := profile.ActiveClient(h.store, h.baseURL)
	if err != nil {
		httpx.FailErr(c, httpx.ErrStateConflict(err.Error()))
		return
	}

	defaults := porkbun.DefaultNameservers()
	if err := client.UpdateNameservers(c.Request.Context(), req.Domain, defaults); err != nil {
		httpx.FailErr(c, httpx.FromPorkbunError(err))
		return
	}

	_ = domainsync.RecordAuditResult(p.ID, req.Domain, false, defaults)

	httpx.OKMsg(c, "nameservers reset to Porkbun defaults", gin.H{
		"domain":      req.Domain,
		"nameservers": defaults,
	})
}
