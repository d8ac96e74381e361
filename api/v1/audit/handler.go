package audit

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"porkbun_console/internal/cache"
	"porkbun_console/internal/domainsync"
	"porkbun_console/internal/httpx"
	"porkbun_console/internal/nsaudit"
	"porkbun_console/internal/profile"
	"porkbun_console/internal/ws"
)

// Handler drives the nameserver audit worker over HTTP
type Handler struct {
	worker   *nsaudit.Worker
	store    *nsaudit.Store
	profiles *profile.Store
	baseURL  string
	log      *logrus.Entry
}

// NewHandler creates an audit handler
func NewHandler(worker *nsaudit.Worker, store *nsaudit.Store, profiles *profile.Store, porkbunBaseURL string) *Handler {
	return &Handler{
		worker:   worker,
		store:    store,
		profiles: profiles,
		baseURL:  porkbunBaseURL,
		log:      logrus.WithField("component", "audit-api"),
	}
}

// StartRequest optionally narrows the audit to specific domains
type StartRequest struct {
	Domains []string `json:"domains"`
}

// Start launches an audit run in the background. Returns 409 when a
// run is already active.
func (h *Handler) Start(c *gin.Context) {
	if h.worker.IsChecking() {
		httpx.FailErr(c, httpx.ErrStateConflict("an audit run is already in progress"))
		return
	}

	var req StartRequest
	_ = c.ShouldBindJSON(&req) // empty body means audit everything

	client, p, err := profile.ActiveClient(h.profiles, h.baseURL)
	if err != nil {
		httpx.FailErr(c, httpx.ErrStateConflict(err.Error()))
		return
	}

	domains := req.Domains
	if len(domains) == 0 {
		list, err := client.ListDomains(c.Request.Context())
		if err != nil {
			httpx.FailErr(c, httpx.FromPorkbunError(err))
			return
		}
		for _, d := range list {
			domains = append(domains, d.Domain)
		}
	}

	if len(domains) == 0 {
		httpx.FailErr(c, httpx.ErrStateConflict("account has no domains to audit"))
		return
	}

	profileID := p.ID
	go func() {
		findings, err := h.worker.Run(context.Background(), domains)
		if err != nil {
			if errors.Is(err, nsaudit.ErrCheckInProgress) {
				return
			}
			h.log.Errorf("audit run failed: %v", err)
			return
		}

		for _, f := range findings {
			if err := domainsync.RecordAuditResult(profileID, f.Domain, true, f.Nameservers); err != nil {
				h.log.WithField("domain", f.Domain).Warnf("failed to persist finding: %v", err)
			}
		}

		ws.PublishAuditCompleted(len(findings), len(domains))
	}()

	httpx.OKMsg(c, "audit started", gin.H{"total": len(domains)})
}

// Status reports whether a run is active plus the last persisted result
func (h *Handler) Status(c *gin.Context) {
	cached, err := h.store.Load()
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to load audit cache", err))
		return
	}

	httpx.OK(c, gin.H{
		"checking":            h.worker.IsChecking(),
		"last_check":          cached.LastCheck,
		"external_ns_domains": cached.ExternalNSDomains,
	})
}

// External returns the domains flagged as external by the last run
func (h *Handler) External(c *gin.Context) {
	cached, err := h.store.Load()
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to load audit cache", err))
		return
	}

	httpx.OK(c, gin.H{"domains": cached.ExternalNSDomains})
}

// InvalidateCache drops the cached domain list so the next audit pulls
// a fresh list from Porkbun
func (h *Handler) InvalidateCache(c *gin.Context) {
	p := h.profiles.Active()
	if p == nil {
		httpx.FailErr(c, httpx.ErrStateConflict("no active API profile configured"))
		return
	}
	if err := cache.InvalidateDomains(c.Request.Context(), p.ID); err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to invalidate cache", err))
		return
	}
	httpx.OKMsg(c, "domain cache invalidated", nil)
}
