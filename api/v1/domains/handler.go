package domains

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"porkbun_console/internal/cache"
	"porkbun_console/internal/domainsync"
	"porkbun_console/internal/httpx"
	"porkbun_console/internal/profile"
)

// Handler serves the Porkbun domain list and the local inventory
type Handler struct {
	store    *profile.Store
	baseURL  string
	cacheTTL time.Duration
	log      *logrus.Entry
}

// NewHandler creates a domains handler
func NewHandler(store *profile.Store, porkbunBaseURL string, cacheTTLSec int) *Handler {
	return &Handler{
		store:    store,
		baseURL:  porkbunBaseURL,
		cacheTTL: time.Duration(cacheTTLSec) * time.Second,
		log:      logrus.WithField("component", "domains-api"),
	}
}

// List returns the account's domains, served from the Redis cache when
// fresh. Pass ?refresh=1 to bypass the cache.
func (h *Handler) List(c *gin.Context) {
	client, p, err := profile.ActiveClient(h.store, h.baseURL)
	if err != nil {
		httpx.FailErr(c, httpx.ErrStateConflict(err.Error()))
		return
	}

	ctx := c.Request.Context()
	refresh := c.Query("refresh") == "1"

	if !refresh {
		if cached, err := cache.GetDomains(ctx, p.ID); err == nil {
			httpx.OK(c, gin.H{"domains": cached, "cached": true})
			return
		}
	}

	domains, err := client.ListDomains(ctx)
	if err != nil {
		httpx.FailErr(c, httpx.FromPorkbunError(err))
		return
	}

	if err := cache.SetDomains(ctx, p.ID, domains, h.cacheTTL); err != nil {
		h.log.Warnf("failed to cache domain list: %v", err)
	}

	httpx.OK(c, gin.H{"domains": domains, "cached": false})
}

// Sync pulls the Porkbun domain list into the local inventory
func (h *Handler) Sync(c *gin.Context) {
	client, p, err := profile.ActiveClient(h.store, h.baseURL)
	if err != nil {
		httpx.FailErr(c, httpx.ErrStateConflict(err.Error()))
		return
	}

	result, err := domainsync.Sync(c.Request.Context(), client, p.ID)
	if err != nil {
		httpx.FailErr(c, httpx.FromPorkbunError(err))
		return
	}

	httpx.OKMsg(c, "domains synced", result)
}

// Inventory returns the locally persisted domain records with their
// last known nameserver classification
func (h *Handler) Inventory(c *gin.Context) {
	p := h.store.Active()
	if p == nil {
		httpx.FailErr(c, httpx.ErrStateConflict("no active API profile configured"))
		return
	}

	records, err := domainsync.List(p.ID)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to load domain inventory", err))
		return
	}

	httpx.OK(c, gin.H{"domains": records})
}
