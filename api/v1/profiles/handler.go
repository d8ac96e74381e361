package profiles

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"porkbun_console/internal/cache"
	"porkbun_console/internal/httpx"
	"porkbun_console/internal/porkbun"
	"porkbun_console/internal/profile"
)

// Handler manages API credential profiles
type Handler struct {
	store   *profile.Store
	baseURL string
}

// NewHandler creates a profiles handler
func NewHandler(store *profile.Store, porkbunBaseURL string) *Handler {
	return &Handler{store: store, baseURL: porkbunBaseURL}
}

// profileView is the API shape of a profile. Secrets never leave the
// server; only a key prefix is exposed for identification.
type profileView struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	KeyPrefix  string  `json:"key_prefix"`
	Active     bool    `json:"active"`
	CreatedAt  string  `json:"created_at"`
	LastUsedAt *string `json:"last_used_at"`
}

func (h *Handler) view(p profile.Profile, activeID string) profileView {
	prefix := p.APIKey
	if len(prefix) > 12 {
		prefix = prefix[:12] + "..."
	}
	return profileView{
		ID:         p.ID,
		Label:      p.Label,
		KeyPrefix:  prefix,
		Active:     p.ID == activeID,
		CreatedAt:  p.CreatedAt,
		LastUsedAt: p.LastUsedAt,
	}
}

// List returns all profiles
func (h *Handler) List(c *gin.Context) {
	activeID := ""
	if active := h.store.Active(); active != nil {
		activeID = active.ID
	}

	views := make([]profileView, 0)
	for _, p := range h.store.List() {
		views = append(views, h.view(p, activeID))
	}
	httpx.OK(c, gin.H{"profiles": views, "active_profile": activeID})
}

// CreateRequest is the body for profile creation
type CreateRequest struct {
	Label        string `json:"label" binding:"required"`
	APIKey       string `json:"api_key" binding:"required"`
	SecretAPIKey string `json:"secret_api_key" binding:"required"`
}

// Create validates the credentials against the Porkbun ping endpoint
// and stores the profile
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("label, api_key and secret_api_key are required"))
		return
	}

	var opts []porkbun.Option
	if h.baseURL != "" {
		opts = append(opts, porkbun.WithBaseURL(h.baseURL))
	}
	client := porkbun.NewClient(req.APIKey, req.SecretAPIKey, opts...)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()
	if !client.Ping(ctx) {
		httpx.FailErr(c, httpx.ErrParamIllegal("API credentials failed verification against Porkbun"))
		return
	}

	id, err := h.store.Add(req.Label, req.APIKey, req.SecretAPIKey)
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to save profile", err))
		return
	}

	httpx.OKMsg(c, "profile created", gin.H{"id": id})
}

// ActivateRequest selects the active profile
type ActivateRequest struct {
	ID string `json:"id" binding:"required"`
}

// Activate switches the active profile and drops the previous
// profile's cached domain list
func (h *Handler) Activate(c *gin.Context) {
	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("id is required"))
		return
	}

	if h.store.Get(req.ID) == nil {
		httpx.FailErr(c, httpx.ErrNotFound("profile not found"))
		return
	}

	if err := h.store.SetActive(req.ID); err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to activate profile", err))
		return
	}

	// Best effort; a stale cache entry expires on its own TTL anyway
	_ = cache.InvalidateDomains(c.Request.Context(), req.ID)

	httpx.OKMsg(c, "profile activated", gin.H{"id": req.ID})
}

// UpdateRequest is the body for profile updates
type UpdateRequest struct {
	ID           string `json:"id" binding:"required"`
	Label        string `json:"label"`
	APIKey       string `json:"api_key"`
	SecretAPIKey string `json:"secret_api_key"`
}

// Update edits a profile's label or credentials
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("id is required"))
		return
	}

	existing := h.store.Get(req.ID)
	if existing == nil {
		httpx.FailErr(c, httpx.ErrNotFound("profile not found"))
		return
	}

	// Blank fields keep their current value
	if req.Label == "" {
		req.Label = existing.Label
	}
	if req.APIKey == "" {
		req.APIKey = existing.APIKey
	}
	if req.SecretAPIKey == "" {
		req.SecretAPIKey = existing.SecretAPIKey
	}

	if err := h.store.Update(req.ID, req.Label, req.APIKey, req.SecretAPIKey); err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to update profile", err))
		return
	}

	httpx.OKMsg(c, "profile updated", gin.H{"id": req.ID})
}

// DeleteRequest is the body for profile deletion
type DeleteRequest struct {
	ID string `json:"id" binding:"required"`
}

// Delete removes a profile. If it was active, another profile is
// promoted automatically.
func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("id is required"))
		return
	}

	if h.store.Get(req.ID) == nil {
		httpx.FailErr(c, httpx.ErrNotFound("profile not found"))
		return
	}

	if err := h.store.Delete(req.ID); err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to delete profile", err))
		return
	}

	_ = cache.InvalidateDomains(c.Request.Context(), req.ID)

	httpx.OKMsg(c, "profile deleted", gin.H{"id": req.ID})
}
