package records

import (
	"github.com/gin-gonic/gin"

	"porkbun_console/internal/dnstypes"
	"porkbun_console/internal/httpx"
	"porkbun_console/internal/profile"
)

// Handler proxies DNS record operations to the Porkbun API
type Handler struct {
	store   *profile.Store
	baseURL string
}

// NewHandler creates a records handler
func NewHandler(store *profile.Store, porkbunBaseURL string) *Handler {
	return &Handler{store: store, baseURL: porkbunBaseURL}
}

// List returns a domain's records. Optional query parameters `type` and
// `name` narrow the query to a subdomain/type pair.
func (h *Handler) List(c *gin.Context) {
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

	recordType := c.Query("type")
	name := c.Query("name")

	if recordType != "" {
		recs, err := client.GetRecordsByNameType(c.Request.Context(), domain, recordType, name)
		if err != nil {
			httpx.FailErr(c, httpx.FromPorkbunError(err))
			return
		}
		httpx.OK(c, gin.H{"domain": domain, "records": recs})
		return
	}

	recs, err := client.GetRecords(c.Request.Context(), domain)
	if err != nil {
		httpx.FailErr(c, httpx.FromPorkbunError(err))
		return
	}
	httpx.OK(c, gin.H{"domain": domain, "records": recs})
}

// MutateRequest is the body for record creation and edits
type MutateRequest struct {
	Domain  string `json:"domain" binding:"required"`
	ID      string `json:"id"` // required for edits addressed by id
	Type    string `json:"type" binding:"required"`
	Name    string `json:"name"`
	Content string `json:"content" binding:"required"`
	TTL     int    `json:"ttl"`
	Prio    *int   `json:"prio"`
	Notes   string `json:"notes"`
}

func (r *MutateRequest) toRecordRequest() (dnstypes.RecordRequest, *httpx.AppError) {
	if !dnstypes.IsSupportedType(r.Type) {
		return dnstypes.RecordRequest{}, httpx.ErrParamIllegal("unsupported record type: " + r.Type)
	}
	return dnstypes.RecordRequest{
		Type:    r.Type,
		Name:    r.Name,
		Content: r.Content,
		TTL:     dnstypes.ClampTTL(r.TTL),
		Prio:    r.Prio,
		Notes:   r.Notes,
	}, nil
}

// Create adds a DNS record
func (h *Handler) Create(c *gin.Context) {
	var req MutateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("domain, type and content are required"))
		return
	}

	rr, appErr := req.toRecordRequest()
	if appErr != nil {
		httpx.FailErr(c, appErr)
		return
	}

	client, _, err := profile.ActiveClient(h.store, h.baseURL)
	if err != nil {
		httpx.FailErr(c, httpx.ErrStateConflict(err.Error()))
		return
	}

	id, err := client.CreateRecord(c.Request.Context(), req.Domain, rr)
	if err != nil {
		httpx.FailErr(c, httpx.FromPorkbunError(err))
		return
	}

	httpx.OKMsg(c, "record created", gin.H{"id": id})
}

// Update edits a DNS record by id
func (h *Handler) Update(c *gin.Context) {
	var req MutateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("domain, id, type and content are required"))
		return
	}
	if req.ID == "" {
		httpx.FailErr(c, httpx.ErrParamMissing("id is required"))
		return
	}

	rr, appErr := req.toRecordRequest()
	if appErr != nil {
		httpx.FailErr(c, appErr)
		return
	}

	client, _, err := profile.ActiveClient(h.store, h.baseURL)
	if err != nil {
		httpx.FailErr(c, httpx.ErrStateConflict(err.Error()))
		return
	}

	if err := client.EditRecord(c.Request.Context(), req.Domain, req.ID, rr); err != nil {
		httpx.FailErr(c, httpx.FromPorkbunError(err))
		return
	}

	httpx.OKMsg(c, "record updated", gin.H{"id": req.ID})
}

// DeleteRequest is the body for record deletion
type DeleteRequest struct {
	Domain string   `json:"domain" binding:"required"`
	IDs    []string `json:"ids" binding:"required"`
}

// Delete removes one or more records by id. Each deletion is attempted
// independently; the response lists per-id outcomes.
func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("domain and ids are required"))
		return
	}
	if len(req.IDs) == 0 {
		httpx.FailErr(c, httpx.ErrParamMissing("at least one record id is required"))
		return
	}

	client, _, err := profile.ActiveClient(h.store, h.baseURL)
	if err != nil {
		httpx.FailErr(c, httpx.ErrStateConflict(err.Error()))
		return
	}

	results := client.BulkDeleteRecords(c.Request.Context(), req.Domain, req.IDs)

	failed := 0
	for _, r := range results {
		if !r.OK {
			failed++
		}
	}

	httpx.OK(c, gin.H{
		"domain":  req.Domain,
		"results": results,
		"failed":  failed,
	})
}
