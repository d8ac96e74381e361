package bulkjobs

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"porkbun_console/internal/bulk"
	"porkbun_console/internal/httpx"
	"porkbun_console/internal/profile"
)

// Handler manages bulk template application jobs
type Handler struct {
	manager *bulk.Manager
	store   *profile.Store
	baseURL string
}

// NewHandler creates a bulk jobs handler
func NewHandler(manager *bulk.Manager, store *profile.Store, porkbunBaseURL string) *Handler {
	return &Handler{manager: manager, store: store, baseURL: porkbunBaseURL}
}

// ApplyRequest is the body for starting a bulk run
type ApplyRequest struct {
	Template    string               `json:"template" binding:"required"`
	Domains     []string             `json:"domains" binding:"required"`
	Options     bulk.TemplateOptions `json:"options"`
	DeleteTypes []string             `json:"delete_types"`
}

// Apply starts an asynchronous bulk template run across the given
// domains and returns the job id. Progress is broadcast over Socket.IO.
func (h *Handler) Apply(c *gin.Context) {
	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("template and domains are required"))
		return
	}

	client, p, err := profile.ActiveClient(h.store, h.baseURL)
	if err != nil {
		httpx.FailErr(c, httpx.ErrStateConflict(err.Error()))
		return
	}

	job, err := h.manager.Submit(bulk.SubmitRequest{
		ProfileID:   p.ID,
		Template:    req.Template,
		Domains:     req.Domains,
		Options:     req.Options,
		DeleteTypes: req.DeleteTypes,
		Client:      client,
	})
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamIllegal(err.Error()))
		return
	}

	httpx.OKMsg(c, "bulk job started", gin.H{"job_id": job.ID})
}

// List returns recent jobs for the active profile
func (h *Handler) List(c *gin.Context) {
	p := h.store.Active()
	if p == nil {
		httpx.FailErr(c, httpx.ErrStateConflict("no active API profile configured"))
		return
	}

	jobs, err := bulk.ListJobs(p.ID, 50)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to list jobs", err))
		return
	}

	httpx.OK(c, gin.H{"jobs": jobs})
}

// Get returns one job including its per-domain results
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")

	job, err := bulk.GetJob(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("job not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to load job", err))
		return
	}

	httpx.OK(c, job)
}

// Cancel requests cancellation of a running job
func (h *Handler) Cancel(c *gin.Context) {
	id := c.Param("id")

	if !h.manager.Cancel(id) {
		httpx.FailErr(c, httpx.ErrStateConflict("job is not running"))
		return
	}

	httpx.OKMsg(c, "cancellation requested", gin.H{"job_id": id})
}
