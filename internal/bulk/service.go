package bulk

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"porkbun_console/internal/db"
	"porkbun_console/internal/dnstemplate"
	"porkbun_console/internal/model"
	"porkbun_console/internal/ws"
)

// TemplateOptions are per-job overrides for the chain generator.
// Nil fields fall back to the template defaults.
type TemplateOptions struct {
	ChainDepth     *int   `json:"chain_depth,omitempty"`
	MinLabelLength *int   `json:"min_label_length,omitempty"`
	FinalContent   string `json:"final_content,omitempty"`
}

// SubmitRequest describes a bulk template application job.
type SubmitRequest struct {
	ProfileID   string
	Template    string
	Domains     []string
	Options     TemplateOptions
	DeleteTypes []string
	Client      RecordGateway
}

// Manager runs bulk jobs asynchronously, persisting their lifecycle to
// the database and broadcasting progress over Socket.IO. One job runs
// at a time per manager; submissions queue behind a mutex-held check.
type Manager struct {
	backupDir string
	logger    *logrus.Entry

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewManager creates a bulk job manager
func NewManager(backupDir string) *Manager {
	return &Manager{
		backupDir: backupDir,
		logger:    logrus.WithField("component", "bulk-manager"),
		cancels:   make(map[string]context.CancelFunc),
	}
}

// Submit validates the request, persists a pending job and starts it in
// the background. The returned job carries the generated id.
func (m *Manager) Submit(req SubmitRequest) (*model.BulkJob, error) {
	if len(req.Domains) == 0 {
		return nil, fmt.Errorf("at least one domain is required")
	}

	def := dnstemplate.Get(req.Template)
	if def == nil {
		return nil, fmt.Errorf("unknown template: %s", req.Template)
	}

	domainsJSON, err := json.Marshal(req.Domains)
	if err != nil {
		return nil, fmt.Errorf("failed to encode domains: %w", err)
	}
	optionsJSON, err := json.Marshal(req.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	job := &model.BulkJob{
		ID:          uuid.NewString(),
		ProfileID:   req.ProfileID,
		Template:    req.Template,
		DomainsJSON: domainsJSON,
		OptionsJSON: optionsJSON,
		Status:      model.BulkJobStatusPending,
	}
	if err := db.DB.Create(job).Error; err != nil {
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.cancels[job.ID] = cancel
	m.mu.Unlock()

	go m.run(ctx, job, req)

	return job, nil
}

// Cancel requests cancellation of a running job. The domain currently
// being processed finishes first.
func (m *Manager) Cancel(jobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	cancel, ok := m.cancels[jobID]
	if ok {
		cancel()
	}
	return ok
}

func (m *Manager) run(ctx context.Context, job *model.BulkJob, req SubmitRequest) {
	defer func() {
		m.mu.Lock()
		delete(m.cancels, job.ID)
		m.mu.Unlock()
	}()

	now := time.Now()
	db.DB.Model(job).Updates(map[string]interface{}{
		"status":     model.BulkJobStatusRunning,
		"started_at": &now,
	})

	runner := NewRunner(&RunnerConfig{
		Client:      req.Client,
		Generator:   m.generatorFor(req.Template, req.Options),
		Logger:      m.logger,
		BackupDir:   m.backupDir,
		DeleteTypes: req.DeleteTypes,
		OnProgress: func(current, total int, message string) {
			ws.PublishBulkProgress(job.ID, current, total, message)
		},
	})

	results, runErr := runner.Run(ctx, req.Domains)

	succeeded, failed := 0, 0
	for _, r := range results {
		if r.Success {
			succeeded++
		} else {
			failed++
		}
	}

	status := model.BulkJobStatusCompleted
	var errMsg *string
	if runErr != nil {
		if ctx.Err() != nil {
			status = model.BulkJobStatusCanceled
		} else {
			status = model.BulkJobStatusFailed
		}
		msg := runErr.Error()
		errMsg = &msg
	}

	resultsJSON, err := json.Marshal(results)
	if err != nil {
		m.logger.WithField("job", job.ID).Errorf("failed to encode results: %v", err)
		resultsJSON = []byte("[]")
	}

	finished := time.Now()
	db.DB.Model(job).Updates(map[string]interface{}{
		"status":      status,
		"results":     resultsJSON,
		"succeeded_n": succeeded,
		"failed_n":    failed,
		"error":       errMsg,
		"finished_at": &finished,
	})

	ws.PublishBulkCompleted(job.ID, succeeded, failed)
	m.logger.WithFields(logrus.Fields{
		"job":       job.ID,
		"status":    status,
		"succeeded": succeeded,
		"failed":    failed,
	}).Info("bulk job finished")
}

// generatorFor resolves the effective generator, applying per-job
// overrides on top of the registered template.
func (m *Manager) generatorFor(name string, opts TemplateOptions) dnstemplate.Generator {
	// Overrides only exist for the chain template today.
	if name != "spf-chain" || (opts.ChainDepth == nil && opts.MinLabelLength == nil && opts.FinalContent == "") {
		def := dnstemplate.Get(name)
		return def.Generate
	}

	chainOpts := dnstemplate.SPFChainOptions{
		ChainDepth:     dnstemplate.DefaultChainDepth,
		MinLabelLength: dnstemplate.DefaultMinLabelLength,
		FinalContent:   opts.FinalContent,
	}
	if opts.ChainDepth != nil {
		chainOpts.ChainDepth = *opts.ChainDepth
	}
	if opts.MinLabelLength != nil {
		chainOpts.MinLabelLength = *opts.MinLabelLength
	}

	return func(domain string) (*dnstemplate.TemplateResult, error) {
		return dnstemplate.GenerateSPFChain(domain, chainOpts)
	}
}

// GetJob loads a job by id.
func GetJob(id string) (*model.BulkJob, error) {
	var job model.BulkJob
	if err := db.DB.First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs returns jobs for a profile, newest first.
func ListJobs(profileID string, limit int) ([]model.BulkJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var jobs []model.BulkJob
	err := db.DB.Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}
