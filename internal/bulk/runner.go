package bulk

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"porkbun_console/internal/dnstemplate"
	"porkbun_console/internal/dnstypes"
	"porkbun_console/internal/porkbun"
)

// RecordGateway is the slice of the Porkbun gateway the applicator needs
type RecordGateway interface {
	GetRecords(ctx context.Context, domain string) ([]porkbun.Record, error)
	CreateRecord(ctx context.Context, domain string, req dnstypes.RecordRequest) (string, error)
	DeleteRecord(ctx context.Context, domain, recordID string) error
}

// RecordSummary describes a record that was created or deleted during a run
type RecordSummary struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// DomainJobResult is the per-domain outcome of a bulk run. The slice of all
// results is the terminal output; the run itself never fails for a single
// domain.
type DomainJobResult struct {
	Domain         string          `json:"domain"`
	Success        bool            `json:"success"`
	CreatedRecords []RecordSummary `json:"created_records"`
	Errors         []string        `json:"errors"`
	Metadata       map[string]any  `json:"metadata"`
	BackupPath     string          `json:"backup_path,omitempty"`
	DeletedRecords []RecordSummary `json:"deleted_records"`
}

// ProgressFunc receives progress before each domain is processed and after
// it completes
type ProgressFunc func(current, total int, message string)

// Runner applies a DNS template across many domains, backing up each
// domain's records before mutating them. Domains are processed strictly
// sequentially; a failed domain is recorded and the run continues.
//
// There is deliberately no rollback of partial mutations: records created
// or deleted before a failure stand as-is, and the backup file written in
// step one is the manual recovery path.
type Runner struct {
	client      RecordGateway
	generator   dnstemplate.Generator
	logger      *logrus.Entry
	backupDir   string
	deleteTypes []string
	onProgress  ProgressFunc
	now         func() time.Time
}

// RunnerConfig holds the bulk runner configuration
type RunnerConfig struct {
	Client      RecordGateway
	Generator   dnstemplate.Generator
	Logger      *logrus.Entry
	BackupDir   string
	DeleteTypes []string // record types to delete before applying the template
	OnProgress  ProgressFunc
}

// NewRunner creates a bulk runner
func NewRunner(cfg *RunnerConfig) *Runner {
	r := &Runner{
		client:      cfg.Client,
		generator:   cfg.Generator,
		logger:      cfg.Logger.WithField("component", "bulk-runner"),
		backupDir:   cfg.BackupDir,
		deleteTypes: cfg.DeleteTypes,
		onProgress:  cfg.OnProgress,
		now:         time.Now,
	}
	if r.backupDir == "" {
		r.backupDir = "backups"
	}
	if r.onProgress == nil {
		r.onProgress = func(int, int, string) {}
	}
	return r
}

// Run applies the template to every domain, in input order. The returned
// slice has one entry per input domain regardless of individual failures.
// Cancelling the context stops the run before the next domain; the domain
// being processed finishes first.
func (r *Runner) Run(ctx context.Context, domains []string) ([]DomainJobResult, error) {
	if len(domains) == 0 {
		return []DomainJobResult{}, nil
	}

	if err := os.MkdirAll(r.backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	total := len(domains)
	results := make([]DomainJobResult, 0, total)

	for index, domain := range domains {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		r.onProgress(index, total, domain+" backing up...")

		result := r.processDomain(ctx, domain)
		results = append(results, result)

		r.onProgress(index+1, total, domain+" done")
	}

	return results, nil
}

// processDomain runs the backup-then-mutate sequence for one domain. Any
// error aborts the remaining steps for this domain and is recorded on its
// result.
func (r *Runner) processDomain(ctx context.Context, domain string) DomainJobResult {
	result := DomainJobResult{
		Domain:         domain,
		CreatedRecords: []RecordSummary{},
		Errors:         []string{},
		DeletedRecords: []RecordSummary{},
	}

	// Step 1: fetch and back up the current records. Without a backup
	// there is nothing to safely mutate.
	records, err := r.client.GetRecords(ctx, domain)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		r.logger.Errorf("%s: failed to fetch records: %v", domain, err)
		return result
	}

	backupPath, err := r.writeBackup(domain, records)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		r.logger.Errorf("%s: failed to write backup: %v", domain, err)
		return result
	}
	result.BackupPath = backupPath

	// Step 2: delete existing records of the requested types. A single
	// failed deletion aborts this domain; deletions that already
	// succeeded are kept on the result so the operator can reconcile.
	if len(r.deleteTypes) > 0 {
		if err := r.deleteByType(ctx, domain, records, &result); err != nil {
			result.Errors = append(result.Errors, err.Error())
			r.logger.Errorf("%s: deletion failed: %v", domain, err)
			return result
		}
	}

	// Step 3: generate the template. An empty template indicates
	// misconfiguration, not success.
	template, err := r.generator(domain)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		r.logger.Errorf("%s: template generation failed: %v", domain, err)
		return result
	}
	result.Metadata = template.Metadata
	if len(template.Records) == 0 {
		result.Errors = append(result.Errors, "template produced no DNS records")
		return result
	}

	// Step 4: create each record. The first failure aborts this domain;
	// records already created are not rolled back.
	for _, req := range template.Records {
		req.TTL = dnstypes.ClampTTL(req.TTL)
		if _, err := r.client.CreateRecord(ctx, domain, req); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("create %s %q: %v", req.Type, req.Name, err))
			r.logger.Errorf("%s: record creation failed: %v", domain, err)
			return result
		}
		name := req.Name
		if name == "" {
			name = "@"
		}
		result.CreatedRecords = append(result.CreatedRecords, RecordSummary{
			Type:    req.Type,
			Name:    name,
			Content: req.Content,
		})
	}

	result.Success = true
	return result
}

// deleteByType deletes every existing record whose type matches the
// configured delete set, recording each successful deletion
func (r *Runner) deleteByType(ctx context.Context, domain string, records []porkbun.Record, result *DomainJobResult) error {
	typeSet := make(map[string]struct{}, len(r.deleteTypes))
	for _, t := range r.deleteTypes {
		typeSet[t] = struct{}{}
	}

	for _, existing := range records {
		if _, match := typeSet[existing.Type]; !match {
			continue
		}
		if existing.ID == "" {
			continue
		}
		if err := r.client.DeleteRecord(ctx, domain, existing.ID); err != nil {
			name := existing.Name
			if name == "" {
				name = "@"
			}
			return fmt.Errorf("failed to delete %s record %q: %w", existing.Type, name, err)
		}
		name := existing.Name
		if name == "" {
			name = "@"
		}
		result.DeletedRecords = append(result.DeletedRecords, RecordSummary{
			ID:      existing.ID,
			Type:    existing.Type,
			Name:    name,
			Content: existing.Content,
		})
	}
	return nil
}

// writeBackup persists the domain's records verbatim to a timestamped file
func (r *Runner) writeBackup(domain string, records []porkbun.Record) (string, error) {
	timestamp := r.now().Format("20060102-1504")
	path := filepath.Join(r.backupDir, fmt.Sprintf("%s_%s.log", timestamp, domain))

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal backup for %s: %w", domain, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup for %s: %w", domain, err)
	}
	return path, nil
}
