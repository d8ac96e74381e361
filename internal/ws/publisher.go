package ws

// Progress event payloads mirror the worker callbacks so the UI can
// render a progress bar without re-deriving state.

// ProgressPayload is emitted while a bulk job or audit run is active.
type ProgressPayload struct {
	JobID   string `json:"job_id,omitempty"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// PublishBulkProgress broadcasts progress of a bulk template job.
func PublishBulkProgress(jobID string, current, total int, message string) {
	BroadcastToAll("bulk:progress", ProgressPayload{
		JobID:   jobID,
		Current: current,
		Total:   total,
		Message: message,
	})
}

// PublishBulkCompleted broadcasts the final result summary of a bulk job.
func PublishBulkCompleted(jobID string, succeeded, failed int) {
	BroadcastToAll("bulk:completed", map[string]interface{}{
		"job_id":    jobID,
		"succeeded": succeeded,
		"failed":    failed,
	})
}

// PublishAuditProgress broadcasts progress of a nameserver audit run.
func PublishAuditProgress(current, total int, message string) {
	BroadcastToAll("audit:progress", ProgressPayload{
		Current: current,
		Total:   total,
		Message: message,
	})
}

// PublishAuditCompleted broadcasts the audit outcome.
func PublishAuditCompleted(externalCount, totalChecked int) {
	BroadcastToAll("audit:completed", map[string]interface{}{
		"external": externalCount,
		"checked":  totalChecked,
	})
}
