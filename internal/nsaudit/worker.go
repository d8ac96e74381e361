package nsaudit

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"porkbun_console/internal/porkbun"
)

// ErrCheckInProgress is returned when an audit is started while another is
// still running
var ErrCheckInProgress = errors.New("nameserver check already in progress")

// NameserverGetter is the slice of the Porkbun gateway the audit needs
type NameserverGetter interface {
	GetNameservers(ctx context.Context, domain string) ([]string, error)
}

// Progress is delivered after every completed domain, including failures,
// so the counter stays monotonic
type Progress struct {
	Current int
	Total   int
	Message string
}

// Config holds the audit worker configuration
type Config struct {
	Client     NameserverGetter
	Store      *Store
	Logger     *logrus.Entry
	Resolver   *Resolver // optional live DNS cross-check
	BatchSize  int       // domains in flight at once
	CheckDelay time.Duration // delay between individual completions
	BatchDelay time.Duration // delay between batches
	RetryInitialInterval time.Duration
	MaxAttempts          int
	OnProgress           func(Progress)
}

// Worker audits which domains still point at Porkbun's default nameservers.
// Domains are dispatched in fixed-size concurrent batches with client-side
// rate limiting; a failed domain is logged and omitted from the results
// rather than aborting the batch.
type Worker struct {
	client     NameserverGetter
	store      *Store
	logger     *logrus.Entry
	resolver   *Resolver
	batchSize  int
	checkDelay time.Duration
	batchDelay time.Duration
	retryInitialInterval time.Duration
	maxAttempts          int
	onProgress           func(Progress)

	mu       sync.Mutex
	checking bool
}

// NewWorker creates an audit worker
func NewWorker(cfg *Config) *Worker {
	w := &Worker{
		client:               cfg.Client,
		store:                cfg.Store,
		logger:               cfg.Logger.WithField("component", "ns-audit-worker"),
		resolver:             cfg.Resolver,
		batchSize:            cfg.BatchSize,
		checkDelay:           cfg.CheckDelay,
		batchDelay:           cfg.BatchDelay,
		retryInitialInterval: cfg.RetryInitialInterval,
		maxAttempts:          cfg.MaxAttempts,
		onProgress:           cfg.OnProgress,
	}
	if w.batchSize <= 0 {
		w.batchSize = 5
	}
	if w.checkDelay == 0 {
		w.checkDelay = 500 * time.Millisecond
	}
	if w.batchDelay == 0 {
		w.batchDelay = time.Second
	}
	if w.retryInitialInterval == 0 {
		w.retryInitialInterval = 2 * time.Second
	}
	if w.maxAttempts <= 0 {
		w.maxAttempts = 3
	}
	if w.onProgress == nil {
		w.onProgress = func(Progress) {}
	}
	return w
}

// IsChecking reports whether an audit is currently running
func (w *Worker) IsChecking() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.checking
}

type checkResult struct {
	domain      string
	nameservers []string
	external    bool
	err         error
}

// Run audits all given domains and persists the findings. Only one run may
// be active at a time. Cancelling the context stops the audit between
// dispatches; in-flight checks are allowed to finish.
func (w *Worker) Run(ctx context.Context, domains []string) ([]Finding, error) {
	w.mu.Lock()
	if w.checking {
		w.mu.Unlock()
		return nil, ErrCheckInProgress
	}
	w.checking = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.checking = false
		w.mu.Unlock()
	}()

	total := len(domains)
	findings := []Finding{}
	current := 0

	w.logger.Infof("Starting nameserver audit for %d domains", total)

	for start := 0; start < total; start += w.batchSize {
		if err := ctx.Err(); err != nil {
			w.logger.Warnf("Audit cancelled after %d/%d domains", current, total)
			return nil, err
		}

		end := start + w.batchSize
		if end > total {
			end = total
		}
		batch := domains[start:end]

		resultCh := make(chan checkResult, len(batch))
		var wg sync.WaitGroup
		for _, domain := range batch {
			if err := ctx.Err(); err != nil {
				break
			}
			wg.Add(1)
			go func(d string) {
				defer wg.Done()
				resultCh <- w.checkDomain(ctx, d)
			}(domain)
		}
		go func() {
			wg.Wait()
			close(resultCh)
		}()

		// Collect in completion order
		for result := range resultCh {
			current++
			w.onProgress(Progress{Current: current, Total: total, Message: "Checking " + result.domain + "..."})

			if result.err != nil {
				// Omitted from results by design: one bad domain must
				// not abort the batch
				w.logger.Warnf("Failed to check %s: %v", result.domain, result.err)
			} else if result.external {
				finding := Finding{Domain: result.domain, Nameservers: result.nameservers}
				if w.resolver != nil {
					if live, err := w.resolver.LookupNS(result.domain); err != nil {
						w.logger.Debugf("Live NS lookup failed for %s: %v", result.domain, err)
					} else {
						finding.LiveNameservers = live
					}
				}
				findings = append(findings, finding)
				w.logger.Infof("External nameservers found: %s -> %v", result.domain, result.nameservers)
			}

			if current < total {
				time.Sleep(w.checkDelay)
			}
		}

		if end < total {
			time.Sleep(w.batchDelay)
		}
	}

	if err := w.store.Save(findings); err != nil {
		w.logger.Errorf("Failed to persist audit cache: %v", err)
		return nil, err
	}

	w.onProgress(Progress{Current: total, Total: total, Message: "Check completed!"})
	w.logger.Infof("Audit done: %d/%d domains on external nameservers", len(findings), total)
	return findings, nil
}

// checkDomain queries a single domain's nameservers, retrying on 503 and
// timeouts with exponential backoff
func (w *Worker) checkDomain(ctx context.Context, domain string) checkResult {
	var nameservers []string

	policy := backoff.WithContext(backoff.WithMaxRetries(
		backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(w.retryInitialInterval),
			backoff.WithMultiplier(2),
			backoff.WithRandomizationFactor(0),
			backoff.WithMaxElapsedTime(0),
		),
		uint64(w.maxAttempts-1),
	), ctx)

	err := backoff.Retry(func() error {
		ns, err := w.client.GetNameservers(ctx, domain)
		if err != nil {
			if isRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		nameservers = ns
		return nil
	}, policy)
	if err != nil {
		return checkResult{domain: domain, err: err}
	}

	return checkResult{
		domain:      domain,
		nameservers: nameservers,
		external:    IsExternal(nameservers),
	}
}

// IsExternal reports whether any nameserver falls outside Porkbun's
// default set. A domain counts as "using defaults" only when every entry
// matches one of the four default hosts.
func IsExternal(nameservers []string) bool {
	defaults := porkbun.DefaultNameservers()
	for _, ns := range nameservers {
		ns = strings.TrimSuffix(strings.TrimSpace(ns), ".")
		match := false
		for _, def := range defaults {
			if strings.EqualFold(ns, def) {
				match = true
				break
			}
		}
		if !match {
			return true
		}
	}
	return false
}

// isRetryable reports whether an error warrants a retry: only service
// unavailability and timeouts are transient, everything else is terminal
// for that domain
func isRetryable(err error) bool {
	var reqErr *porkbun.RequestError
	if errors.As(err, &reqErr) {
		if strings.Contains(reqErr.Err.Error(), "HTTP 503") {
			return true
		}
		var netErr net.Error
		if errors.As(reqErr.Err, &netErr) && netErr.Timeout() {
			return true
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return false
}
