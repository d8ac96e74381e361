package nsaudit

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// DomainLister supplies the set of domains to re-audit
type DomainLister func(ctx context.Context) ([]string, error)

// PeriodicWorker re-runs the nameserver audit on a fixed interval so the
// cached findings stay fresh without manual triggering
type PeriodicWorker struct {
	worker      *Worker
	listDomains DomainLister
	logger      *logrus.Entry
	interval    time.Duration
	stopCh      chan struct{}
}

// NewPeriodicWorker creates a periodic re-audit worker
func NewPeriodicWorker(worker *Worker, listDomains DomainLister, logger *logrus.Entry, intervalSec int) *PeriodicWorker {
	return &PeriodicWorker{
		worker:      worker,
		listDomains: listDomains,
		logger:      logger.WithField("component", "ns-audit-periodic"),
		interval:    time.Duration(intervalSec) * time.Second,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the periodic re-audit loop
func (p *PeriodicWorker) Start() {
	p.logger.Infof("Starting periodic nameserver audit, interval=%s", p.interval)
	go p.run()
}

// Stop stops the loop. An audit already in flight finishes.
func (p *PeriodicWorker) Stop() {
	close(p.stopCh)
}

func (p *PeriodicWorker) run() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.tick()
		case <-p.stopCh:
			p.logger.Info("Periodic nameserver audit stopped")
			return
		}
	}
}

func (p *PeriodicWorker) tick() {
	ctx := context.Background()
	domains, err := p.listDomains(ctx)
	if err != nil {
		p.logger.Errorf("Failed to list domains for re-audit: %v", err)
		return
	}
	if len(domains) == 0 {
		return
	}

	if _, err := p.worker.Run(ctx, domains); err != nil {
		if errors.Is(err, ErrCheckInProgress) {
			p.logger.Debug("Audit already running, skipping tick")
			return
		}
		p.logger.Errorf("Periodic audit failed: %v", err)
	}
}
