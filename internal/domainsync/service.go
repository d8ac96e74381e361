package domainsync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"porkbun_console/internal/db"
	"porkbun_console/internal/model"
	"porkbun_console/internal/porkbun"
)

var log = logrus.WithField("component", "domainsync")

// SyncResult represents the result of domain synchronization
type SyncResult struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// DomainLister is the subset of the Porkbun client the sync needs.
type DomainLister interface {
	ListDomains(ctx context.Context) ([]porkbun.Domain, error)
}

// Sync pulls the account's domain list from Porkbun and upserts it
// into the local inventory under the given profile.
func Sync(ctx context.Context, client DomainLister, profileID string) (*SyncResult, error) {
	domains, err := client.ListDomains(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list porkbun domains: %w", err)
	}

	result := &SyncResult{
		Total: len(domains),
	}

	for _, d := range domains {
		created, err := upsertDomain(profileID, d)
		if err != nil {
			log.WithField("domain", d.Domain).Warnf("failed to sync: %v", err)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	return result, nil
}

func upsertDomain(profileID string, d porkbun.Domain) (bool, error) {
	var existing model.Domain
	err := db.DB.Where("domain = ? AND profile_id = ?", d.Domain, profileID).First(&existing).Error

	if err == gorm.ErrRecordNotFound {
		record := model.Domain{
			Domain:     d.Domain,
			ProfileID:  profileID,
			Status:     d.Status,
			TLD:        d.TLD,
			ExpireDate: d.ExpireDate,
			NSStatus:   model.NSStatusUnknown,
		}
		if err := db.DB.Create(&record).Error; err != nil {
			return false, fmt.Errorf("failed to create domain: %w", err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query domain: %w", err)
	}

	updates := map[string]interface{}{
		"status":      d.Status,
		"tld":         d.TLD,
		"expire_date": d.ExpireDate,
	}
	if err := db.DB.Model(&existing).Updates(updates).Error; err != nil {
		return false, fmt.Errorf("failed to update domain: %w", err)
	}
	return false, nil
}

// RecordAuditResult stores the nameserver classification produced by an
// audit run so the inventory reflects the last known NS state.
func RecordAuditResult(profileID, domain string, external bool, nameservers []string) error {
	nsJSON, err := json.Marshal(nameservers)
	if err != nil {
		return fmt.Errorf("failed to encode nameservers: %w", err)
	}

	status := model.NSStatusPorkbun
	if external {
		status = model.NSStatusExternal
	}

	now := time.Now()
	updates := map[string]interface{}{
		"ns_status":         status,
		"name_servers_json": nsJSON,
		"last_audit_at":     &now,
	}

	res := db.DB.Model(&model.Domain{}).
		Where("domain = ? AND profile_id = ?", domain, profileID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to record audit result: %w", res.Error)
	}
	return nil
}

// List returns the local inventory for a profile.
func List(profileID string) ([]model.Domain, error) {
	var domains []model.Domain
	if err := db.DB.Where("profile_id = ?", profileID).Order("domain ASC").Find(&domains).Error; err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	return domains, nil
}
