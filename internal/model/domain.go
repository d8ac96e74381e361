package model

import (
	"time"

	"gorm.io/datatypes"
)

// NSStatus classifies where a domain's nameservers point
type NSStatus string

const (
	NSStatusUnknown  NSStatus = "unknown"
	NSStatusPorkbun  NSStatus = "porkbun"
	NSStatusExternal NSStatus = "external"
)

// Domain is a registrar domain synced from the Porkbun account
type Domain struct {
	BaseModel
	Domain          string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"domain"`
	ProfileID       string         `gorm:"type:varchar(128);index:idx_domains_profile;not null" json:"profile_id"`
	Status          string         `gorm:"type:varchar(32)" json:"status"`
	TLD             string         `gorm:"type:varchar(64)" json:"tld"`
	ExpireDate      string         `gorm:"type:varchar(64)" json:"expire_date"`
	NSStatus        NSStatus       `gorm:"type:enum('unknown','porkbun','external');default:'unknown'" json:"ns_status"`
	NameServersJSON datatypes.JSON `gorm:"type:json" json:"name_servers_json"`
	LastAuditAt     *time.Time     `json:"last_audit_at"`
}

// TableName specifies the table name for Domain model
func (Domain) TableName() string {
	return "domains"
}
