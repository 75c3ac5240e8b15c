package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/go-users/gate"
)

// Profile groups permissions. A user has at most one profile; the admin flag
// of an actor is derived from it.
type Profile struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Name        string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string         `gorm:"size:500" json:"description,omitempty"`
	// IsSystem marks seeded profiles that must not be removed.
	IsSystem    bool         `gorm:"default:false" json:"is_system"`
	Permissions []Permission `gorm:"many2many:profile_permissions;" json:"permissions,omitempty"`
}

// Permission is a stored grant; ResourceType and Action may be "*".
type Permission struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	ResourceType string         `gorm:"size:50;not null;index:idx_perm_resource_action" json:"resource_type"`
	Action       string         `gorm:"size:50;not null;index:idx_perm_resource_action" json:"action"`
	Description  string         `gorm:"size:200" json:"description,omitempty"`
}

func (p Permission) Code() gate.Permission {
	return gate.NewPermission(p.ResourceType, gate.Action(p.Action))
}

// PermissionCodes returns the codes of every permission the profile grants.
// A nil profile grants nothing.
func (p *Profile) PermissionCodes() []gate.Permission {
	if p == nil {
		return nil
	}
	out := make([]gate.Permission, len(p.Permissions))
	for i, perm := range p.Permissions {
		out[i] = perm.Code()
	}
	return out
}

// Grants reports whether the profile covers requested.
func (p *Profile) Grants(requested gate.Permission) bool {
	return gate.Grants(p.PermissionCodes(), requested)
}
