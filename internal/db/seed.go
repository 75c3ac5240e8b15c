package db

import (
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/go-users/gate"
	"github.com/diewo77/go-users/internal/models"
)

// Seeded account and profile names.
const (
	AdminProfile  = "admin"
	MemberProfile = "member"
	AdminUsername = "admin"
	AdminEmail    = "admin@admin.com"
	AdminPassword = "password"
)

// SeedOptions tunes Seed.
type SeedOptions struct {
	// Users is the number of member accounts to create besides the admin.
	Users int
	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost int
}

// Seed creates permissions, profiles, the admin account and member
// accounts. It is idempotent.
func Seed(db *gorm.DB, opts SeedOptions) error {
	if err := SeedProfiles(db); err != nil {
		return err
	}
	cost := opts.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if err := seedUser(db, AdminUsername, AdminEmail, AdminProfile, cost); err != nil {
		return err
	}
	for i := 1; i <= opts.Users; i++ {
		name := fmt.Sprintf("user%02d", i)
		if err := seedUser(db, name, name+"@example.com", MemberProfile, cost); err != nil {
			return err
		}
	}
	slog.Info("seed completed", "users", opts.Users+1)
	return nil
}

// SeedPermissions creates the core permissions for the application.
func SeedPermissions(db *gorm.DB) error {
	permissions := []struct {
		ResourceType string
		Action       string
		Description  string
	}{
		// Superadmin wildcard
		{"*", "*", "Full system access"},
		// User management
		{"user", "*", "All user management"},
		{"user", string(gate.ActionViewAny), "List users"},
		{"user", string(gate.ActionView), "View user details"},
		{"user", string(gate.ActionCreate), "Create users"},
		{"user", string(gate.ActionUpdate), "Edit users"},
		{"user", string(gate.ActionUpdateStatus), "Change user status"},
		{"user", string(gate.ActionDelete), "Delete users"},
		{"user", string(gate.ActionRestore), "Restore deleted users"},
		{"user", string(gate.ActionForceDelete), "Permanently delete users"},
	}

	for _, p := range permissions {
		perm := models.Permission{
			ResourceType: p.ResourceType,
			Action:       p.Action,
			Description:  p.Description,
		}
		result := db.Where("resource_type = ? AND action = ?", p.ResourceType, p.Action).
			FirstOrCreate(&perm)
		if result.Error != nil {
			return fmt.Errorf("seed permission %s:%s: %w", p.ResourceType, p.Action, result.Error)
		}
	}
	return nil
}

// SeedProfiles creates the default system profiles with their permissions.
func SeedProfiles(db *gorm.DB) error {
	if err := SeedPermissions(db); err != nil {
		return err
	}

	profiles := []struct {
		Name        string
		Description string
		Permissions []gate.Permission
	}{
		{
			Name:        AdminProfile,
			Description: "Full system administrator with all permissions",
			Permissions: []gate.Permission{gate.PermissionSuperAdmin},
		},
		{
			Name:        MemberProfile,
			Description: "Regular account managing its own record",
			Permissions: []gate.Permission{
				gate.NewPermission("user", gate.ActionView),
				gate.NewPermission("user", gate.ActionUpdate),
			},
		},
	}

	for _, p := range profiles {
		var profile models.Profile
		err := db.Where(models.Profile{Name: p.Name}).
			Attrs(models.Profile{Description: p.Description, IsSystem: true}).
			FirstOrCreate(&profile).Error
		if err != nil {
			return fmt.Errorf("seed profile %s: %w", p.Name, err)
		}

		var perms []models.Permission
		for _, code := range p.Permissions {
			resource, action, ok := code.Split()
			if !ok {
				return fmt.Errorf("seed profile %s: malformed permission %q", p.Name, code)
			}
			var found []models.Permission
			if err := db.Where("resource_type = ? AND action = ?", resource, string(action)).Limit(1).Find(&found).Error; err != nil {
				return fmt.Errorf("seed profile %s: permission %s: %w", p.Name, code, err)
			}
			perms = append(perms, found...)
		}
		if err := db.Model(&profile).Association("Permissions").Replace(perms); err != nil {
			return fmt.Errorf("seed profile %s permissions: %w", p.Name, err)
		}
	}
	return nil
}

func seedUser(db *gorm.DB, username, email, profileName string, cost int) error {
	var count int64
	if err := db.Unscoped().Model(&models.User{}).Where("username = ? OR email = ?", username, email).Count(&count).Error; err != nil {
		return fmt.Errorf("seed user %s: %w", username, err)
	}
	if count > 0 {
		return nil
	}

	var profile models.Profile
	if err := db.Where("name = ?", profileName).First(&profile).Error; err != nil {
		return fmt.Errorf("seed user %s: profile %s: %w", username, profileName, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(AdminPassword), cost)
	if err != nil {
		return fmt.Errorf("seed user %s: hash: %w", username, err)
	}
	u := models.User{
		Username:  username,
		Email:     email,
		Password:  string(hash),
		Status:    models.StatusActive,
		ProfileID: &profile.ID,
	}
	if err := db.Create(&u).Error; err != nil {
		return fmt.Errorf("seed user %s: %w", username, err)
	}
	return nil
}
