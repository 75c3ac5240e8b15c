package users

import (
	"time"

	"github.com/diewo77/go-users/internal/models"
	"github.com/diewo77/go-users/validation"
)

// Output renders a user for responses. The stored attributes go through
// validation.Output, so the password hash never leaves the service.
func Output(u *models.User) map[string]any {
	attrs := map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"password":   u.Password,
		"status":     u.Status,
		"profile_id": u.ProfileID,
		"created_at": u.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at": u.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if u.Trashed() {
		attrs["deleted_at"] = u.DeletedAt.Time.UTC().Format(time.RFC3339)
	}
	return validation.Output(attrs, "profile_id")
}

// OutputList renders a slice of users.
func OutputList(list []models.User) []map[string]any {
	out := make([]map[string]any, len(list))
	for i := range list {
		out[i] = Output(&list[i])
	}
	return out
}
