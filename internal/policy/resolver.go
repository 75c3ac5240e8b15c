package policy

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/diewo77/go-users/gate"
	"github.com/diewo77/go-users/internal/models"
)

// ErrUnknownActor is returned when the authenticated user no longer exists.
var ErrUnknownActor = errors.New("policy: unknown actor")

// ActorResolver loads the Actor of an authenticated user id.
type ActorResolver interface {
	Resolve(ctx context.Context, userID uint) (Actor, error)
}

// DBActorResolver fetches users and their profile permissions from the database.
type DBActorResolver struct {
	DB *gorm.DB
}

func NewDBActorResolver(db *gorm.DB) *DBActorResolver {
	return &DBActorResolver{DB: db}
}

// Resolve looks up the user, preloading profile permissions. Soft-deleted
// users resolve to ErrUnknownActor. A user without a profile is a plain actor.
func (r *DBActorResolver) Resolve(ctx context.Context, userID uint) (Actor, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Preload("Profile.Permissions").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Actor{}, ErrUnknownActor
	}
	if err != nil {
		return Actor{}, fmt.Errorf("resolve actor %d: %w", userID, err)
	}
	return Actor{ID: user.ID, IsAdmin: user.Profile.Grants(gate.PermissionSuperAdmin)}, nil
}
