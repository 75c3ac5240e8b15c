package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/go-users/internal/models"
)

// ErrNotFound is returned when a user id does not resolve.
var ErrNotFound = errors.New("users: not found")

// ListFilter narrows List. Empty strings do not filter.
type ListFilter struct {
	Username string
	Email    string
	Status   string
	Page     int
	PerPage  int
}

// Repository persists users.
type Repository interface {
	FindByID(ctx context.Context, id uint, withTrashed bool) (*models.User, error)
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	ExistsByField(ctx context.Context, column string, value any, excludeID *uint) (bool, error)
	Create(ctx context.Context, data map[string]any) (*models.User, error)
	Update(ctx context.Context, u *models.User, data map[string]any) (*models.User, error)
	Delete(ctx context.Context, u *models.User) error
	Restore(ctx context.Context, u *models.User) error
	ForceDelete(ctx context.Context, u *models.User) error
	List(ctx context.Context, f ListFilter) ([]models.User, int64, error)
}

// fillable lists the payload keys that map to writable columns.
var fillable = map[string]bool{
	"username": true,
	"email":    true,
	"password": true,
	"status":   true,
}

// uniqueColumns lists the columns ExistsByField may query.
var uniqueColumns = map[string]bool{
	"username": true,
	"email":    true,
}

// GormRepository is the gorm implementation of Repository.
type GormRepository struct {
	DB *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{DB: db}
}

func (r *GormRepository) FindByID(ctx context.Context, id uint, withTrashed bool) (*models.User, error) {
	q := r.DB.WithContext(ctx)
	if withTrashed {
		q = q.Unscoped()
	}
	var u models.User
	if err := q.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &u, nil
}

// FindByLogin matches an email or, failing that, a username.
func (r *GormRepository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	column := "username"
	if strings.Contains(login, "@") {
		column = "email"
	}
	var u models.User
	if err := r.DB.WithContext(ctx).Where(column+" = ?", login).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by %s: %w", column, err)
	}
	return &u, nil
}

// ExistsByField counts trashed rows too, matching the unique index.
func (r *GormRepository) ExistsByField(ctx context.Context, column string, value any, excludeID *uint) (bool, error) {
	if !uniqueColumns[column] {
		return false, fmt.Errorf("exists by field: column %q not allowed", column)
	}
	q := r.DB.WithContext(ctx).Unscoped().Model(&models.User{}).Where(column+" = ?", value)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("exists by %s: %w", column, err)
	}
	return count > 0, nil
}

func (r *GormRepository) Create(ctx context.Context, data map[string]any) (*models.User, error) {
	u := models.User{Status: models.DefaultStatus}
	for k, v := range data {
		if !fillable[k] {
			continue
		}
		s, _ := v.(string)
		switch k {
		case "username":
			u.Username = s
		case "email":
			u.Email = s
		case "password":
			u.Password = s
		case "status":
			u.Status = models.UserStatus(s)
		}
	}
	if err := r.DB.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (r *GormRepository) Update(ctx context.Context, u *models.User, data map[string]any) (*models.User, error) {
	changes := make(map[string]any, len(data))
	for k, v := range data {
		if fillable[k] {
			changes[k] = v
		}
	}
	if len(changes) > 0 {
		if err := r.DB.WithContext(ctx).Model(u).Updates(changes).Error; err != nil {
			return nil, fmt.Errorf("update user %d: %w", u.ID, err)
		}
	}
	return r.FindByID(ctx, u.ID, true)
}

func (r *GormRepository) Delete(ctx context.Context, u *models.User) error {
	db := r.DB.WithContext(ctx)
	if err := db.Delete(u).Error; err != nil {
		return fmt.Errorf("delete user %d: %w", u.ID, err)
	}
	// reload so the caller sees deleted_at
	if err := db.Unscoped().First(u, u.ID).Error; err != nil {
		return fmt.Errorf("reload user %d: %w", u.ID, err)
	}
	return nil
}

func (r *GormRepository) Restore(ctx context.Context, u *models.User) error {
	err := r.DB.WithContext(ctx).Unscoped().Model(u).Update("deleted_at", nil).Error
	if err != nil {
		return fmt.Errorf("restore user %d: %w", u.ID, err)
	}
	u.DeletedAt = gorm.DeletedAt{}
	return nil
}

func (r *GormRepository) ForceDelete(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Unscoped().Delete(u).Error; err != nil {
		return fmt.Errorf("force delete user %d: %w", u.ID, err)
	}
	return nil
}

func (r *GormRepository) List(ctx context.Context, f ListFilter) ([]models.User, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{})
	if f.Username != "" {
		q = q.Where("LOWER(username) LIKE ? ESCAPE '\\'", likePattern(f.Username))
	}
	if f.Email != "" {
		q = q.Where("LOWER(email) LIKE ? ESCAPE '\\'", likePattern(f.Email))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	var list []models.User
	err := q.Order("id").Limit(f.PerPage).Offset((f.Page - 1) * f.PerPage).Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return list, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
