package users_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/go-users/auth"
	"github.com/diewo77/go-users/gate"
	"github.com/diewo77/go-users/internal/db"
	"github.com/diewo77/go-users/internal/models"
	"github.com/diewo77/go-users/internal/policy"
	"github.com/diewo77/go-users/internal/users"
	"github.com/diewo77/go-users/validation"
)

const strongPassword = "Str0ng-Passw0rd!"

// countingRepo records calls that must not happen after a policy deny.
type countingRepo struct {
	users.Repository
	lookups int
	creates int
	racing  bool
}

func (r *countingRepo) ExistsByField(ctx context.Context, column string, value any, excludeID *uint) (bool, error) {
	r.lookups++
	if r.racing {
		return false, nil
	}
	return r.Repository.ExistsByField(ctx, column, value, excludeID)
}

func (r *countingRepo) Create(ctx context.Context, data map[string]any) (*models.User, error) {
	r.creates++
	return r.Repository.Create(ctx, data)
}

type fixture struct {
	db     *gorm.DB
	repo   *countingRepo
	svc    *users.Service
	tokens *auth.Tokens
	admin  policy.Actor
	member policy.Actor
	other  policy.Actor
}

func setup(t *testing.T) *fixture {
	t.Helper()
	d, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(d))
	require.NoError(t, db.Seed(d, db.SeedOptions{Users: 2, Cost: bcrypt.MinCost}))

	tokens, err := auth.NewTokens("test-secret", time.Hour)
	require.NoError(t, err)

	g := gate.NewGate(map[string]gate.Policy[policy.Actor]{policy.ResourceUser: policy.NewUserPolicy()})

	repo := &countingRepo{Repository: users.NewGormRepository(d)}
	svc := users.NewService(users.Config{
		Repo:     repo,
		Hasher:   users.BcryptHasher{Cost: bcrypt.MinCost},
		Gate:     g,
		Tokens:   tokens,
		Password: users.DefaultPasswordRule,
	})

	f := &fixture{db: d, repo: repo, svc: svc, tokens: tokens}
	f.admin = policy.Actor{ID: f.idOf(t, db.AdminUsername), IsAdmin: true}
	f.member = policy.Actor{ID: f.idOf(t, "user01")}
	f.other = policy.Actor{ID: f.idOf(t, "user02")}
	return f
}

func (f *fixture) idOf(t *testing.T, username string) uint {
	t.Helper()
	var u models.User
	require.NoError(t, f.db.Where("username = ?", username).First(&u).Error)
	return u.ID
}

func violationsOf(t *testing.T, err error) validation.Violations {
	t.Helper()
	var verr *validation.Error
	require.True(t, errors.As(err, &verr), "want validation error, got %v", err)
	return verr.Violations
}

func TestUpdate_SelfWithoutPasswordOrStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	before, err := f.svc.Get(ctx, f.member, f.member.ID)
	require.NoError(t, err)

	u, err := f.svc.Update(ctx, f.member, f.member.ID, map[string]any{
		"username": "bob",
		"email":    "b@x.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)
	assert.Equal(t, "b@x.com", u.Email)
	assert.Equal(t, before.Password, u.Password)
	assert.Equal(t, before.Status, u.Status)
}

func TestUpdate_OtherUserDeniedBeforeShaping(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Update(context.Background(), f.member, f.other.ID, map[string]any{
		"username": "bob",
		"email":    "b@x.com",
	})
	assert.ErrorIs(t, err, gate.ErrForbidden)
	assert.Zero(t, f.repo.lookups)
}

func TestUpdate_StatusChangeNeedsAdmin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Update(ctx, f.member, f.member.ID, map[string]any{
		"username": "user01",
		"email":    "user01@example.com",
		"status":   "inactive",
	})
	assert.ErrorIs(t, err, gate.ErrForbidden)

	u, err := f.svc.Get(ctx, f.member, f.member.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, u.Status)

	// resubmitting the current status is not a status change
	_, err = f.svc.Update(ctx, f.member, f.member.ID, map[string]any{
		"username": "user01",
		"email":    "user01@example.com",
		"status":   "active",
	})
	assert.NoError(t, err)

	u, err = f.svc.Update(ctx, f.admin, f.member.ID, map[string]any{
		"username": "user01",
		"email":    "user01@example.com",
		"status":   "suspended",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, u.Status)
}

func TestUpdate_UniquenessIgnoresTarget(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Update(ctx, f.member, f.member.ID, map[string]any{
		"username": "user01",
		"email":    "user01@example.com",
	})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.member, f.member.ID, map[string]any{
		"username": "user02",
		"email":    "user02@example.com",
	})
	v := violationsOf(t, err)
	assert.Equal(t, []string{"has already been taken"}, v["username"])
	assert.Equal(t, []string{"has already been taken"}, v["email"])
}

func TestUpdate_PasswordHashed(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	u, err := f.svc.Update(ctx, f.member, f.member.ID, map[string]any{
		"username": "user01",
		"email":    "user01@example.com",
		"password": "new-secret",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "new-secret", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("new-secret")))

	_, err = f.svc.Update(ctx, f.member, f.member.ID, map[string]any{
		"username": "user01",
		"email":    "user01@example.com",
		"password": "short",
	})
	assert.Contains(t, violationsOf(t, err)["password"], "must be at least 8 characters")
}

func TestRepository_ExistsByFieldExclusion(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	repo := users.NewGormRepository(f.db)

	exists, err := repo.ExistsByField(ctx, "email", "user01@example.com", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	id := f.member.ID
	exists, err = repo.ExistsByField(ctx, "email", "user01@example.com", &id)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.ExistsByField(ctx, "password", "x", nil)
	assert.Error(t, err)
}

func TestCreate_InvalidEmailNoPersistence(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Create(context.Background(), f.admin, map[string]any{
		"username": "a",
		"email":    "bad-email",
		"password": "pw",
	})
	v := violationsOf(t, err)
	assert.Contains(t, v["email"], "must be a valid email")
	assert.Contains(t, v.Fields(), "password")
	assert.Zero(t, f.repo.creates)
}

func TestCreate_DefaultStatusAndHashedPassword(t *testing.T) {
	f := setup(t)
	u, err := f.svc.Create(context.Background(), f.admin, map[string]any{
		"username":              "alice",
		"email":                 "alice@example.com",
		"password":              strongPassword,
		"password_confirmation": strongPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, u.Status)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(strongPassword)))

	out := users.Output(u)
	assert.NotContains(t, out, "password")
	assert.Equal(t, "alice", out["username"])
}

func TestCreate_PasswordOverBcryptLimit(t *testing.T) {
	f := setup(t)
	long := strings.Repeat("Aa1!", 25)
	_, err := f.svc.Create(context.Background(), f.admin, map[string]any{
		"username":              "longpw",
		"email":                 "longpw@example.com",
		"password":              long,
		"password_confirmation": long,
	})
	assert.Equal(t, []string{"must not be greater than 72 bytes"}, violationsOf(t, err)["password"])
	assert.Zero(t, f.repo.creates)
}

func TestUpdate_PasswordOverBcryptLimit(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Update(context.Background(), f.member, f.member.ID, map[string]any{
		"username": "user01",
		"email":    "user01@example.com",
		"password": strings.Repeat("a", 100),
	})
	assert.Equal(t, []string{"must not be greater than 72 bytes"}, violationsOf(t, err)["password"])
}

func TestCreate_RequiresAdmin(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Create(context.Background(), f.member, map[string]any{})
	assert.ErrorIs(t, err, gate.ErrForbidden)

	_, err = f.svc.Create(context.Background(), policy.Actor{}, map[string]any{})
	assert.ErrorIs(t, err, gate.ErrUnauthenticated)
}

func TestCreate_DuplicateCaughtByIndex(t *testing.T) {
	f := setup(t)
	f.repo.racing = true
	_, err := f.svc.Create(context.Background(), f.admin, map[string]any{
		"username":              "fresh",
		"email":                 "user01@example.com",
		"password":              strongPassword,
		"password_confirmation": strongPassword,
	})
	v := violationsOf(t, err)
	assert.Equal(t, []string{"has already been taken"}, v["email"])
}

func TestList(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.List(ctx, f.member, nil)
	assert.ErrorIs(t, err, gate.ErrForbidden)

	page, err := f.svc.List(ctx, f.admin, map[string]any{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, users.DefaultPerPage, page.PerPage)

	page, err = f.svc.List(ctx, f.admin, map[string]any{"username": "USER0", "per_page": "1", "page": "2"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "user02", page.Items[0].Username)

	page, err = f.svc.List(ctx, f.admin, map[string]any{"status": "suspended"})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	_, err = f.svc.List(ctx, f.admin, map[string]any{"per_page": "500", "status": "banned"})
	v := violationsOf(t, err)
	assert.Equal(t, []string{"per_page", "status"}, v.Fields())
}

func TestDeleteRestoreForceDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Delete(ctx, f.member, f.member.ID)
	assert.ErrorIs(t, err, gate.ErrForbidden)

	deleted, err := f.svc.Delete(ctx, f.admin, f.member.ID)
	require.NoError(t, err)
	assert.Equal(t, f.member.ID, deleted.ID)
	assert.True(t, deleted.Trashed())
	assert.Contains(t, users.Output(deleted), "deleted_at")
	_, err = f.svc.Get(ctx, f.admin, f.member.ID)
	assert.ErrorIs(t, err, users.ErrNotFound)

	_, err = f.svc.Restore(ctx, f.member, f.member.ID)
	assert.ErrorIs(t, err, gate.ErrForbidden)

	u, err := f.svc.Restore(ctx, f.admin, f.member.ID)
	require.NoError(t, err)
	assert.False(t, u.Trashed())
	_, err = f.svc.Get(ctx, f.admin, f.member.ID)
	require.NoError(t, err)

	removed, err := f.svc.ForceDelete(ctx, f.admin, f.member.ID)
	require.NoError(t, err)
	assert.Equal(t, "user01", removed.Username)
	var count int64
	f.db.Unscoped().Model(&models.User{}).Where("id = ?", f.member.ID).Count(&count)
	assert.Zero(t, count)

	_, err = f.svc.Delete(ctx, f.admin, 9999)
	assert.ErrorIs(t, err, users.ErrNotFound)
}

func TestGet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Get(ctx, f.member, f.member.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, f.member, f.other.ID)
	assert.ErrorIs(t, err, gate.ErrForbidden)
	_, err = f.svc.Get(ctx, f.admin, f.other.ID)
	assert.NoError(t, err)

	me, err := f.svc.Me(ctx, f.other)
	require.NoError(t, err)
	assert.Equal(t, "user02", me.Username)
}

func TestLogin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tok, err := f.svc.Login(ctx, creds(db.AdminUsername, db.AdminPassword))
	require.NoError(t, err)
	uid, err := f.tokens.Parse(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, uid)

	_, err = f.svc.Login(ctx, creds(db.AdminEmail, db.AdminPassword))
	assert.NoError(t, err)

	_, err = f.svc.Login(ctx, creds(db.AdminUsername, "wrong"))
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, creds("nobody", "password"))
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, map[string]any{"login": ""})
	assert.Equal(t, []string{"login", "password"}, violationsOf(t, err).Fields())

	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", f.member.ID).Update("status", "inactive").Error)
	_, err = f.svc.Login(ctx, creds("user01", db.AdminPassword))
	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
}

func creds(login, password string) map[string]any {
	return map[string]any{"login": login, "password": password}
}

type leakAll struct{}

func (leakAll) IsCompromised(context.Context, string) (bool, error) { return true, nil }

func TestCreate_BreachCheck(t *testing.T) {
	f := setup(t)
	g := gate.NewGate(map[string]gate.Policy[policy.Actor]{policy.ResourceUser: policy.NewUserPolicy()})
	var observed []string
	svc := users.NewService(users.Config{
		Repo:     users.NewGormRepository(f.db),
		Hasher:   users.BcryptHasher{Cost: bcrypt.MinCost},
		Gate:     g,
		Tokens:   f.tokens,
		Breach:   leakAll{},
		Password: users.DefaultPasswordRule,
		OnValidationFailure: func(op string, fields []string) {
			observed = append(observed, op)
			observed = append(observed, fields...)
		},
	})
	_, err := svc.Create(context.Background(), f.admin, map[string]any{
		"username":              "carol",
		"email":                 "carol@example.com",
		"password":              strongPassword,
		"password_confirmation": strongPassword,
	})
	assert.Equal(t, []string{"has appeared in a data leak"}, violationsOf(t, err)["password"])
	assert.Equal(t, []string{users.OpCreate, "password"}, observed)
}

func TestRemovalHook(t *testing.T) {
	f := setup(t)
	g := gate.NewGate(map[string]gate.Policy[policy.Actor]{policy.ResourceUser: policy.NewUserPolicy()})
	var removed []uint
	svc := users.NewService(users.Config{
		Repo:      users.NewGormRepository(f.db),
		Hasher:    users.BcryptHasher{Cost: bcrypt.MinCost},
		Gate:      g,
		Tokens:    f.tokens,
		Password:  users.DefaultPasswordRule,
		OnRemoved: func(id uint) { removed = append(removed, id) },
	})
	ctx := context.Background()

	_, err := svc.Delete(ctx, f.member, f.other.ID)
	require.Error(t, err)
	assert.Empty(t, removed)

	_, err = svc.Delete(ctx, f.admin, f.other.ID)
	require.NoError(t, err)
	_, err = svc.Restore(ctx, f.admin, f.other.ID)
	require.NoError(t, err)
	_, err = svc.ForceDelete(ctx, f.admin, f.other.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.other.ID, f.other.ID, f.other.ID}, removed)
}
