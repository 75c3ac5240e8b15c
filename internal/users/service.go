// Package users implements the user-management operations: authorization,
// payload shaping, password hashing and persistence.
package users

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/go-users/auth"
	"github.com/diewo77/go-users/gate"
	"github.com/diewo77/go-users/i18n"
	"github.com/diewo77/go-users/internal/models"
	"github.com/diewo77/go-users/internal/policy"
	"github.com/diewo77/go-users/validation"
)

// ErrInvalidCredentials is returned by Login for unknown users, wrong
// passwords and accounts that may not log in.
var ErrInvalidCredentials = errors.New("users: invalid credentials")

// Operation names reported to the validation failure hook.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpList   = "list"
)

// Page is one page of the user list.
type Page struct {
	Items   []models.User
	Total   int64
	Page    int
	PerPage int
}

// Token is an issued bearer token.
type Token struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Config wires a Service.
type Config struct {
	Repo   Repository
	Hasher Hasher
	Gate   *gate.Gate[policy.Actor]
	Tokens *auth.Tokens
	// Breach enables the uncompromised password check when non-nil.
	Breach   validation.BreachChecker
	Password validation.PasswordRule
	// OnValidationFailure observes rejected fields per operation.
	OnValidationFailure func(operation string, fields []string)
	// OnRemoved is called with the id of a user after delete, restore or
	// force delete, so cached actors can be dropped.
	OnRemoved func(id uint)
}

// Service orchestrates user operations. It is safe for concurrent use.
type Service struct {
	repo      Repository
	hasher    Hasher
	gate      *gate.Gate[policy.Actor]
	tokens    *auth.Tokens
	breach    validation.BreachChecker
	onFailure func(string, []string)
	onRemoved func(uint)

	createRules validation.RuleSet
	updateRules validation.RuleSet
	listRules   validation.RuleSet
	loginRules  validation.RuleSet
}

func NewService(cfg Config) *Service {
	pw := cfg.Password
	pw.Uncompromised = cfg.Breach != nil
	return &Service{
		repo:        cfg.Repo,
		hasher:      cfg.Hasher,
		gate:        cfg.Gate,
		tokens:      cfg.Tokens,
		breach:      cfg.Breach,
		onFailure:   cfg.OnValidationFailure,
		onRemoved:   cfg.OnRemoved,
		createRules: CreateRules(pw),
		updateRules: UpdateRules(),
		listRules:   ListRules(),
		loginRules:  LoginRules(),
	}
}

func (s *Service) removed(id uint) {
	if s.onRemoved != nil {
		s.onRemoved(id)
	}
}

func (s *Service) authorize(ctx context.Context, actor policy.Actor, action gate.Action, target *models.User) error {
	var resource any
	if target != nil {
		resource = target
	}
	return s.gate.Authorize(ctx, actor, action, policy.ResourceUser, resource)
}

func (s *Service) shape(ctx context.Context, op string, rs validation.RuleSet, input map[string]any, exclude *uint) (map[string]any, error) {
	out, err := validation.Shape(ctx, rs, input, validation.Options{
		ExcludeID: exclude,
		Lookup:    s.repo,
		Breach:    s.breach,
	})
	var verr *validation.Error
	if errors.As(err, &verr) && s.onFailure != nil {
		s.onFailure(op, verr.Violations.Fields())
	}
	return out, err
}

// List returns one page of users matching the query filters.
func (s *Service) List(ctx context.Context, actor policy.Actor, query map[string]any) (*Page, error) {
	if err := s.authorize(ctx, actor, gate.ActionViewAny, nil); err != nil {
		return nil, err
	}
	q, err := s.shape(ctx, OpList, s.listRules, query, nil)
	if err != nil {
		return nil, err
	}
	f := ListFilter{Page: 1, PerPage: DefaultPerPage}
	f.Username, _ = q["username"].(string)
	f.Email, _ = q["email"].(string)
	f.Status, _ = q["status"].(string)
	if n, ok := validation.Int(q["page"]); ok {
		f.Page = n
	}
	if n, ok := validation.Int(q["per_page"]); ok {
		f.PerPage = n
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		slog.ErrorContext(ctx, "list users failed", "err", err)
		return nil, err
	}
	return &Page{Items: items, Total: total, Page: f.Page, PerPage: f.PerPage}, nil
}

// Get returns the user id if actor may view it.
func (s *Service) Get(ctx context.Context, actor policy.Actor, id uint) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, gate.ActionView, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Me returns the actor's own record.
func (s *Service) Me(ctx context.Context, actor policy.Actor) (*models.User, error) {
	if actor.ID == 0 {
		return nil, gate.ErrUnauthenticated
	}
	return s.repo.FindByID(ctx, actor.ID, false)
}

// Create validates input and stores a new user.
func (s *Service) Create(ctx context.Context, actor policy.Actor, input map[string]any) (*models.User, error) {
	if err := s.authorize(ctx, actor, gate.ActionCreate, nil); err != nil {
		return nil, err
	}
	data, err := s.shape(ctx, OpCreate, s.createRules, input, nil)
	if err != nil {
		return nil, err
	}
	if err := s.hashPassword(data); err != nil {
		return nil, err
	}
	u, err := s.repo.Create(ctx, data)
	if err != nil {
		return nil, s.persistError(ctx, "create", data, nil, err)
	}
	slog.InfoContext(ctx, "user created", "user_id", u.ID, "actor", actor.ID)
	return u, nil
}

// Update validates input and applies it to user id. Changing the status
// needs the UpdateStatus permission on top of Update.
func (s *Service) Update(ctx context.Context, actor policy.Actor, id uint, input map[string]any) (*models.User, error) {
	target, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, gate.ActionUpdate, target); err != nil {
		return nil, err
	}
	data, err := s.shape(ctx, OpUpdate, s.updateRules, input, &target.ID)
	if err != nil {
		return nil, err
	}
	if status, ok := data["status"].(string); ok && models.UserStatus(status) != target.Status {
		if err := s.authorize(ctx, actor, gate.ActionUpdateStatus, target); err != nil {
			return nil, err
		}
	}
	if err := s.hashPassword(data); err != nil {
		return nil, err
	}
	u, err := s.repo.Update(ctx, target, data)
	if err != nil {
		return nil, s.persistError(ctx, "update", data, &target.ID, err)
	}
	return u, nil
}

// Delete soft-deletes user id and returns the trashed user.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, id uint) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, gate.ActionDelete, u); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, u); err != nil {
		slog.ErrorContext(ctx, "delete user failed", "user_id", id, "err", err)
		return nil, err
	}
	s.removed(u.ID)
	return u, nil
}

// Restore un-deletes a trashed user.
func (s *Service) Restore(ctx context.Context, actor policy.Actor, id uint) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, gate.ActionRestore, u); err != nil {
		return nil, err
	}
	if err := s.repo.Restore(ctx, u); err != nil {
		slog.ErrorContext(ctx, "restore user failed", "user_id", id, "err", err)
		return nil, err
	}
	s.removed(u.ID)
	return u, nil
}

// ForceDelete removes user id permanently, trashed or not, and returns the
// removed user.
func (s *Service) ForceDelete(ctx context.Context, actor policy.Actor, id uint) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, gate.ActionForceDelete, u); err != nil {
		return nil, err
	}
	if err := s.repo.ForceDelete(ctx, u); err != nil {
		slog.ErrorContext(ctx, "force delete user failed", "user_id", id, "err", err)
		return nil, err
	}
	s.removed(u.ID)
	return u, nil
}

// Login checks credentials and issues a bearer token. The login field is
// a username or an email address.
func (s *Service) Login(ctx context.Context, input map[string]any) (*Token, error) {
	data, err := validation.Shape(ctx, s.loginRules, input, validation.Options{})
	if err != nil {
		return nil, err
	}
	login, _ := data["login"].(string)
	password, _ := data["password"].(string)

	u, err := s.repo.FindByLogin(ctx, login)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Compare(u.Password, password) || !u.CanLogin() {
		return nil, ErrInvalidCredentials
	}
	raw, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "user logged in", "user_id", u.ID)
	return &Token{Token: raw, ExpiresAt: exp, User: u}, nil
}

func (s *Service) hashPassword(data map[string]any) error {
	plain, ok := data["password"].(string)
	if !ok {
		return nil
	}
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return err
	}
	data["password"] = hash
	return nil
}

// persistError turns a unique index violation into a field violation.
// The index catches inserts that raced past the uniqueness rule.
func (s *Service) persistError(ctx context.Context, op string, data map[string]any, exclude *uint, err error) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		slog.ErrorContext(ctx, "persist user failed", "op", op, "err", err)
		return err
	}
	v := make(validation.Violations)
	for _, col := range []string{"username", "email"} {
		val, ok := data[col]
		if !ok {
			continue
		}
		if exists, lerr := s.repo.ExistsByField(ctx, col, val, exclude); lerr == nil && exists {
			v.Add(col, i18n.Tc(ctx, "unique"))
		}
	}
	if v.Empty() {
		v.Add("email", i18n.Tc(ctx, "unique"))
	}
	return &validation.Error{Violations: v}
}
