package handlers

import (
	"context"
	"net/http"

	"github.com/diewo77/go-users/httpx"
	"github.com/diewo77/go-users/i18n"
	"github.com/diewo77/go-users/internal/models"
	"github.com/diewo77/go-users/internal/policy"
	"github.com/diewo77/go-users/internal/users"
)

// UserService is the part of users.Service the handlers depend on.
type UserService interface {
	List(ctx context.Context, actor policy.Actor, query map[string]any) (*users.Page, error)
	Get(ctx context.Context, actor policy.Actor, id uint) (*models.User, error)
	Me(ctx context.Context, actor policy.Actor) (*models.User, error)
	Create(ctx context.Context, actor policy.Actor, input map[string]any) (*models.User, error)
	Update(ctx context.Context, actor policy.Actor, id uint, input map[string]any) (*models.User, error)
	Delete(ctx context.Context, actor policy.Actor, id uint) (*models.User, error)
	Restore(ctx context.Context, actor policy.Actor, id uint) (*models.User, error)
	ForceDelete(ctx context.Context, actor policy.Actor, id uint) (*models.User, error)
}

// UserHandler serves the /api/users resource.
type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func actor(r *http.Request) policy.Actor {
	a, _ := policy.ActorFromContext(r.Context())
	return a
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), actor(r), queryMap(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Page(w, users.OutputList(page.Items), page.Page, page.PerPage, page.Total, i18n.Tc(r.Context(), "users.fetched"))
}

func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Get(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Data(w, http.StatusOK, users.Output(u), i18n.Tc(r.Context(), "user.fetched"))
}

// Me returns the authenticated user.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Me(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Data(w, http.StatusOK, users.Output(u), i18n.Tc(r.Context(), "user.fetched"))
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Create(r.Context(), actor(r), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Data(w, http.StatusCreated, users.Output(u), i18n.Tc(r.Context(), "user.created"))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Update(r.Context(), actor(r), id, body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Data(w, http.StatusOK, users.Output(u), i18n.Tc(r.Context(), "user.updated"))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Delete(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Data(w, http.StatusOK, users.Output(u), i18n.Tc(r.Context(), "user.deleted"))
}

func (h *UserHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.Restore(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Data(w, http.StatusOK, users.Output(u), i18n.Tc(r.Context(), "user.restored"))
}

func (h *UserHandler) ForceDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.svc.ForceDelete(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Data(w, http.StatusOK, users.Output(u), i18n.Tc(r.Context(), "user.force_deleted"))
}
