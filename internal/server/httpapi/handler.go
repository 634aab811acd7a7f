// Package httpapi exposes the alias registry over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/factshare/internal/common"
	"github.com/dmitrijs2005/factshare/internal/logging"
	"github.com/dmitrijs2005/factshare/internal/server/models"
	"github.com/dmitrijs2005/factshare/internal/share"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes leaves room for JSON escaping around the longest token.
const maxBodyBytes = 64 << 10

// AliasService is the part of services.AliasService the handlers need.
type AliasService interface {
	Mint(ctx context.Context, token string) (*models.Alias, error)
	Resolve(ctx context.Context, slug string) (*models.Alias, error)
}

type Handler struct {
	service      AliasService
	publicOrigin string
	log          logging.Logger
}

func NewHandler(service AliasService, publicOrigin string, log logging.Logger) *Handler {
	return &Handler{service: service, publicOrigin: publicOrigin, log: log.With("module", "httpapi")}
}

// Register mounts the alias endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Post(common.AliasAPIPath, h.HandleMint)
	r.Get(common.AliasAPIPath, h.HandleResolve)
	r.Get(share.SharePath+"/{"+common.SlugParam+"}", h.HandleRedirect)
}

// HandleMint handles POST /api/share/alias {"token": "..."}.
func (h *Handler) HandleMint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: request body must be {\"token\": \"...\"}", common.ErrorValidation))
		return
	}

	a, err := h.service.Mint(r.Context(), req.Token)
	if err != nil {
		h.log.Warn(r.Context(), "mint failed", "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, aliasResponse{OK: true, Slug: a.Slug, ExpiresAt: &a.ExpiresAt})
}

// HandleResolve handles GET /api/share/alias?slug=<slug>.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.Resolve(r.Context(), r.URL.Query().Get(common.SlugParam))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, aliasResponse{OK: true, Token: a.Token, ExpiresAt: &a.ExpiresAt})
}

// HandleRedirect sends browsers from a short link to the long link.
func (h *Handler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.Resolve(r.Context(), chi.URLParam(r, common.SlugParam))
	if err != nil {
		status, msg := statusOf(err)
		http.Error(w, msg, status)
		return
	}
	http.Redirect(w, r, share.LongLink(h.publicOrigin, a.Token), http.StatusFound)
}
