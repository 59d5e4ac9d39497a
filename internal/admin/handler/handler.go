package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clientview/internal/admin/models"
	"clientview/internal/document"
	dErrors "clientview/pkg/domain-errors"
	"clientview/pkg/platform/httputil"
	"clientview/pkg/platform/middleware/admin"
	"clientview/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/admin-mocks.go -package=mocks Service

// Service defines the gateway operations.
type Service interface {
	SetFields(ctx context.Context, m models.Mutation) (*models.UpdateResult, error)
	UnsetFields(ctx context.Context, m models.Mutation) (*models.UpdateResult, error)
	DeleteMany(ctx context.Context, m models.Mutation) (int64, error)
}

// Handler serves /admin and /admin/raw.
type Handler struct {
	service    Service
	logger     *slog.Logger
	adminToken string
	rawToken   string
	rateLimit  func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithRateLimit wraps every gateway route, after token checks.
func WithRateLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.rateLimit = mw
	}
}

func New(service Service, logger *slog.Logger, adminToken, rawToken string, opts ...Option) *Handler {
	h := &Handler{
		service:    service,
		logger:     logger,
		adminToken: adminToken,
		rawToken:   rawToken,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the gateway routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		if h.rateLimit != nil {
			r.Use(h.rateLimit)
		}
		h.mount(r, models.ScopeAllowListed)

		r.Route("/raw", func(r chi.Router) {
			r.Use(admin.RequireRawToken(h.rawToken, h.logger))
			h.mount(r, models.ScopeRaw)
		})
	})
}

func (h *Handler) mount(r chi.Router, scope models.Scope) {
	r.Post("/set", h.handleSet(scope))
	r.Post("/unset", h.handleUnset(scope))
	r.Post("/delete", h.handleDelete(scope))
}

type setResponse struct {
	Message  string `json:"message"`
	Matched  int64  `json:"matched"`
	Modified int64  `json:"modified"`
}

type deleteResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

func (h *Handler) handleSet(scope models.Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		m, body, err := h.decode(r, scope)
		if err != nil {
			h.writeError(ctx, w, err, "invalid set request")
			return
		}
		m.Set = asDocument(body["set"])

		res, err := h.service.SetFields(ctx, m)
		if err != nil {
			h.writeError(ctx, w, err, "set failed")
			return
		}
		httputil.WriteJSON(w, http.StatusOK, setResponse{Message: "Set applied", Matched: res.Matched, Modified: res.Modified})
	}
}

func (h *Handler) handleUnset(scope models.Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		m, body, err := h.decode(r, scope)
		if err != nil {
			h.writeError(ctx, w, err, "invalid unset request")
			return
		}
		m.Unset = unsetFields(body["unset"])

		res, err := h.service.UnsetFields(ctx, m)
		if err != nil {
			h.writeError(ctx, w, err, "unset failed")
			return
		}
		httputil.WriteJSON(w, http.StatusOK, setResponse{Message: "Unset applied", Matched: res.Matched, Modified: res.Modified})
	}
}

func (h *Handler) handleDelete(scope models.Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		m, _, err := h.decode(r, scope)
		if err != nil {
			h.writeError(ctx, w, err, "invalid delete request")
			return
		}

		n, err := h.service.DeleteMany(ctx, m)
		if err != nil {
			h.writeError(ctx, w, err, "delete failed")
			return
		}
		httputil.WriteJSON(w, http.StatusOK, deleteResponse{Message: "Delete applied", Deleted: n})
	}
}

// decode reads {collection, filter, ...}. A missing filter matches everything;
// a filter that is not an object is rejected.
func (h *Handler) decode(r *http.Request, scope models.Scope) (models.Mutation, map[string]any, error) {
	var body map[string]any
	if err := httputil.DecodeJSON(r, &body); err != nil {
		return models.Mutation{}, nil, err
	}
	collection, _ := body["collection"].(string)
	m := models.Mutation{Scope: scope, Collection: collection, Filter: document.Filter{}}

	switch f := body["filter"].(type) {
	case nil:
	case map[string]any:
		m.Filter = document.Filter(f)
	default:
		return models.Mutation{}, nil, dErrors.New(dErrors.CodeBadRequest, "filter must be an object")
	}
	return m, body, nil
}

// unsetFields accepts {"field": ""} objects and ["field"] arrays.
func unsetFields(v any) []string {
	switch u := v.(type) {
	case map[string]any:
		out := make([]string, 0, len(u))
		for k := range u {
			out = append(out, k)
		}
		return out
	case []any:
		out := make([]string, 0, len(u))
		for _, item := range u {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{u}
	default:
		return nil
	}
}

func asDocument(v any) document.Document {
	if m, ok := v.(map[string]any); ok {
		return document.Document(m)
	}
	return nil
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	} else {
		h.logger.WarnContext(ctx, msg,
			"error", err,
			"code", string(code),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
