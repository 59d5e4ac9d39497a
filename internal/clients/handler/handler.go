package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"clientview/internal/clients/join"
	"clientview/internal/clients/models"
	dErrors "clientview/pkg/domain-errors"
	"clientview/pkg/platform/httputil"
	"clientview/pkg/platform/middleware/admin"
	"clientview/pkg/platform/middleware/auth"
	"clientview/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/clients-mocks.go -package=mocks Service

// HeaderDataSource tells clients whether GET /clients was served from sample data.
const HeaderDataSource = "X-Data-Source"

// Service defines the interface for client operations.
type Service interface {
	List(ctx context.Context) (*models.ListResult, error)
	Create(ctx context.Context, cmd models.CreateClientCommand) (*join.ClientView, error)
	DeleteClient(ctx context.Context, partyID string) (*models.DeleteClientResult, error)
	DeleteAddress(ctx context.Context, partyID, addressID string) (int64, error)
	Seed(ctx context.Context) (*models.SeedResult, error)
	Debug(ctx context.Context) (*models.DebugDump, error)
}

// Handler serves the client view and its maintenance routes.
type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator auth.JWTValidator
	adminToken   string
}

// New creates a client Handler. A nil jwtValidator leaves client mutations
// unauthenticated.
func New(service Service, logger *slog.Logger, jwtValidator auth.JWTValidator, adminToken string) *Handler {
	return &Handler{
		service:      service,
		logger:       logger,
		jwtValidator: jwtValidator,
		adminToken:   adminToken,
	}
}

// Register registers the client routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/clients", h.handleList)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/clients", h.handleCreate)
		r.Post("/clients/bundle", h.handleCreateBundle)
		r.Delete("/clients/{partyId}", h.handleDelete)
	})

	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		r.Post("/seed", h.handleSeed)
		r.Get("/debug", h.handleDebug)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.service.List(ctx)
	if err != nil {
		h.writeError(ctx, w, err, "failed to list clients")
		return
	}
	w.Header().Set(HeaderDataSource, string(res.Source))
	httputil.WriteJSON(w, http.StatusOK, res.Clients)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, false)
}

func (h *Handler) handleCreateBundle(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, true)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, requireAddress bool) {
	ctx := r.Context()

	var body map[string]any
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(ctx, w, err, "invalid create client request")
		return
	}
	cmd, err := parseCreate(body, requireAddress)
	if err != nil {
		h.writeError(ctx, w, err, "invalid create client request")
		return
	}

	view, err := h.service.Create(ctx, cmd)
	if err != nil {
		h.writeError(ctx, w, err, "failed to create client")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, createResponse{Message: "Created", Data: view})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	partyID := chi.URLParam(r, "partyId")

	if addressID := r.URL.Query().Get("addressId"); addressID != "" {
		n, err := h.service.DeleteAddress(ctx, partyID, addressID)
		if err != nil {
			h.writeError(ctx, w, err, "failed to delete address")
			return
		}
		httputil.WriteJSON(w, http.StatusOK, deleteAddressResponse{
			Message:      "Address deleted",
			DeletedCount: n,
			Scope:        deleteScope{PartyID: partyID, AddressID: addressID},
		})
		return
	}

	res, err := h.service.DeleteClient(ctx, partyID)
	if err != nil {
		h.writeError(ctx, w, err, "failed to delete client")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, deleteClientResponse{
		Message:             "Client deleted",
		DeletedPartyCount:   res.DeletedPartyCount,
		DeletedAddressCount: res.DeletedAddressCount,
		Scope:               deleteScope{PartyID: partyID},
	})
}

func (h *Handler) handleSeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.service.Seed(ctx)
	if err != nil {
		h.writeError(ctx, w, err, "failed to seed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, seedResponse{Message: "Seed applied", Collections: res.Collections})
}

func (h *Handler) handleDebug(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dump, err := h.service.Debug(ctx)
	if err != nil {
		h.writeError(ctx, w, err, "failed to load debug dump")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, debugResponse{
		Parties:        dump.Parties,
		Addresses:      dump.Addresses,
		PartiesCount:   len(dump.Parties),
		AddressesCount: len(dump.Addresses),
	})
}

// writeError logs client errors at warn and everything else at error, then
// renders the envelope.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	code := dErrors.CodeOf(err)
	requestID := requestcontext.RequestID(ctx)
	if dErrors.ToHTTPStatus(code) >= http.StatusInternalServerError && code != dErrors.CodeUnavailable {
		h.logger.ErrorContext(ctx, msg,
			"error", err,
			"request_id", requestID,
		)
	} else {
		h.logger.WarnContext(ctx, msg,
			"error", err,
			"code", string(code),
			"request_id", requestID,
		)
	}
	httputil.WriteError(w, err)
}
