package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/koi-console/internal/audit"
	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/koi-console/internal/console/core/ports"
	"github.com/jcmexdev/koi-console/internal/console/listquery"
	"github.com/jcmexdev/koi-console/internal/console/orderdraft"
	"github.com/jcmexdev/koi-console/internal/console/screens"
	"github.com/jcmexdev/koi-console/internal/console/session"
	"github.com/jcmexdev/koi-console/internal/console/store"
	"github.com/jcmexdev/koi-console/internal/coordinator"
)

// Handler exposes the console's screens and actions over HTTP.
type Handler struct {
	registry *screens.Registry
	store    *store.Store
	checkout *coordinator.Checkout
	prices   ports.PriceService
	audit    audit.Repository // nil disables the audit endpoint
}

func NewHandler(
	registry *screens.Registry,
	st *store.Store,
	checkout *coordinator.Checkout,
	prices ports.PriceService,
	auditRepo audit.Repository,
) *Handler {
	return &Handler{
		registry: registry,
		store:    st,
		checkout: checkout,
		prices:   prices,
		audit:    auditRepo,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- session ---

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if strings.TrimSpace(req.AccessToken) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "accessToken is required")
		return
	}

	info, err := h.store.Login(r.Context(), req.AccessToken)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(info))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Current(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(sess.User))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Logout(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "logout_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sessionResponse(u entity.UserInfo) SessionResponse {
	return SessionResponse{User: u, ExpiresAt: time.Unix(u.Exp, 0).UTC().Format(time.RFC3339)}
}

// --- orders ---

// Estimate prices a draft without placing it.
func (h *Handler) Estimate(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.decodeDraft(w, r, 0)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, EstimateResponse{Total: draft.Total()})
}

// PlaceOrder submits a draft for the logged-in customer.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Current(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	draft, ok := h.decodeDraft(w, r, sess.User.ID)
	if !ok {
		return
	}

	slog.InfoContext(r.Context(), "placing order", "customer_id", sess.User.ID, "estimate", draft.Total())

	res, err := h.checkout.Place(r.Context(), draft)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.registry.OrderHistory.Refetch(r.Context()); err != nil {
		slog.WarnContext(r.Context(), "refresh after checkout failed", "error", err)
	}
	writeJSON(w, http.StatusCreated, CheckoutResponse{Order: res.Order, PaymentURL: res.PaymentURL})
}

func (h *Handler) decodeDraft(w http.ResponseWriter, r *http.Request, customerID int64) (*orderdraft.Draft, bool) {
	var req OrderDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return nil, false
	}

	draft := orderdraft.New(customerID)
	draft.PickupLocation = req.PickupLocation
	draft.Destination = req.Destination
	draft.TransportMethod = entity.TransportMethod(req.TransportMethod)
	draft.AdditionalServices = req.AdditionalServices
	draft.SetWeight(req.Weight)
	draft.SetQuantity(req.Quantity)

	if req.PriceID != 0 {
		cards, err := h.prices.ListPrices(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return nil, false
		}
		found := false
		for _, c := range cards {
			if c.PriceID == req.PriceID {
				draft.SelectCard(&c)
				found = true
				break
			}
		}
		if !found {
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", "unknown priceId")
			return nil, false
		}
	}
	return draft, true
}

func (h *Handler) OrderAudit(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		writeError(w, http.StatusNotFound, "audit_disabled", "")
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	entries, err := h.audit.ListByOrder(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "audit_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, mapAuditEntries(entries))
}

// --- prices ---

func (h *Handler) CreatePrice(w http.ResponseWriter, r *http.Request) {
	var req PriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	created, err := h.registry.PriceManager.Create(r.Context(), req.toEntity(0))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req PriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if err := h.registry.PriceManager.Update(r.Context(), req.toEntity(id)); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.registry.PriceManager.Snapshot())
}

func (h *Handler) DeletePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.registry.PriceManager.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- helpers ---

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be a non-zero integer")
		return 0, false
	}
	return id, true
}

// writeDomainError maps the console's error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *entity.ValidationError
	var apiErr *entity.APIError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "validation_failed", Message: err.Error(), Fields: vErr.Fields})
	case errors.Is(err, entity.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, entity.ErrExpiredSession):
		writeError(w, http.StatusUnauthorized, "session_expired", err.Error())
	case errors.Is(err, entity.ErrNoSession):
		writeError(w, http.StatusUnauthorized, "no_session", err.Error())
	case errors.Is(err, session.ErrMalformedToken):
		writeError(w, http.StatusBadRequest, "malformed_token", err.Error())
	case errors.Is(err, screens.ErrOrderNotListed):
		writeError(w, http.StatusNotFound, "order_not_listed", err.Error())
	case errors.Is(err, listquery.ErrPageOutOfRange):
		writeError(w, http.StatusBadRequest, "page_out_of_range", err.Error())
	case errors.As(err, &apiErr):
		writeError(w, http.StatusBadGateway, "api_error", apiErr.Message)
	case errors.Is(err, entity.ErrNetwork):
		writeError(w, http.StatusGatewayTimeout, "network_error", err.Error())
	default:
		slog.ErrorContext(r.Context(), "unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
