package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/koi-console/internal/console/screens"
)

// canceler is implemented by every order screen.
type canceler interface {
	Cancel(ctx context.Context, orderID int64) error
}

func (h *Handler) ListScreens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ScreenListResponse{Screens: h.registry.Names()})
}

// GetScreen renders a screen, loading it on first view or when refresh=true.
func (h *Handler) GetScreen(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok {
		return
	}
	var err error
	if !s.Snapshot().Loaded || r.URL.Query().Get("refresh") == "true" {
		err = s.Load(r.Context())
	}
	respondScreen(w, r, s, err)
}

func (h *Handler) PatchQuery(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok {
		return
	}
	var p screens.Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	respondScreen(w, r, s, s.Apply(r.Context(), p))
}

func (h *Handler) ResetScreen(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok {
		return
	}
	respondScreen(w, r, s, s.Reset(r.Context()))
}

func (h *Handler) ToggleSort(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok {
		return
	}
	respondScreen(w, r, s, s.ToggleSort(r.Context(), chi.URLParam(r, "field")))
}

func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok {
		return
	}
	respondScreen(w, r, s, s.Navigate(r.Context(), chi.URLParam(r, "nav")))
}

func (h *Handler) DismissError(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok {
		return
	}
	s.DismissError()
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// AdvanceOrder moves a listed order one step as the caller's role.
func (h *Handler) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok {
		return
	}
	staff, ok := s.(*screens.StaffOrders)
	if !ok {
		writeError(w, http.StatusNotFound, "unsupported_action", s.Name()+" has no advance action")
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	next, err := staff.Advance(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AdvanceResponse{Status: next, Screen: staff.Snapshot()})
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	s, ok := h.screen(w, r)
	if !ok {
		return
	}
	c, ok := s.(canceler)
	if !ok {
		writeError(w, http.StatusNotFound, "unsupported_action", s.Name()+" has no cancel action")
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.Cancel(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AdvanceResponse{Status: entity.StatusCanceled, Screen: s.Snapshot()})
}

// AddPost stages a local post on the blog manager.
func (h *Handler) AddPost(w http.ResponseWriter, r *http.Request) {
	if name := chi.URLParam(r, "name"); name != screens.NameBlogManager {
		writeError(w, http.StatusNotFound, "unsupported_action", name+" has no posts action")
		return
	}
	sess, err := h.store.Current(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	item, err := h.registry.BlogManager.AddLocal(sess.User, req.Title, req.Content, req.ContentType, req.Image)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) screen(w http.ResponseWriter, r *http.Request) (screens.Screen, bool) {
	name := chi.URLParam(r, "name")
	s, ok := h.registry.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_screen", name)
		return nil, false
	}
	return s, true
}

// respondScreen answers with the screen's snapshot. Fetch failures are
// already on the snapshot's error banner with the previous records kept, so
// only errors raised before any request change the status code.
func respondScreen(w http.ResponseWriter, r *http.Request, s screens.Screen, err error) {
	var apiErr *entity.APIError
	if err != nil && !errors.Is(err, entity.ErrNetwork) && !errors.As(err, &apiErr) {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}
