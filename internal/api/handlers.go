package api

import (
	"sync"

	"github.com/kominz1028-maker/polar-plant-dashboard/internal/analytics"
	"github.com/kominz1028-maker/polar-plant-dashboard/internal/catalog"
	"github.com/kominz1028-maker/polar-plant-dashboard/internal/models"
)

// Handler handles API requests. Datasets come from the catalog; computed
// statistics come from an analytics store built lazily from it and
// rebuilt after every refresh.
type Handler struct {
	catalog *catalog.Catalog
	version string
	opts    analytics.Options

	mu    sync.Mutex
	store *analytics.Store
	warns []models.Warning
}

// NewHandler creates a new API handler.
func NewHandler(cat *catalog.Catalog, version string, opts analytics.Options) *Handler {
	return &Handler{
		catalog: cat,
		version: version,
		opts:    opts,
	}
}

// ensureStore builds the analytics store on first use. Build failures are
// not cached: a later request retries.
func (h *Handler) ensureStore() (*analytics.Store, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store != nil {
		return h.store, nil
	}
	store, warns, err := analytics.Build(h.catalog, h.opts)
	if err != nil {
		return nil, err
	}
	h.store = store
	h.warns = warns
	return store, nil
}

// warnings returns the load warnings collected by the last store build,
// building the store if needed.
func (h *Handler) warnings() ([]models.Warning, error) {
	if _, err := h.ensureStore(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.warns, nil
}

// refresh drops the memoized datasets and the analytics store so the next
// request re-reads the data directory.
func (h *Handler) refresh() string {
	snapshot := h.catalog.Refresh()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.store != nil {
		h.store.Close()
		h.store = nil
	}
	h.warns = nil
	return snapshot
}

// Close releases the analytics store, if one was built.
func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.store != nil {
		h.store.Close()
		h.store = nil
	}
}
