package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		Metrics(h.metrics),
		Logging(h.logger),
	)

	// Entries ({path...} — полный путь без ведущего "/")
	mux.Handle("GET /api/v1/entries", chain(http.HandlerFunc(h.ListEntries)))
	mux.Handle("GET /api/v1/entries/{path...}", chain(http.HandlerFunc(h.GetEntry)))
	mux.Handle("PUT /api/v1/entries/{path...}", chain(http.HandlerFunc(h.SetEntry)))
	mux.Handle("DELETE /api/v1/entries/{path...}", chain(http.HandlerFunc(h.DeleteEntry)))
	mux.Handle("PUT /api/v1/persistent/{path...}", chain(http.HandlerFunc(h.SetPersistent)))

	// Widgets
	mux.Handle("GET /api/v1/widgets", chain(http.HandlerFunc(h.ListWidgets)))
	mux.Handle("DELETE /api/v1/widgets", chain(http.HandlerFunc(h.ClearWidgets)))
	mux.Handle("DELETE /api/v1/widgets/{key}", chain(http.HandlerFunc(h.RemoveWidget)))

	// Snapshots
	mux.Handle("GET /api/v1/snapshots", chain(http.HandlerFunc(h.ListSnapshots)))
	mux.Handle("POST /api/v1/snapshots", chain(http.HandlerFunc(h.TakeSnapshot)))
	mux.Handle("GET /api/v1/snapshots/{id}", chain(http.HandlerFunc(h.GetSnapshot)))
}
