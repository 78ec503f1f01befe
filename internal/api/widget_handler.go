package api

import (
	"net/http"

	"github.com/shaiso/Dashboard/internal/telemetry"
)

// ListWidgets возвращает зарегистрированные виджеты.
// GET /api/v1/widgets
func (h *Handler) ListWidgets(w http.ResponseWriter, r *http.Request) {
	widgets := h.dash.Widgets()
	List(w, widgets, len(widgets))
}

// ClearWidgets удаляет все виджеты.
// Entries виджетов в таблице остаются.
// DELETE /api/v1/widgets
func (h *Handler) ClearWidgets(w http.ResponseWriter, r *http.Request) {
	keys := h.dash.Registry().Keys()
	h.dash.ClearData()

	if h.notifier != nil && len(keys) > 0 {
		if err := h.notifier.PublishEntriesCleared(r.Context(), keys); err != nil {
			// Очистка уже выполнена, ошибка уведомления не возвращается клиенту
			telemetry.FromContext(r.Context(), h.logger).Warn("failed to publish widgets cleared", "error", err)
		}
	}

	NoContent(w)
}

// RemoveWidget удаляет один виджет.
// DELETE /api/v1/widgets/{key}
func (h *Handler) RemoveWidget(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	if !h.dash.RemoveData(key) {
		NotFound(w, "widget not found: "+key)
		return
	}

	NoContent(w)
}
