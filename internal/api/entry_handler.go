package api

import (
	"encoding/json"
	"net/http"

	"github.com/shaiso/Dashboard/internal/domain"
	"github.com/shaiso/Dashboard/internal/mq"
	"github.com/shaiso/Dashboard/internal/table"
	"github.com/shaiso/Dashboard/internal/telemetry"
)

// sourceAPI — метка источника записи в метриках.
const sourceAPI = "api"

// SetEntryRequest — запрос на запись entry.
type SetEntryRequest struct {
	Value      *domain.Value `json:"value"`
	Persistent *bool         `json:"persistent,omitempty"`
}

// ListEntries возвращает entries с опциональным фильтром по префиксу.
// GET /api/v1/entries?prefix=/SmartDashboard
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")

	entries := h.dash.Instance().Entries(prefix)

	resp := make([]EntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = EntryFromDomain(e)
	}
	List(w, resp, len(resp))
}

// GetEntry возвращает entry по полному пути.
// GET /api/v1/entries/{path...}
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	path := entryPath(r)

	e, ok := h.dash.Instance().Lookup(path)
	if !ok {
		NotFound(w, "entry not found: "+path)
		return
	}
	Success(w, EntryFromDomain(e))
}

// SetEntry записывает значение entry от имени dashboard.
// PUT /api/v1/entries/{path...}
func (h *Handler) SetEntry(w http.ResponseWriter, r *http.Request) {
	path := entryPath(r)

	var req SetEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.Value == nil {
		BadRequest(w, "value is required")
		return
	}

	inst := h.dash.Instance()
	err := mq.ApplyEntrySet(inst, mq.EntrySetPayload{
		Path:       path,
		Value:      req.Value,
		Persistent: req.Persistent,
	})
	h.metrics.ObserveRemoteWrite(sourceAPI, err)
	if HandleError(w, h.logger, err) {
		return
	}

	e, ok := inst.Lookup(path)
	if !ok {
		// Entry удалена конкурентно между записью и чтением
		NotFound(w, "entry not found: "+path)
		return
	}

	telemetry.FromContext(r.Context(), h.logger).Debug("entry set via api", "type", e.Value.Type)
	Success(w, EntryFromDomain(e))
}

// DeleteEntry удаляет entry.
// DELETE /api/v1/entries/{path...}
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	path := entryPath(r)

	if !h.dash.Instance().Delete(path, domain.SourceRemote) {
		h.metrics.ObserveRemoteWrite(sourceAPI, table.ErrNotFound)
		NotFound(w, "entry not found: "+path)
		return
	}
	h.metrics.ObserveRemoteWrite(sourceAPI, nil)

	NoContent(w)
}

// SetPersistent включает или выключает флаг persistent.
// PUT /api/v1/persistent/{path...}
func (h *Handler) SetPersistent(w http.ResponseWriter, r *http.Request) {
	path := entryPath(r)

	var req SetPersistentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.Persistent == nil {
		BadRequest(w, "persistent is required")
		return
	}

	inst := h.dash.Instance()
	err := inst.SetPersistent(path, *req.Persistent, domain.SourceRemote)
	h.metrics.ObserveRemoteWrite(sourceAPI, err)
	if HandleError(w, h.logger, err) {
		return
	}

	e, _ := inst.Lookup(path)
	Success(w, EntryFromDomain(e))
}

// entryPath возвращает нормализованный путь из {path...}.
func entryPath(r *http.Request) string {
	return domain.NormalizePath(r.PathValue("path"))
}
