package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// EntryResponse — entry из API.
type EntryResponse struct {
	Path       string          `json:"path"`
	Type       string          `json:"type"`
	Value      json.RawMessage `json:"value"`
	Persistent bool            `json:"persistent"`
	Seq        uint64          `json:"seq"`
	UpdatedAt  string          `json:"updated_at"`
}

// FormatValue возвращает значение для табличного вывода.
// Строки выводятся без кавычек.
func (e EntryResponse) FormatValue() string {
	var s string
	if e.Type == "string" && json.Unmarshal(e.Value, &s) == nil {
		return s
	}
	return string(e.Value)
}

// WidgetResponse — виджет из API.
type WidgetResponse struct {
	Key  string `json:"key"`
	Type string `json:"type"`
	Refs int    `json:"refs"`
}

// SnapshotResponse — снимок из API.
type SnapshotResponse struct {
	ID         string          `json:"id"`
	TakenAt    string          `json:"taken_at"`
	EntryCount int             `json:"entry_count"`
	Entries    []EntryResponse `json:"entries,omitempty"`
}

// --- Request types ---

// TypedValue — значение с типом в формате API.
type TypedValue struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// SetEntryRequest — запись entry.
type SetEntryRequest struct {
	Value      TypedValue `json:"value"`
	Persistent *bool      `json:"persistent,omitempty"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для dashboard API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Entries ---

// ListEntries возвращает entries под префиксом.
func (c *Client) ListEntries(prefix string) ([]EntryResponse, error) {
	params := url.Values{}
	if prefix != "" {
		params.Set("prefix", prefix)
	}

	var entries []EntryResponse
	err := c.list("/api/v1/entries", params, &entries)
	return entries, err
}

// GetEntry возвращает entry по пути.
func (c *Client) GetEntry(path string) (*EntryResponse, error) {
	var entry EntryResponse
	err := c.get("/api/v1/entries/"+escapePath(path), &entry)
	return &entry, err
}

// SetEntry записывает значение entry.
func (c *Client) SetEntry(path string, req SetEntryRequest) (*EntryResponse, error) {
	var entry EntryResponse
	err := c.put("/api/v1/entries/"+escapePath(path), req, &entry)
	return &entry, err
}

// DeleteEntry удаляет entry.
func (c *Client) DeleteEntry(path string) error {
	return c.delete("/api/v1/entries/" + escapePath(path))
}

// SetPersistent включает или выключает флаг persistent.
func (c *Client) SetPersistent(path string, persistent bool) (*EntryResponse, error) {
	var entry EntryResponse
	body := map[string]bool{"persistent": persistent}
	err := c.put("/api/v1/persistent/"+escapePath(path), body, &entry)
	return &entry, err
}

// --- Widgets ---

// ListWidgets возвращает зарегистрированные виджеты.
func (c *Client) ListWidgets() ([]WidgetResponse, error) {
	var widgets []WidgetResponse
	err := c.list("/api/v1/widgets", nil, &widgets)
	return widgets, err
}

// RemoveWidget удаляет виджет.
func (c *Client) RemoveWidget(key string) error {
	return c.delete("/api/v1/widgets/" + url.PathEscape(key))
}

// ClearWidgets удаляет все виджеты.
func (c *Client) ClearWidgets() error {
	return c.delete("/api/v1/widgets")
}

// --- Snapshots ---

// ListSnapshots возвращает снимки.
func (c *Client) ListSnapshots(limit, offset int) ([]SnapshotResponse, int, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	var snapshots []SnapshotResponse
	total, err := c.listTotal("/api/v1/snapshots", params, &snapshots)
	return snapshots, total, err
}

// GetSnapshot возвращает снимок с entries.
func (c *Client) GetSnapshot(id string) (*SnapshotResponse, error) {
	var snapshot SnapshotResponse
	err := c.get("/api/v1/snapshots/"+url.PathEscape(id), &snapshot)
	return &snapshot, err
}

// TakeSnapshot снимает снимок немедленно.
func (c *Client) TakeSnapshot() (*SnapshotResponse, error) {
	var snapshot SnapshotResponse
	err := c.post("/api/v1/snapshots", nil, &snapshot)
	return &snapshot, err
}

// --- HTTP helpers ---

// escapePath экранирует сегменты пути entry, сохраняя разделители.
func escapePath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	_, err := c.listTotal(path, params, result)
	return err
}

func (c *Client) listTotal(path string, params url.Values, result any) (int, error) {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return 0, err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	return lr.Total, json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
