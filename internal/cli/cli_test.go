package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI записывает последний запрос и отдаёт заданный ответ.
type fakeAPI struct {
	mu sync.Mutex

	method string
	path   string
	query  string
	body   []byte

	status int
	resp   string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.method = r.Method
	f.path = r.URL.EscapedPath()
	f.query = r.URL.RawQuery
	f.body, _ = io.ReadAll(r.Body)

	if f.status == http.StatusNoContent {
		w.WriteHeader(f.status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	io.WriteString(w, f.resp)
}

// respond меняет ответ сервера.
func (f *fakeAPI) respond(status int, resp string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.resp = status, resp
}

// last возвращает метод, путь, query и тело последнего запроса.
func (f *fakeAPI) last() (method, path, query string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.method, f.path, f.query, f.body
}

func newFakeAPI(t *testing.T, status int, resp string) (*fakeAPI, *Client) {
	t.Helper()
	api := &fakeAPI{status: status, resp: resp}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, NewClient(srv.URL + "/")
}

// run выполняет команду как из main и возвращает stdout и stderr.
func run(t *testing.T, client *Client, jsonMode bool, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	clientFn := func() *Client { return client }
	outputFn := func() *Output { return NewOutputTo(jsonMode, &stdout, &stderr) }

	root := &cobra.Command{Use: "dashboard", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(
		NewEntryCmd(clientFn, outputFn),
		NewWidgetCmd(clientFn, outputFn),
		NewSnapshotCmd(clientFn, outputFn),
	)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestClient_ListEntries(t *testing.T) {
	api, client := newFakeAPI(t, http.StatusOK,
		`{"data":[{"path":"/SmartDashboard/speed","type":"double","value":2.5,"persistent":false}],"total":1}`)

	entries, err := client.ListEntries("/SmartDashboard")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2.5", entries[0].FormatValue())

	_, path, query, _ := api.last()
	assert.Equal(t, "/api/v1/entries", path)
	assert.Equal(t, "prefix=%2FSmartDashboard", query)
}

func TestClient_SetEntryEscapesPath(t *testing.T) {
	api, client := newFakeAPI(t, http.StatusOK,
		`{"data":{"path":"/SmartDashboard/Autonomous Mode/selected","type":"string","value":"o1"}}`)

	e, err := client.SetEntry("/SmartDashboard/Autonomous Mode/selected", SetEntryRequest{
		Value: TypedValue{Type: "string", Value: "o1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "o1", e.FormatValue())

	method, path, _, body := api.last()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/api/v1/entries/SmartDashboard/Autonomous%20Mode/selected", path)
	assert.JSONEq(t, `{"value":{"type":"string","value":"o1"}}`, string(body))
}

func TestClient_Error(t *testing.T) {
	_, client := newFakeAPI(t, http.StatusConflict,
		`{"error":{"code":"TYPE_MISMATCH","message":"entry type mismatch"}}`)

	_, err := client.GetEntry("/a")
	require.Error(t, err)
	assert.Equal(t, "TYPE_MISMATCH: entry type mismatch", err.Error())

	_, client = newFakeAPI(t, http.StatusBadGateway, `not json`)
	_, err = client.GetEntry("/a")
	assert.EqualError(t, err, "API error: HTTP 502")
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		typ, in string
		want    any
		wantErr bool
	}{
		{"boolean", "true", true, false},
		{"double", "1.5", 1.5, false},
		{"string", "hello", "hello", false},
		{"double[]", "1, 2", []float64{1, 2}, false},
		{"string[]", "a,b", []string{"a", "b"}, false},
		{"boolean[]", "", []bool{}, false},
		{"double", "fast", nil, true},
		{"float", "1", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.in, func(t *testing.T) {
			got, err := ParseValue(tt.typ, tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEntrySetCmd(t *testing.T) {
	api, client := newFakeAPI(t, http.StatusOK,
		`{"data":{"path":"/SmartDashboard/gain","type":"double","value":0.7,"persistent":true}}`)

	stdout, stderr, err := run(t, client, false, "entry", "set", "/SmartDashboard/gain", "0.7", "-t", "double", "--persistent")
	require.NoError(t, err)

	_, _, _, raw := api.last()
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, true, body["persistent"])
	assert.Equal(t, map[string]any{"type": "double", "value": 0.7}, body["value"])

	assert.Contains(t, stdout, "0.7")
	assert.Contains(t, stderr, "updated")
}

func TestEntryListCmd_JSON(t *testing.T) {
	_, client := newFakeAPI(t, http.StatusOK,
		`{"data":[{"path":"/SmartDashboard/mode","type":"string","value":"auto"}],"total":1}`)

	stdout, _, err := run(t, client, true, "entry", "list")
	require.NoError(t, err)

	var entries []EntryResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "auto", entries[0].FormatValue())
}

func TestWidgetCmds(t *testing.T) {
	api, client := newFakeAPI(t, http.StatusOK,
		`{"data":[{"key":"Autonomous Mode","type":"String Chooser","refs":1}],"total":1}`)

	stdout, _, err := run(t, client, false, "widget", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Autonomous Mode")
	assert.Contains(t, stdout, "String Chooser")

	api.respond(http.StatusNoContent, "")
	_, stderr, err := run(t, client, false, "widget", "remove", "Autonomous Mode")
	require.NoError(t, err)
	method, path, _, _ := api.last()
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/api/v1/widgets/Autonomous%20Mode", path)
	assert.True(t, strings.HasPrefix(stderr, "Widget Autonomous Mode removed"))
}

func TestSnapshotCmds(t *testing.T) {
	api, client := newFakeAPI(t, http.StatusOK,
		`{"data":[{"id":"a","taken_at":"t1","entry_count":3},{"id":"b","taken_at":"t2","entry_count":1}],"total":5}`)

	stdout, stderr, err := run(t, client, false, "snapshot", "list", "--limit", "2")
	require.NoError(t, err)
	_, _, query, _ := api.last()
	assert.Equal(t, "limit=2", query)
	assert.Contains(t, stdout, "t2")
	assert.Contains(t, stderr, "Showing 2 of 5")

	api.respond(http.StatusCreated, `{"data":{"id":"c","taken_at":"t3","entry_count":4}}`)
	stdout, _, err = run(t, client, false, "snapshot", "take")
	require.NoError(t, err)
	method, _, _, _ := api.last()
	assert.Equal(t, http.MethodPost, method)
	assert.Contains(t, stdout, "t3")
}
