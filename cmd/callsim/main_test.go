package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method string
	path   string
	query  map[string]string
	body   map[string]any
}

type recorder struct {
	mu    sync.Mutex
	calls []captured
}

func (rec *recorder) snapshot() []captured {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]captured(nil), rec.calls...)
}

func newRecordingServer(t *testing.T, rec *recorder) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := captured{method: r.Method, path: r.URL.Path, query: map[string]string{}}
		for k := range r.URL.Query() {
			c.query[k] = r.URL.Query().Get(k)
		}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			assert.NoError(t, json.Unmarshal(raw, &c.body))
		}
		rec.mu.Lock()
		rec.calls = append(rec.calls, c)
		rec.mu.Unlock()

		if r.URL.Path == "/webhooks/event" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"action":"talk","text":"hi"}]`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSimulatorCallFlow(t *testing.T) {
	rec := &recorder{}
	srv := newRecordingServer(t, rec)
	sim := newSimulator(srv.URL + "/")

	resp, err := sim.answer("447700900123", "CON-leg")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	resp, err = sim.transfer("CON-leg", "CON-named")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())

	_, err = sim.press("CON-named", "2")
	require.NoError(t, err)
	_, err = sim.press("CON-named", "")
	require.NoError(t, err)

	calls := rec.snapshot()
	require.Len(t, calls, 4)

	assert.Equal(t, http.MethodGet, calls[0].method)
	assert.Equal(t, "/webhooks/answer", calls[0].path)
	assert.Equal(t, "447700900123", calls[0].query["from"])

	assert.Equal(t, http.MethodPost, calls[1].method)
	assert.Equal(t, "transfer", calls[1].body["type"])
	assert.Equal(t, "CON-named", calls[1].body["conversation_uuid_to"])

	assert.Equal(t, "/webhooks/dtmf", calls[2].path)
	assert.Equal(t, "2", calls[2].body["dtmf"])
	assert.Equal(t, false, calls[2].body["timed_out"])
	assert.Equal(t, true, calls[3].body["timed_out"])
}

func TestPrintResponse(t *testing.T) {
	rec := &recorder{}
	srv := newRecordingServer(t, rec)
	sim := newSimulator(srv.URL)

	var logs, out bytes.Buffer
	log := zerolog.New(&logs)

	resp, err := sim.answer("447700900123", "CON-leg")
	require.NoError(t, err)
	printResponse(log, &out, "answer", resp)

	assert.Contains(t, logs.String(), `"step":"answer"`)
	assert.Contains(t, logs.String(), `"status":200`)
	assert.Contains(t, out.String(), "\"action\": \"talk\"")

	logs.Reset()
	out.Reset()
	resp, err = sim.transfer("CON-leg", "CON-named")
	require.NoError(t, err)
	printResponse(log, &out, "transfer", resp)

	assert.Contains(t, logs.String(), `"status":204`)
	assert.Empty(t, out.String())
}
