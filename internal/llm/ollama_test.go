package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaCompleteJSONFormat(t *testing.T) {
	var got ollamaChatRequest
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"model":"llama3.2","message":{"role":"assistant","content":"{}"},"done":true,"prompt_eval_count":4,"eval_count":1}`)
	})

	p := NewOllamaProvider(srv.URL, "", WithHTTPClient(srv.Client()))
	req := NewRequest("", "", "hi")
	req.JSON = true

	resp, err := p.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "{}", resp.Content)
	assert.Equal(t, 5, resp.Usage.TotalTokens)
	assert.Equal(t, "json", got.Format)
	assert.Equal(t, "llama3.2", got.Model)
}

func TestOllamaStream(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"content":"a"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"content":"b"},"done":false}`)
		fmt.Fprintln(w, `{"done":true,"eval_count":2}`)
	})

	p := NewOllamaProvider(srv.URL, "m", WithHTTPClient(srv.Client()))
	events, err := p.Stream(context.Background(), NewRequest("", "", "hi"))
	require.NoError(t, err)

	var text string
	var done *StreamEvent
	for ev := range events {
		require.NoError(t, ev.Error)
		if ev.Done {
			done = &ev
			continue
		}
		text += ev.Chunk
	}
	assert.Equal(t, "ab", text)
	require.NotNil(t, done)
	require.NotNil(t, done.Usage)
	assert.Equal(t, 2, done.Usage.CompletionTokens)
}

func TestOllamaStreamBadChunk(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `not json`)
	})

	p := NewOllamaProvider(srv.URL, "m", WithHTTPClient(srv.Client()))
	events, err := p.Stream(context.Background(), NewRequest("", "", "hi"))
	require.NoError(t, err)

	_, err = collect(events)
	assert.Error(t, err)
}

func TestOllamaPingDown(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	p := NewOllamaProvider(srv.URL, "", WithHTTPClient(srv.Client()))
	var apiErr *APIError
	require.ErrorAs(t, p.Ping(context.Background()), &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}
