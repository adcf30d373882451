package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devcore/rag-chat/internal/infra/llm/groq"
)

func newCompletionServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req groq.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		require.Equal(t, "user", req.Messages[0].Role)

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGroqGeneratorComplete(t *testing.T) {
	srv := newCompletionServer(t, http.StatusOK, `{
		"choices":[{"message":{"role":"assistant","content":"  Deploy with the cli.  "}}],
		"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}
	}`)
	client, err := groq.NewClient("test-key", srv.URL)
	require.NoError(t, err)
	gen := NewGroqGenerator(client, "llama-3.3-70b-versatile", 0.7, 1024)

	out, err := gen.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, "Deploy with the cli.", out.Text)
	require.NotNil(t, out.Usage)
	require.Equal(t, 15, out.Usage.TotalTokens)
}

func TestGroqGeneratorNoUsage(t *testing.T) {
	srv := newCompletionServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"answer"}}]}`)
	client, err := groq.NewClient("test-key", srv.URL)
	require.NoError(t, err)
	gen := NewGroqGenerator(client, "m", 0, 0)

	out, err := gen.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	require.Nil(t, out.Usage)
}

func TestGroqGeneratorNoChoices(t *testing.T) {
	srv := newCompletionServer(t, http.StatusOK, `{"choices":[]}`)
	client, err := groq.NewClient("test-key", srv.URL)
	require.NoError(t, err)
	gen := NewGroqGenerator(client, "m", 0, 0)

	_, err = gen.Complete(context.Background(), "prompt")
	require.Error(t, err)
}

func TestGroqGeneratorEmptyText(t *testing.T) {
	srv := newCompletionServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"   "}}]}`)
	client, err := groq.NewClient("test-key", srv.URL)
	require.NoError(t, err)
	gen := NewGroqGenerator(client, "m", 0, 0)

	_, err = gen.Complete(context.Background(), "prompt")
	require.Error(t, err)
}

func TestGroqGeneratorUpstreamError(t *testing.T) {
	srv := newCompletionServer(t, http.StatusInternalServerError, `boom`)
	client, err := groq.NewClient("test-key", srv.URL)
	require.NoError(t, err)
	gen := NewGroqGenerator(client, "m", 0, 0)

	_, err = gen.Complete(context.Background(), "prompt")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=500")
}

func TestGroqClientRequiresKey(t *testing.T) {
	_, err := groq.NewClient("", "")
	require.Error(t, err)
}
