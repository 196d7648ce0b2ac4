package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"braincells-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatStreamReadsNDJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.Equal(t, "llama3", req.Model)
		assert.Equal(t, "assistant", req.Messages[1].Role)

		fmt.Fprintln(w, `{"model":"llama3","message":{"role":"assistant","content":"Hi"},"done":false}`)
		fmt.Fprintln(w, ``)
		fmt.Fprintln(w, `{"model":"llama3","message":{"role":"assistant","content":" you"},"done":false}`)
		fmt.Fprintln(w, `{"model":"llama3","message":{"role":"assistant","content":""},"done":true}`)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	stream, err := p.ChatStream(context.Background(), []llm.Message{
		{Role: "user", Content: "hello"},
		{Role: "model", Content: "earlier"},
	})
	require.NoError(t, err)
	defer stream.Close()

	first, err := stream.Recv()
	require.NoError(t, err)
	second, err := stream.Recv()
	require.NoError(t, err)
	_, err = stream.Recv()

	assert.Equal(t, "Hi", first)
	assert.Equal(t, " you", second)
	assert.Equal(t, io.EOF, err)
}

func TestChatStreamTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"partial"},"done":false}`)
	}))
	defer srv.Close()

	stream, err := NewOllamaProvider(srv.URL, "llama3").ChatStream(context.Background(), nil)
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.Recv()
	require.NoError(t, err)
	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestChatNonStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"model":"llama3","message":{"role":"assistant","content":"done"},"done":true}`)
	}))
	defer srv.Close()

	out, err := NewOllamaProvider(srv.URL, "llama3").Chat(context.Background(), []llm.Message{{Role: "user", Content: "x"}})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
}

func TestChatStreamHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such model", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "nope").ChatStream(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
