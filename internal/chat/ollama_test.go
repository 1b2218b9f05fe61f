package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OllamaClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOllamaClient(server.URL, "llama3", 5*time.Second, 2*time.Second, logrus.New())
}

func TestOllamaClient_Generate(t *testing.T) {
	var captured generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(generateResponse{Response: "Amman has strong rental demand.", Done: true})
	})

	reply, err := client.Generate("Tell me about Amman", "You are a property assistant.")

	require.NoError(t, err)
	assert.Equal(t, "Amman has strong rental demand.", reply)
	assert.Equal(t, "llama3", captured.Model)
	assert.Equal(t, "Tell me about Amman", captured.Prompt)
	assert.Equal(t, "You are a property assistant.", captured.System)
	assert.False(t, captured.Stream)
}

func TestOllamaClient_Generate_ModelMissing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	})

	_, err := client.Generate("hi", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `model "llama3" is not available`)
}

func TestOllamaClient_Generate_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Generate("hi", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestOllamaClient_Generate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(server.Close)
	client := NewOllamaClient(server.URL, "llama3", 20*time.Millisecond, 20*time.Millisecond, logrus.New())

	_, err := client.Generate("hi", "")

	require.Error(t, err)
	assert.True(t, isTimeout(err))
}

func TestOllamaClient_Health(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, client.Health())
}

func TestOllamaClient_Health_Down(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	client := NewOllamaClient(server.URL, "llama3", time.Second, time.Second, logrus.New())

	err := client.Health()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestOllamaClient_Health_BadStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := client.Health()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}
