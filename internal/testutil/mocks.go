package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

// ChatRequest is the body of a chat-completion call as the fake server saw it.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature *float64      `json:"temperature"`

	Path          string `json:"-"`
	Authorization string `json:"-"`
}

// ChatMessage is one message of a ChatRequest.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatServer is a fake OpenAI-compatible chat-completion endpoint.
type ChatServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []ChatRequest
	calls    atomic.Int32

	// Status is the HTTP status returned; 0 means 200.
	Status int
	// Content is placed in choices[0].message.content.
	Content string
	// RawBody, when set, is written verbatim instead of a chat reply.
	RawBody string
}

// NewChatServer starts a fake endpoint replying with content. The server is
// closed when the test ends.
func NewChatServer(t *testing.T, content string) *ChatServer {
	t.Helper()

	s := &ChatServer{Content: content}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read request body: %v", err)
		}
		var req ChatRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		req.Path = r.URL.Path
		req.Authorization = r.Header.Get("Authorization")

		s.mu.Lock()
		s.requests = append(s.requests, req)
		status, content, raw := s.Status, s.Content, s.RawBody
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)

		if raw != "" {
			_, _ = io.WriteString(w, raw)
			return
		}
		if status >= 300 {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "fake failure", "type": "invalid_request_error"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		})
	}))
	t.Cleanup(s.Close)

	return s
}

// BaseURL returns the provider base URL the fake server answers on.
func (s *ChatServer) BaseURL() string {
	return s.URL + "/v1"
}

// Calls returns how many requests reached the server.
func (s *ChatServer) Calls() int {
	return int(s.calls.Load())
}

// Requests returns a copy of the recorded requests.
func (s *ChatServer) Requests() []ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ChatRequest(nil), s.requests...)
}

// LastRequest returns the most recent request.
func (s *ChatServer) LastRequest(t *testing.T) ChatRequest {
	t.Helper()

	reqs := s.Requests()
	if len(reqs) == 0 {
		t.Fatal("no request reached the chat server")
	}
	return reqs[len(reqs)-1]
}

// Set changes the reply for subsequent calls.
func (s *ChatServer) Set(status int, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = status
	s.Content = content
	s.RawBody = ""
}

// SetRaw makes the server reply with body verbatim.
func (s *ChatServer) SetRaw(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = status
	s.RawBody = body
}

// TokenMap is a fixed token source keyed by provider id.
type TokenMap map[string]string

// Get returns the token for id.
func (m TokenMap) Get(id string) (string, bool) {
	token, ok := m[id]
	return token, ok && token != ""
}
