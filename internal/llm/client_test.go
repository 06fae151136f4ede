package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fakeEndpoint emulates an OpenAI-compatible server with independent control
// over the chat and legacy completion shapes.
type fakeEndpoint struct {
	chatStatus   int
	chatContent  string
	textStatus   int
	textContent  string
	chatRequests atomic.Int64
	textRequests atomic.Int64
}

func (f *fakeEndpoint) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			f.chatRequests.Add(1)
			if f.chatStatus != http.StatusOK {
				http.Error(w, "chat template error", f.chatStatus)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"role": "assistant", "content": f.chatContent}},
				},
			})
		case strings.HasSuffix(r.URL.Path, "/completions"):
			f.textRequests.Add(1)
			if f.textStatus != http.StatusOK {
				http.Error(w, "completion error", f.textStatus)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{"text": f.textContent}},
			})
		default:
			http.NotFound(w, r)
		}
	})
}

func newTestClient(t *testing.T, endpoint *fakeEndpoint, cache *ResponseCache) *Client {
	t.Helper()
	server := httptest.NewServer(endpoint.handler())
	t.Cleanup(server.Close)
	return NewClient(Config{
		BaseURL: server.URL + "/v1",
		Model:   "test-model",
		Timeout: 2 * time.Second,
	}, cache, nil)
}

func TestCompleteUsesChatShape(t *testing.T) {
	endpoint := &fakeEndpoint{chatStatus: http.StatusOK, chatContent: `{"topic": "sync"}`}
	client := newTestClient(t, endpoint, nil)

	got, err := client.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != `{"topic": "sync"}` {
		t.Errorf("unexpected completion %q", got)
	}
	if endpoint.textRequests.Load() != 0 {
		t.Error("legacy completion shape must not be used when chat succeeds")
	}
}

func TestCompleteFallsBackToTextShape(t *testing.T) {
	endpoint := &fakeEndpoint{
		chatStatus:  http.StatusBadRequest,
		textStatus:  http.StatusOK,
		textContent: "  plain completion  ",
	}
	client := newTestClient(t, endpoint, nil)

	got, err := client.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "plain completion" {
		t.Errorf("expected trimmed text completion, got %q", got)
	}
	if endpoint.chatRequests.Load() == 0 || endpoint.textRequests.Load() == 0 {
		t.Error("expected both shapes to be attempted")
	}
}

func TestCompleteErrorWhenBothShapesFail(t *testing.T) {
	endpoint := &fakeEndpoint{chatStatus: http.StatusBadRequest, textStatus: http.StatusBadRequest}
	client := newTestClient(t, endpoint, nil)

	if _, err := client.Complete(context.Background(), "prompt"); err == nil {
		t.Fatal("expected an error when both shapes fail")
	}
}

func TestCompleteEmptyCompletionIsError(t *testing.T) {
	endpoint := &fakeEndpoint{chatStatus: http.StatusOK, chatContent: "   ", textStatus: http.StatusOK, textContent: ""}
	client := newTestClient(t, endpoint, nil)

	if _, err := client.Complete(context.Background(), "prompt"); err == nil {
		t.Fatal("expected an error for an empty completion")
	}
}

func TestCompleteServedFromCache(t *testing.T) {
	cache, err := NewResponseCache(8)
	if err != nil {
		t.Fatalf("NewResponseCache: %v", err)
	}
	endpoint := &fakeEndpoint{chatStatus: http.StatusOK, chatContent: "cached"}
	client := newTestClient(t, endpoint, cache)

	for i := 0; i < 3; i++ {
		got, err := client.Complete(context.Background(), "same prompt")
		if err != nil {
			t.Fatalf("Complete %d: %v", i, err)
		}
		if got != "cached" {
			t.Fatalf("Complete %d: unexpected completion %q", i, got)
		}
	}
	if requests := endpoint.chatRequests.Load(); requests != 1 {
		t.Errorf("expected one upstream request, got %d", requests)
	}
}

func TestCompleteRejectsEmptyPrompt(t *testing.T) {
	endpoint := &fakeEndpoint{chatStatus: http.StatusOK, chatContent: "x"}
	client := newTestClient(t, endpoint, nil)

	if _, err := client.Complete(context.Background(), "   "); err == nil {
		t.Fatal("expected an error for an empty prompt")
	}
}

func TestCompleteHonorsContextCancellation(t *testing.T) {
	endpoint := &fakeEndpoint{chatStatus: http.StatusOK, chatContent: "x"}
	client := newTestClient(t, endpoint, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Complete(ctx, "prompt"); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}
