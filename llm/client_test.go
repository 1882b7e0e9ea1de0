package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// stubProvider is a minimal provider wired straight at a test server.
type stubProvider struct {
	status int
	body   string
}

func (s *stubProvider) Name() string                  { return "stub" }
func (s *stubProvider) BuildURL(baseURL string) string { return baseURL }
func (s *stubProvider) SetHeaders(_ *http.Request)    {}

func (s *stubProvider) BuildRequestBody(model string, messages []Message, _ *float64, _ int) ([]byte, error) {
	return json.Marshal(map[string]any{"model": model, "messages": messages})
}

func (s *stubProvider) ParseResponse(body []byte, model string) (*Response, error) {
	var parsed struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	return &Response{Content: parsed.Content, Model: model}, nil
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{Model: "m"}); err == nil {
		t.Error("expected error for missing provider")
	}
	if _, err := NewClient(Config{Provider: "p"}); err == nil {
		t.Error("expected error for missing model")
	}
}

func TestCompleteSuccess(t *testing.T) {
	RegisterProvider(&stubProvider{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		_, _ = w.Write([]byte(`{"content": "a warm amber wash"}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{Provider: "stub", Model: "test-model", Endpoint: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	resp, err := client.Complete(context.Background(), Request{
		System: "You are a lighting designer.",
		Prompt: "Design a sunset.",
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "a warm amber wash" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.RequestID == "" {
		t.Error("RequestID should be set")
	}
}

func TestCompleteEmptyPrompt(t *testing.T) {
	RegisterProvider(&stubProvider{})

	client, err := NewClient(Config{Provider: "stub", Model: "test-model"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.Complete(context.Background(), Request{}); err == nil {
		t.Error("expected error for empty prompt")
	}
}

func TestCompleteErrorClassification(t *testing.T) {
	RegisterProvider(&stubProvider{})

	tests := []struct {
		name          string
		status        int
		wantTransient bool
	}{
		{name: "rate limited is transient", status: http.StatusTooManyRequests, wantTransient: true},
		{name: "server error is transient", status: http.StatusServiceUnavailable, wantTransient: true},
		{name: "unauthorized is fatal", status: http.StatusUnauthorized, wantTransient: false},
		{name: "bad request is fatal", status: http.StatusBadRequest, wantTransient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client, err := NewClient(Config{Provider: "stub", Model: "m", Endpoint: server.URL})
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}

			_, err = client.Complete(context.Background(), Request{Prompt: "p"})
			if err == nil {
				t.Fatal("expected error")
			}
			if IsTransient(err) != tt.wantTransient {
				t.Errorf("IsTransient = %v, want %v (err: %v)", IsTransient(err), tt.wantTransient, err)
			}
			if IsFatal(err) == tt.wantTransient {
				t.Errorf("IsFatal = %v, want %v", IsFatal(err), !tt.wantTransient)
			}
		})
	}
}

func TestCompleteUnknownProvider(t *testing.T) {
	client, err := NewClient(Config{Provider: "never-registered", Model: "m"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Complete(context.Background(), Request{Prompt: "p"})
	if !IsFatal(err) {
		t.Errorf("unknown provider should be fatal, got %v", err)
	}
}

func TestErrorClassifiers(t *testing.T) {
	base := errors.New("boom")

	if !IsTransient(NewTransientError(base)) {
		t.Error("transient wrapper not detected")
	}
	if !IsFatal(NewFatalError(base)) {
		t.Error("fatal wrapper not detected")
	}
	if IsTransient(base) || IsFatal(base) {
		t.Error("plain error should be neither transient nor fatal")
	}
	if !errors.Is(NewTransientError(base), base) {
		t.Error("wrapped error should unwrap to base")
	}
}
