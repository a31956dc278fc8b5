package story

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"server/internal/domain"
)

func TestNewClientRequiresWebhookURL(t *testing.T) {
	if _, err := NewClient(Options{}); !errors.Is(err, ErrMissingWebhookURL) {
		t.Fatalf("expected ErrMissingWebhookURL, got %v", err)
	}
}

func TestGenerateObjectResponse(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"story_url":     "https://files.example.com/story.pdf",
			"worksheet_url": "https://files.example.com/sheet.pdf",
		})
	}))
	defer srv.Close()

	client, err := NewClient(Options{WebhookURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	res, err := client.Generate(context.Background(), GenerateRequest{
		Topic:       "the water cycle",
		Grade:       "3",
		Subject:     "science",
		ImageLayout: domain.ImageLayoutHeader,
		RequestID:   "req-1",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.StoryURL != "https://files.example.com/story.pdf" || res.WorksheetURL != "https://files.example.com/sheet.pdf" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if gotPayload["topic"] != "the water cycle" || gotPayload["image_format"] != "header" {
		t.Fatalf("unexpected payload: %#v", gotPayload)
	}
}

func TestGenerateArrayResponseWithCamelCase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"storyUrl":"https://f/s","worksheetUrl":"https://f/w"}]`))
	}))
	defer srv.Close()

	client, _ := NewClient(Options{WebhookURL: srv.URL})
	res, err := client.Generate(context.Background(), GenerateRequest{Topic: "volcanoes"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.StoryURL != "https://f/s" || res.WorksheetURL != "https://f/w" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestGenerateFailuresWrapProviderFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream exploded", http.StatusBadGateway)
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>not json</html>"))
			},
		},
		{
			name: "missing urls",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"story_url":""}`))
			},
		},
		{
			name: "pipeline error field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"error":"generation failed"}`))
			},
		},
		{
			name: "empty array",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[]`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client, _ := NewClient(Options{WebhookURL: srv.URL})
			_, err := client.Generate(context.Background(), GenerateRequest{Topic: "anything"})
			if !errors.Is(err, domain.ErrProviderFailure) {
				t.Fatalf("expected ErrProviderFailure, got %v", err)
			}
		})
	}
}

func TestGenerateRequiresTopic(t *testing.T) {
	client, _ := NewClient(Options{WebhookURL: "http://localhost:0"})
	if _, err := client.Generate(context.Background(), GenerateRequest{}); err == nil {
		t.Fatal("expected error for missing topic")
	}
}
