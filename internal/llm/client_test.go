package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080", "test-key", "test-model")
	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.BaseURL != "http://localhost:8080" {
		t.Errorf("NewClient() BaseURL = %v, want http://localhost:8080", client.BaseURL)
	}
	if client.Model != "test-model" {
		t.Errorf("NewClient() Model = %v, want test-model", client.Model)
	}
}

func TestClient_Generate(t *testing.T) {
	tests := []struct {
		name       string
		serverResp func(w http.ResponseWriter, r *http.Request)
		wantErr    bool
		want       string
	}{
		{
			name: "successful generation",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if !strings.HasSuffix(r.URL.Path, ":generateContent") {
					t.Errorf("expected :generateContent path, got %s", r.URL.Path)
				}
				if r.URL.Query().Get("key") != "test-key" {
					t.Errorf("expected key query param, got %q", r.URL.Query().Get("key"))
				}

				var req GenerateRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Fatalf("failed to decode request: %v", err)
				}
				if req.GenerationConfig.TopK != 40 {
					t.Errorf("TopK = %d, want 40", req.GenerationConfig.TopK)
				}
				if req.GenerationConfig.MaxOutputTokens != 2048 {
					t.Errorf("MaxOutputTokens = %d, want 2048", req.GenerationConfig.MaxOutputTokens)
				}
				if len(req.SafetySettings) != 4 {
					t.Errorf("SafetySettings count = %d, want 4", len(req.SafetySettings))
				}

				resp := GenerateResponse{
					Candidates: []Candidate{
						{Content: Content{Parts: []Part{{Text: "generated text"}}}},
					},
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			},
			want: "generated text",
		},
		{
			name: "empty candidates",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(GenerateResponse{})
			},
			wantErr: true,
		},
		{
			name: "candidate with no parts",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				resp := GenerateResponse{
					Candidates: []Candidate{{Content: Content{}}},
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			},
			wantErr: true,
		},
		{
			name: "server error",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("internal server error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResp))
			defer server.Close()

			client := NewClient(server.URL, "test-key", "test-model")
			got, err := client.Generate(context.Background(), "hello", 0.7)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Generate() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Generate() unexpected error: %v", err)
				return
			}

			if got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}
