package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aurea33/forge-go/pkg/forge/models"
)

func chatReply(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(b)
}

func TestBuildSpecExtractsFencedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		w.Write([]byte(chatReply("Claro:\n```json\n{\"columns\":[]}\n```")))
	}))
	defer srv.Close()

	c := NewClient("test-key", "", srv.URL)
	raw, err := c.BuildSpec(context.Background(), models.GenerateRequest{Prompt: "gastos"})
	if err != nil {
		t.Fatalf("BuildSpec failed: %v", err)
	}
	if string(raw) != `{"columns":[]}` {
		t.Errorf("raw = %s", raw)
	}
}

func TestBuildSpecUpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"rate limited"}}`))
		}},
		{"no json in content", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(chatReply("lo siento, no puedo")))
		}},
		{"empty choices", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewClient("k", "m", srv.URL).BuildSpec(context.Background(), models.GenerateRequest{Prompt: "x"})
			if !errors.Is(err, ErrUpstream) {
				t.Fatalf("expected ErrUpstream, got %v", err)
			}
		})
	}
}

func TestBuildSpecMissingKey(t *testing.T) {
	_, err := NewClient("", "", "").BuildSpec(context.Background(), models.GenerateRequest{})
	if !errors.Is(err, ErrUpstream) || !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrUpstream wrapping ErrMissingAPIKey, got %v", err)
	}
}

func TestBuildUserPrompt(t *testing.T) {
	req := models.GenerateRequest{
		Prompt: "control de gastos",
		Wizard: &models.Wizard{Purpose: "Contable / Finanzas", Periodicity: "Diario"},
		Preferences: models.Preferences{
			Theme:      "dark-gold",
			WantCharts: true,
		},
		Context: map[string]any{"totals_auto": "Sí, por fila y por columna"},
	}
	got := buildUserPrompt(req)

	for _, want := range []string{
		"control de gastos",
		"Contable / Finanzas",
		"Diario",
		"- Nivel: —",
		"- Gráficas: Sí",
		"- Imágenes: No",
		"totals_auto",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q\n%s", want, got)
		}
	}
}
