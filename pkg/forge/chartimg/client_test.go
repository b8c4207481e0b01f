package chartimg

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRender(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chart" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		if payload["format"] != "png" {
			t.Errorf("format = %v", payload["format"])
		}
		w.Write(png)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	img, err := c.Render(context.Background(), Request{
		Type:   "bar",
		Title:  "Distribución",
		Labels: []string{"A", "B"},
		Values: []float64{1, 2},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if string(img) != string(png) {
		t.Errorf("unexpected image bytes: %v", img)
	}
}

func TestRenderNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Render(context.Background(), Request{Type: "bar"})
	if !errors.Is(err, ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
}

func TestRenderCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL).Render(ctx, Request{Type: "pie"})
	if !errors.Is(err, ErrRender) {
		t.Fatalf("expected ErrRender wrapping the context error, got %v", err)
	}
}
