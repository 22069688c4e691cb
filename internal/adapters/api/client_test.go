package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hylla/lagerkoll/internal/app"
)

func TestCreateItemSuccess(t *testing.T) {
	var gotBody map[string]json.RawMessage
	var gotSession, gotPath, gotMethod string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotSession = r.Header.Get("X-Client-Session")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 7, "name": "Widget", "stock": 12}`))
	}))
	defer server.Close()

	client := New(server.URL, "session-1", time.Second)
	price := 19.99
	item, err := client.CreateItem(context.Background(), app.CreateItemInput{
		Name:        "  Widget  ",
		Stock:       12,
		Description: "A widget",
		Price:       &price,
	})
	if err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	if item == nil || item.ID != 7 || item.Name != "Widget" || item.Stock != 12 {
		t.Fatalf("unexpected item %+v", item)
	}

	if gotMethod != http.MethodPost || gotPath != "/api/items" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	if gotSession != "session-1" {
		t.Fatalf("session header = %q", gotSession)
	}
	if string(gotBody["name"]) != `"Widget"` {
		t.Fatalf("name field = %s, want trimmed", gotBody["name"])
	}
	if string(gotBody["price"]) != "19.99" {
		t.Fatalf("price field = %s", gotBody["price"])
	}
}

func TestCreateItemOmittedOptionalsSerializeAsNull(t *testing.T) {
	var rawBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		rawBody = string(buf)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := New(server.URL, "", time.Second)
	item, err := client.CreateItem(context.Background(), app.CreateItemInput{Name: "Widget", Stock: 0})
	if err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	// Empty success body is still a success; the channel delivers the item.
	if item != nil {
		t.Fatalf("expected nil item for empty body, got %+v", item)
	}
	if !strings.Contains(rawBody, `"description":null`) || !strings.Contains(rawBody, `"price":null`) {
		t.Fatalf("optionals not null in body: %s", rawBody)
	}
}

func TestCreateItemValidationErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors": {"name": ["Name already exists"], "stock": ["Stock must be positive", "Stock too large"]}}`))
	}))
	defer server.Close()

	client := New(server.URL, "", time.Second)
	_, err := client.CreateItem(context.Background(), app.CreateItemInput{Name: "Widget", Stock: 1})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if vErr.FieldMessage("name") != "Name already exists" {
		t.Fatalf("name message = %q", vErr.FieldMessage("name"))
	}
	if vErr.FieldMessage("stock") != "Stock must be positive" {
		t.Fatalf("stock message = %q, want first entry", vErr.FieldMessage("stock"))
	}
	if vErr.FieldMessage("price") != "" {
		t.Fatalf("unknown field message = %q, want empty", vErr.FieldMessage("price"))
	}
}

func TestCreateItemServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message": "database unavailable"}`))
	}))
	defer server.Close()

	client := New(server.URL, "", time.Second)
	_, err := client.CreateItem(context.Background(), app.CreateItemInput{Name: "Widget", Stock: 1})
	if err == nil || !strings.Contains(err.Error(), "database unavailable") {
		t.Fatalf("error = %v, want server message surfaced", err)
	}
}

func TestCreateItemUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer server.Close()

	client := New(server.URL, "", time.Second)
	_, err := client.CreateItem(context.Background(), app.CreateItemInput{Name: "Widget", Stock: 1})
	if err == nil || !strings.Contains(err.Error(), "unexpected status 502") {
		t.Fatalf("error = %v, want unexpected status", err)
	}
}

func TestCreateItemContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := New(server.URL, "", time.Second)
	if _, err := client.CreateItem(ctx, app.CreateItemInput{Name: "Widget", Stock: 1}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
