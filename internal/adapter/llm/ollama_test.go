package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOllamaGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Stream {
			t.Error("Generate must request stream=false")
		}
		if req.Model != "llama3.1" {
			t.Errorf("model = %q", req.Model)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "respuesta completa", Done: true})
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "llama3.1", 5*time.Second)
	got, err := o.Generate(context.Background(), "pregunta")
	if err != nil {
		t.Fatal(err)
	}
	if got != "respuesta completa" {
		t.Errorf("got %q", got)
	}
}

func TestOllamaGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "missing", 5*time.Second)
	if _, err := o.Generate(context.Background(), "pregunta"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestOllamaGenerateStream(t *testing.T) {
	tokens := []string{"Hola", ", ", "mundo"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if !req.Stream {
			t.Error("GenerateStream must request stream=true")
		}
		enc := json.NewEncoder(w)
		for _, tok := range tokens {
			enc.Encode(generateResponse{Response: tok})
		}
		enc.Encode(generateResponse{Done: true})
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "llama3.1", 5*time.Second)
	stream, err := o.GenerateStream(context.Background(), "pregunta")
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	var got string
	for {
		tok, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got += tok
	}
	if got != "Hola, mundo" {
		t.Errorf("assembled %q", got)
	}

	// After EOF the stream stays exhausted.
	if _, err := stream.Next(); err != io.EOF {
		t.Errorf("post-EOF Next error = %v, want io.EOF", err)
	}
}

func TestOllamaStreamMidError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"parcial"}`)
		fmt.Fprintln(w, `{"error":"out of memory"}`)
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "llama3.1", 5*time.Second)
	stream, err := o.GenerateStream(context.Background(), "pregunta")
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	if _, err := stream.Next(); err != nil {
		t.Fatalf("first token: %v", err)
	}
	if _, err := stream.Next(); err == nil || err == io.EOF {
		t.Errorf("mid-stream error not surfaced, got %v", err)
	}
}

func TestStaticStream(t *testing.T) {
	s := NewStaticStream("todo el texto")

	tok, err := s.Next()
	if err != nil || tok != "todo el texto" {
		t.Fatalf("Next() = %q, %v", tok, err)
	}
	if _, err := s.Next(); err != io.EOF {
		t.Errorf("second Next error = %v, want io.EOF", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
