package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"maildraft/config"
)

func generationResponse(text string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	})
	return string(body)
}

func newTestGenerator(url string) *EmailGenerator {
	return NewEmailGenerator(&config.Config{
		EmailAPIKey: "test-key",
		EmailAPIURL: url,
	})
}

func TestGenerateWithSubject_UsesShortFirstLine(t *testing.T) {
	content := "Quarterly Review Meeting\n\nHi team,\nlet's meet Tuesday.\n\nBest,\nAlice"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization: got %q", got)
		}
		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Write([]byte(generationResponse(content)))
	}))
	defer srv.Close()

	g := newTestGenerator(srv.URL)
	got := g.GenerateWithSubject(context.Background(),
		"Let's schedule the quarterly review meeting for next Tuesday", "formal")

	if got.Subject != "Quarterly Review Meeting" {
		t.Errorf("Subject: got %q, want %q", got.Subject, "Quarterly Review Meeting")
	}
	if got.Content != content {
		t.Errorf("Content: got %q", got.Content)
	}
}

func TestGenerateWithSubject_SendsTemplatedInstruction(t *testing.T) {
	var instruction string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			instruction = req.Contents[0].Parts[0].Text
		}
		w.Write([]byte(generationResponse("Subject line\n\nBody")))
	}))
	defer srv.Close()

	g := newTestGenerator(srv.URL)
	g.GenerateWithSubject(context.Background(), "the office move", "casual")

	if instruction != "Write a casual email about: the office move" {
		t.Errorf("instruction: got %q", instruction)
	}
}

func TestGenerateWithSubject_FallbackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := newTestGenerator(srv.URL)
	got := g.GenerateWithSubject(context.Background(), "my prompt", "friendly")

	if got.Subject != "Email" || got.Content != "my prompt" {
		t.Errorf("got %+v, want fallback {Email, my prompt}", got)
	}
}

func TestGenerateWithSubject_FallbackOnMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	g := newTestGenerator(srv.URL)
	got := g.GenerateWithSubject(context.Background(), "my prompt", "friendly")

	if got.Subject != "Email" || got.Content != "my prompt" {
		t.Errorf("got %+v, want fallback {Email, my prompt}", got)
	}
}

func TestGenerateWithSubject_FallbackOnEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	g := newTestGenerator(srv.URL)
	got := g.GenerateWithSubject(context.Background(), "my prompt", "friendly")

	if got.Subject != "Email" || got.Content != "my prompt" {
		t.Errorf("got %+v, want fallback {Email, my prompt}", got)
	}
}

func TestGenerateWithSubject_FallbackWhenNotConfigured(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	g := NewEmailGenerator(&config.Config{EmailAPIKey: "", EmailAPIURL: srv.URL})
	got := g.GenerateWithSubject(context.Background(), "my prompt", "friendly")

	if got.Subject != "Email" || got.Content != "my prompt" {
		t.Errorf("got %+v, want fallback {Email, my prompt}", got)
	}
	if requests != 0 {
		t.Errorf("requests: got %d, want 0 when unconfigured", requests)
	}
}

func TestExtractSubject(t *testing.T) {
	longPrompt := "comprehensive infrastructure modernization initiative stakeholder communication deliverables summary"
	longPromptHead := strings.Join(strings.Fields(longPrompt)[:7], " ")
	tests := []struct {
		name    string
		content string
		prompt  string
		want    string
	}{
		{
			name:    "short first line used verbatim",
			content: "Budget update\n\nHi all",
			prompt:  "tell the team about the budget",
			want:    "Budget update",
		},
		{
			name:    "salutation first line falls back to prompt",
			content: "Dear Bob,\n\nI hope this finds you well.",
			prompt:  "follow up on the invoice",
			want:    "follow up on the invoice",
		},
		{
			name:    "long first line falls back to prompt words",
			content: strings.Repeat("x", 120) + "\nrest",
			prompt:  "quick status question",
			want:    "quick status question",
		},
		{
			name:    "prompt fallback keeps first seven words",
			content: "Dear team,\nhello",
			prompt:  "one two three four five six seven eight nine",
			want:    "one two three four five six seven",
		},
		{
			name:    "prompt fallback truncates past fifty characters",
			content: "Dear team,\nhello",
			prompt:  longPrompt,
			want:    string([]rune(longPromptHead)[:47]) + "...",
		},
		{
			name:    "empty prompt yields generic subject",
			content: "Dear team,\nhello",
			prompt:  "   ",
			want:    "Email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractSubject(tt.content, tt.prompt); got != tt.want {
				t.Errorf("extractSubject: got %q, want %q", got, tt.want)
			}
		})
	}
}
