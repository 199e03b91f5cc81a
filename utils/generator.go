package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"maildraft/config"
)

// generateTimeout bounds the external generation call; exceeding it is
// treated like any other provider failure.
const generateTimeout = 30 * time.Second

const fallbackSubject = "Email"

// GeneratedEmail is a subject/body pair produced by the generation API or,
// when the call fails, by the local fallback.
type GeneratedEmail struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// EmailGenerator turns a free-text prompt plus tone into email content via
// an external text-generation API. Failures never reach the caller: a
// degraded-but-usable result is returned instead so a draft can always be
// persisted.
type EmailGenerator struct {
	apiKey string
	apiURL string
	client *http.Client
}

func NewEmailGenerator(cfg *config.Config) *EmailGenerator {
	return &EmailGenerator{
		apiKey: cfg.EmailAPIKey,
		apiURL: cfg.EmailAPIURL,
		client: &http.Client{
			Timeout: generateTimeout,
		},
	}
}

func (g *EmailGenerator) Configured() bool {
	return g.apiKey != "" && g.apiURL != ""
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

// GenerateWithSubject produces a subject and body for the prompt. If the
// external call fails for any reason (not configured, timeout, non-2xx,
// malformed body, no candidates) it falls back to {"Email", prompt} and logs
// the cause.
func (g *EmailGenerator) GenerateWithSubject(ctx context.Context, prompt, tone string) GeneratedEmail {
	content, err := g.generateContent(ctx, prompt, tone)
	if err != nil {
		LogError("generation_failed", err, map[string]interface{}{
			"tone": tone,
		})
		return GeneratedEmail{Subject: fallbackSubject, Content: prompt}
	}
	return GeneratedEmail{
		Subject: extractSubject(content, prompt),
		Content: content,
	}
}

func (g *EmailGenerator) generateContent(ctx context.Context, prompt, tone string) (string, error) {
	if !g.Configured() {
		return "", errors.New("email API key or URL not configured")
	}

	payload := generateRequest{
		Contents: []generateContent{
			{Parts: []generatePart{
				{Text: fmt.Sprintf("Write a %s email about: %s", tone, prompt)},
			}},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var data generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to parse API response: %w", err)
	}
	if len(data.Candidates) == 0 || len(data.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no candidates in API response")
	}

	content := strings.TrimSpace(data.Candidates[0].Content.Parts[0].Text)
	if content == "" {
		return "", errors.New("empty candidate in API response")
	}
	return content, nil
}

// extractSubject uses the first generated line as the subject when it is
// short and not a salutation, otherwise derives one from the prompt: first
// seven words, truncated to 47 characters plus an ellipsis when over 50.
func extractSubject(content, prompt string) string {
	firstLine := strings.TrimSpace(strings.SplitN(strings.TrimSpace(content), "\n", 2)[0])
	if utf8.RuneCountInString(firstLine) < 100 &&
		!strings.HasPrefix(strings.ToLower(firstLine), "dear") {
		return firstLine
	}

	words := strings.Fields(prompt)
	if len(words) > 7 {
		words = words[:7]
	}
	subject := strings.Join(words, " ")
	if subject == "" {
		return fallbackSubject
	}
	if runes := []rune(subject); len(runes) > 50 {
		return string(runes[:47]) + "..."
	}
	return subject
}
