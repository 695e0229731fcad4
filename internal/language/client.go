package language

import (
	"bytes"
	"context"
	"dataweave/internal/models"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client talks to an OpenAI-compatible chat-completions endpoint and turns
// free-form queries into classifications, decompositions, native queries and
// rephrasing suggestions. Every method can fail (network, malformed output);
// callers are expected to have a deterministic fallback.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Options configures a language client.
type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	RateRPS float64
}

// NewClient creates a language service client.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RateRPS <= 0 {
		opts.RateRPS = 5
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		model:      opts.Model,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RateRPS), int(opts.RateRPS)+1),
	}
}

// Classify asks the language service to classify a query. contextSummary may
// be empty (cold session).
func (c *Client) Classify(ctx context.Context, query, contextSummary string) (models.Classification, error) {
	user := "Analyze this query: " + query
	if contextSummary != "" {
		user = contextSummary + "\n\n" + user
	}

	var wire struct {
		Domain     string   `json:"domain"`
		Intent     string   `json:"intent"`
		Complexity string   `json:"complexity"`
		QueryType  string   `json:"query_type"`
		Issues     []string `json:"issues"`
	}
	if err := c.chatJSON(ctx, classifyPrompt, user, &wire); err != nil {
		return models.Classification{}, err
	}

	cls := models.Classification{
		Domain:     models.ParseDomain(wire.Domain),
		Intent:     models.ParseIntent(wire.Intent),
		Complexity: models.ParseComplexity(wire.Complexity),
		QueryType:  wire.QueryType,
		Issues:     wire.Issues,
	}
	if cls.QueryType == "" {
		cls.QueryType = models.QueryTypeClear
	}
	return cls, nil
}

// Decompose splits a hybrid query into one sub-query per data backend.
func (c *Client) Decompose(ctx context.Context, query string) (sqlQuery, nosqlQuery string, err error) {
	var wire struct {
		SQL   string `json:"sql"`
		NoSQL string `json:"nosql"`
	}
	if err := c.chatJSON(ctx, decomposePrompt, "Decompose this hybrid query: "+query, &wire); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(wire.SQL), strings.TrimSpace(wire.NoSQL), nil
}

// Translate converts a natural-language query into a backend-native query
// string, given that backend's schema context.
func (c *Client) Translate(ctx context.Context, query, schemaContext string) (string, error) {
	system := fmt.Sprintf(translatePrompt, schemaContext)
	raw, err := c.chat(ctx, system, query)
	if err != nil {
		return "", err
	}
	native := strings.TrimSpace(stripFences(raw))
	if native == "" {
		return "", fmt.Errorf("language service returned an empty translation")
	}
	return native, nil
}

// Suggest generates 3-5 concrete rephrasings for an unclear query.
func (c *Client) Suggest(ctx context.Context, query string, issues []string) ([]string, error) {
	user := "Query: " + query
	if len(issues) > 0 {
		user += "\nIssues: " + strings.Join(issues, "; ")
	}

	var wire struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := c.chatJSON(ctx, suggestPrompt, user, &wire); err != nil {
		return nil, err
	}
	if len(wire.Suggestions) == 0 {
		return nil, fmt.Errorf("language service returned no suggestions")
	}
	return wire.Suggestions, nil
}

// chatJSON runs a chat completion and decodes the reply as JSON into out.
func (c *Client) chatJSON(ctx context.Context, system, user string, out any) error {
	raw, err := c.chat(ctx, system, user)
	if err != nil {
		return err
	}
	cleaned := stripFences(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("failed to parse language service reply: %w", err)
	}
	return nil
}

// chat performs one chat-completions round trip and returns the assistant text.
func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	reqBody, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": 0,
		"stream":      false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("language service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("❌ [LLM] API error (status %d): %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("language service returned status %d", resp.StatusCode)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode language service response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("language service returned no choices")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// stripFences removes markdown code fences the model sometimes wraps its
// output in (```json ... ``` or ``` ... ```).
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```sql")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
