package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
)

// Client handles communication with an Ollama API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Ollama client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if timeout == 0 {
		timeout = 5 * time.Minute
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CheckConnection verifies that Ollama is available
func (c *Client) CheckConnection(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to Ollama at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	return nil
}

// Generate sends a non-streaming generate request to Ollama
func (c *Client) Generate(ctx context.Context, config ModelConfig, systemPrompt, userPrompt string) (*GenerateResponse, error) {
	request := GenerateRequest{
		Model:     config.Name,
		System:    systemPrompt,
		Prompt:    userPrompt,
		Options:   config.Options,
		KeepAlive: "30m",
		Stream:    false,
	}

	inputTokens := CountTokens(systemPrompt + userPrompt)
	if inputTokens > config.Options.NumCtx {
		log.Printf("Warning: estimated input tokens (%d) exceeds context size (%d)", inputTokens, config.Options.NumCtx)
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var response GenerateResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &response, nil
}

// RemoveThinkingTags removes <think>...</think> blocks from responses
func RemoveThinkingTags(content string) string {
	if content == "" {
		return ""
	}

	re := regexp.MustCompile(`(?i)<think>[\s\S]*?</think>\s*`)
	return strings.TrimSpace(re.ReplaceAllString(content, ""))
}

// CountTokens estimates the token length of content via tiktoken, falling
// back to a word/char heuristic when the encoding is unavailable.
func CountTokens(content string) int {
	encoding, err := tiktoken.EncodingForModel("gpt2")
	if err != nil {
		return fallbackTokenCount(content)
	}
	return len(encoding.Encode(content, nil, nil))
}

func fallbackTokenCount(content string) int {
	words := len(strings.Fields(content))
	chars := len(content)

	wordBasedTokens := float64(words) * 0.75
	charBasedTokens := float64(chars) * 0.2

	estimatedTokens := int((wordBasedTokens + charBasedTokens) / 2)
	if estimatedTokens == 0 && len(content) > 0 {
		return 1
	}
	return estimatedTokens
}
