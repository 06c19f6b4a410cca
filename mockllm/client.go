package mockllm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/mangashelf/mangashelf/models"
	"github.com/mangashelf/mangashelf/summarizer"
)

var (
	positiveWords = []string{"great", "amazing", "love", "loved", "beautiful", "good", "excellent", "fun", "gorgeous", "best"}
	negativeWords = []string{"slow", "boring", "bad", "weak", "rushed", "confusing", "too", "poor", "worst", "dragged"}
)

// MockLLMClient is an offline Generator. With no fixed response it derives a
// deterministic pros/cons answer from the review bullets in the prompt.
type MockLLMClient struct {
	mu       sync.Mutex
	response *string
	err      error
	delay    time.Duration
	requests []summarizer.GenerateRequest
}

func NewMockLLMClient() *MockLLMClient {
	return &MockLLMClient{}
}

// NewMockLLMClientWithResponse always answers with response.
func NewMockLLMClientWithResponse(response string) *MockLLMClient {
	return &MockLLMClient{response: &response}
}

// NewMockLLMClientWithError always fails with err.
func NewMockLLMClientWithError(err error) *MockLLMClient {
	return &MockLLMClient{err: err}
}

// WithDelay makes every call wait for delay or until the context ends.
func (c *MockLLMClient) WithDelay(delay time.Duration) *MockLLMClient {
	c.delay = delay
	return c
}

func (c *MockLLMClient) Generate(ctx context.Context, req summarizer.GenerateRequest) (string, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	if c.err != nil {
		return "", c.err
	}
	if c.response != nil {
		return *c.response, nil
	}

	out, err := json.Marshal(summarizeBullets(reviewBullets(req.Prompt)))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Requests returns every request received so far.
func (c *MockLLMClient) Requests() []summarizer.GenerateRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]summarizer.GenerateRequest(nil), c.requests...)
}

func reviewBullets(prompt string) []string {
	_, rest, found := strings.Cut(prompt, "Reviews:\n")
	if !found {
		return nil
	}
	section, _, _ := strings.Cut(rest, "\n\n")

	var bullets []string
	for _, line := range strings.Split(section, "\n") {
		if bullet, ok := strings.CutPrefix(line, "- "); ok {
			bullets = append(bullets, bullet)
		}
	}
	return bullets
}

func summarizeBullets(bullets []string) models.SummarizeResult {
	result := models.SummarizeResult{Pros: []string{}, Cons: []string{}}
	seen := make(map[string]bool)

	for _, bullet := range bullets {
		for _, clause := range splitClauses(bullet) {
			key := strings.ToLower(clause)
			if seen[key] {
				continue
			}
			switch {
			case containsAny(key, negativeWords):
				result.Cons = append(result.Cons, capitalize(clause))
			case containsAny(key, positiveWords):
				result.Pros = append(result.Pros, capitalize(clause))
			default:
				continue
			}
			seen[key] = true
		}
	}
	return result
}

func splitClauses(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '.' || r == '!'
	})

	clauses := make([]string, 0, len(fields))
	for _, field := range fields {
		for _, part := range strings.Split(field, " but ") {
			if part = strings.TrimSpace(part); part != "" {
				clauses = append(clauses, part)
			}
		}
	}
	return clauses
}

func containsAny(text string, words []string) bool {
	for _, word := range strings.Fields(text) {
		for _, candidate := range words {
			if word == candidate {
				return true
			}
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + s[size:]
}
