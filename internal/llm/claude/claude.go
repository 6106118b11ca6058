package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"strategy-arena/internal/store"
	"strategy-arena/internal/trace"
	"strategy-arena/internal/types"
)

const (
	defaultModel = "claude-3-5-haiku-latest"
	systemPrompt = "You are a trading analyst narrating an agent competition. In 2-3 plain sentences explain why the winning signal was selected, naming the agent, its direction and its confidence. No markdown, no JSON."
)

// ClaudeExplainer narrates round results through the Anthropic messages API.
type ClaudeExplainer struct {
	cfg      *store.Config
	endpoint string
}

// NewClaudeExplainer builds the explainer. The endpoint can be redirected
// through CLAUDE_API_ENDPOINT for proxies.
func NewClaudeExplainer(cfg *store.Config) *ClaudeExplainer {
	endpoint := "https://api.anthropic.com/v1/messages"
	if ep := os.Getenv("CLAUDE_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &ClaudeExplainer{cfg: cfg, endpoint: endpoint}
}

func (e *ClaudeExplainer) Explain(ctx context.Context, winner types.Signal, candidates []types.Signal, market types.MarketSnapshot, perf types.AgentSummary) (string, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	apiKey := os.Getenv("CLAUDE_API_KEY")
	if apiKey == "" {
		return "", errors.New("CLAUDE_API_KEY missing")
	}

	state := map[string]any{"winner": winner, "candidates": candidates, "market": market, "performance": perf}
	sb, _ := json.Marshal(state)
	user := fmt.Sprintf("Round state as JSON:\n%s\n\nExplain why this signal won the round.", string(sb))

	model := e.cfg.LLM.Model
	if model == "" {
		model = defaultModel
	}
	reqBody := map[string]any{
		"model":  model,
		"system": systemPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": user},
		},
		"max_tokens":  e.cfg.LLM.MaxTokens,
		"temperature": e.cfg.LLM.Temperature,
	}

	bb, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, "POST", e.endpoint, bytes.NewReader(bb))
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("claude http %d: %s", resp.StatusCode, string(body))
	}

	respBytes, _ := io.ReadAll(resp.Body)

	var r struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBytes, &r); err == nil {
		var parts []string
		for _, c := range r.Content {
			if c.Type == "text" && strings.TrimSpace(c.Text) != "" {
				parts = append(parts, strings.TrimSpace(c.Text))
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "\n"), nil
		}
	}

	// Proxies sometimes rewrap the response; look in the usual places.
	if text := extractText(respBytes); text != "" {
		return text, nil
	}
	return "", errors.New("no text in claude response")
}

func extractText(body []byte) string {
	var anyResp any
	if err := json.Unmarshal(body, &anyResp); err != nil {
		return ""
	}
	m, ok := anyResp.(map[string]any)
	if !ok {
		return ""
	}
	for _, k := range []string{"completion", "output", "output_text", "completion_text", "result"} {
		if v, exists := m[k]; exists {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
