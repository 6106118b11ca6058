package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"strategy-arena/internal/store"
	"strategy-arena/internal/trace"
	"strategy-arena/internal/types"
)

const (
	defaultModel = "gpt-4o-mini"
	systemPrompt = "You are a trading analyst narrating an agent competition. In 2-3 plain sentences explain why the winning signal was selected, naming the agent, its direction and its confidence. No markdown, no JSON."
)

type OpenAIExplainer struct {
	cfg *store.Config
}

func NewOpenAIExplainer(cfg *store.Config) *OpenAIExplainer {
	return &OpenAIExplainer{cfg: cfg}
}

func (e *OpenAIExplainer) Explain(ctx context.Context, winner types.Signal, candidates []types.Signal, market types.MarketSnapshot, perf types.AgentSummary) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", errors.New("OPENAI_API_KEY missing")
	}

	state := map[string]any{"winner": winner, "candidates": candidates, "market": market, "performance": perf}
	sb, _ := json.Marshal(state)
	prompt := fmt.Sprintf("Round state as JSON:\n%s\n\nExplain why this signal won the round.", string(sb))

	model := e.cfg.LLM.Model
	if model == "" {
		model = defaultModel
	}
	body := map[string]any{
		"model":       model,
		"messages":    []map[string]string{{"role": "system", "content": systemPrompt}, {"role": "user", "content": prompt}},
		"temperature": e.cfg.LLM.Temperature,
		"max_tokens":  e.cfg.LLM.MaxTokens,
	}
	bb, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(bb))
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai http %d", resp.StatusCode)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", err
	}

	if len(r.Choices) == 0 {
		return "", errors.New("no choices")
	}

	out := strings.TrimSpace(r.Choices[0].Message.Content)
	if out == "" {
		return "", errors.New("empty completion")
	}
	return out, nil
}
