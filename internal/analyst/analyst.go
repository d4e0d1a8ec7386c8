package analyst

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"slitherbench/internal/stats"
)

const maxTokens = 2048

// DefaultModel is used when the config leaves the model empty.
const DefaultModel = "gpt-4o-mini"

// Client turns a benchmark summary into a written interpretation for the
// evaluation chapter. Optional; the pipeline never requires it.
type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

// Interpretation is the structured answer the model must produce.
type Interpretation struct {
	Headline        string   `json:"headline"`
	DetectionNotes  string   `json:"detection_notes"`
	FalsePositives  string   `json:"false_positives"`
	NotableMisses   []string `json:"notable_misses"`
	Recommendations []string `json:"recommendations"`
}

func systemPrompt() string {
	return `You are a senior smart contract security analyst reviewing static analysis benchmark results. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- headline is one sentence summarizing how well the tool performed.
- detection_notes discusses the per-contract detection rates against the labeled vulnerabilities.
- false_positives comments on the false positive count on the audited baseline contract.
- notable_misses lists the labeled vulnerabilities the tool failed to report, one string each.
- recommendations lists concrete next steps for the benchmark, one string each. Keep items concise.

Schema (example with empty values):
{
  "headline": "<string>",
  "detection_notes": "<string>",
  "false_positives": "<string>",
  "notable_misses": ["<string>"],
  "recommendations": ["<string>"]
}`
}

func userPrompt(s stats.Summary) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Interpret these Slither benchmark statistics and respond with the JSON per schema.\n\n%s", data), nil
}

// Summarize asks the model for an interpretation of the run statistics.
func (c *Client) Summarize(ctx context.Context, s stats.Summary) (*Interpretation, error) {
	user, err := userPrompt(s)
	if err != nil {
		return nil, err
	}

	req := openai.ChatCompletionRequest{
		Model: c.Model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens instead of MaxTokens.
	if strings.HasPrefix(c.Model, "o1") || strings.HasPrefix(c.Model, "o3") ||
		strings.HasPrefix(c.Model, "o4") || strings.HasPrefix(c.Model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	var out Interpretation
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}
	return &out, nil
}
