package sentiment

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultClaudeModel     = "claude-3-5-haiku-latest"
	defaultClaudeMaxTokens = 16
)

const claudeSystemPrompt = "You rate the sentiment of financial news for investors. " +
	"Reply with a single number between -1 (very negative) and 1 (very positive), nothing else."

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// ClaudeScorer rates text with the Anthropic Messages API.
type ClaudeScorer struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

// NewClaudeScorer creates a scorer. Extra request options, such as a base
// URL, are passed to the client.
func NewClaudeScorer(apiKey, model string, maxTokens int, opts ...option.RequestOption) (*ClaudeScorer, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}
	if model == "" {
		model = DefaultClaudeModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &ClaudeScorer{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func (s *ClaudeScorer) Score(ctx context.Context, text string) (float64, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: int64(s.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
		System: []anthropic.TextBlockParam{
			{Text: claudeSystemPrompt},
		},
		Temperature: anthropic.Float(0),
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("claude score: %w", err)
	}

	var reply strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			reply.WriteString(block.Text)
		}
	}
	return parseScore(reply.String())
}

func parseScore(reply string) (float64, error) {
	m := numberPattern.FindString(reply)
	if m == "" {
		return 0, fmt.Errorf("claude score: no number in reply %q", reply)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, fmt.Errorf("claude score: %w", err)
	}
	return Clamp(v), nil
}
